// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ClaritySystem instructs the model to judge whether a query is specific
// enough to search for papers, answering with a ClarityVerdict JSON object.
const ClaritySystem = `You help users turn vague or broad search queries into precise academic research topics.
Always assume the user wants research papers, academic findings or scientific recommendations.

Decide whether the query is ambiguous or specific enough to search for research papers.
If it is ambiguous, ask exactly one clarifying question and offer numbered options the user can pick by number or answer in their own words.
Keep the tone concise and friendly, like a professional research assistant.

Respond with a single JSON object and nothing else:
{
  "clarity": "ambiguous" or "clear",
  "message": "the clarifying question, or a short confirmation when clear",
  "options": ["numbered options, empty when clear"],
  "refined_query": "the refined research query when clear, otherwise null"
}

Example query: "Animal"
Example response:
{
  "clarity": "ambiguous",
  "message": "Could you clarify what aspect of animals you are interested in?",
  "options": [
    "1. Animal biology or physiology",
    "2. Animal behavior or psychology",
    "3. Conservation or environmental impact",
    "4. Machine learning applications on animal datasets",
    "5. Other (please specify)"
  ],
  "refined_query": null
}

Example query: "transformer attention efficiency for long documents"
Example response:
{
  "clarity": "clear",
  "message": "You are looking for research on efficient attention for long-document transformers.",
  "options": [],
  "refined_query": "Efficient attention mechanisms for long-document transformers"
}`

// TitleSystem instructs the model to name one real paper title wrapped in
// the {title: ...} envelope.
const TitleSystem = `You are a research assistant with knowledge of real academic papers.
Given a short user query and its conversational context, return the title of exactly one real research paper that best matches the topic.
The title must exist in academic databases such as arXiv, IEEE, ACM or Springer.
Output only the title in this exact format, with no explanation:
{title: <paper title>}

Example input: "I was exploring transformer efficiency, now I want to look into quantization techniques."
Example output: {title: Transformer Efficiency and Post-Training Quantization for Large Language Models}`

// ChatSystem is the assistant persona used for chat replies and summaries.
const ChatSystem = `You are a professional research assistant with deep expertise in academic papers.
You explain research clearly and precisely, as if mentoring a graduate student.
Stay with the research topic the user raises unless asked to go beyond it.
Keep a formal yet engaging academic tone.`

var clarityPromptTmpl = template.Must(template.New("clarity").Parse(`User query: {{.Query}}`))

var titlePromptTmpl = template.Must(template.New("title").Parse(`User query: {{.Option}}
Context: {{.Context}}`))

var chatPromptTmpl = template.Must(template.New("chat").Parse(`The user is asking: {{.Message}}

Give a helpful answer about the relevant research papers and academic topics.`))

var summaryPromptTmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"authors": authorNames,
	"inc":     func(i int) int { return i + 1 },
	"year":    yearText,
}).Parse(`The user searched for "{{.Query}}". Summarize in one short paragraph what these related papers cover and how they connect to the query:
{{range $i, $p := .Papers}}
{{inc $i}}. {{$p.Title}}{{with authors $p.Authors}} by {{.}}{{end}}{{with year $p.Year}} ({{.}}){{end}}{{end}}
`))

// ClarityPrompt renders the user turn for a clarity check.
func ClarityPrompt(query string) (string, error) {
	return render(clarityPromptTmpl, struct{ Query string }{query})
}

// TitlePrompt renders the user turn asking for one canonical paper title.
func TitlePrompt(option, context string) (string, error) {
	return render(titlePromptTmpl, struct{ Option, Context string }{option, context})
}

// ChatPrompt renders the user turn for a chat message.
func ChatPrompt(message string) (string, error) {
	return render(chatPromptTmpl, struct{ Message string }{message})
}

// SummaryPrompt renders a request to summarize papers found for query.
func SummaryPrompt(query string, papers []types.RecommendedPaper) (string, error) {
	return render(summaryPromptTmpl, struct {
		Query  string
		Papers []types.RecommendedPaper
	}{query, papers})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func authorNames(authors []types.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

func yearText(year *int) string {
	if year == nil {
		return ""
	}
	return strconv.Itoa(*year)
}
