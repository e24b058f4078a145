// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// storeError maps a context store error to an HTTPError. Server-side
// failures get a fixed message; the cause stays internal.
func storeError(err error) error {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		return echo.NewHTTPError(status, msgStoreFailed).SetInternal(err)
	}
	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}

func (s *Server) listHistory(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		msgs []types.ChatMessage
		err  error
	)
	if userID := strings.TrimSpace(c.QueryParam("userId")); userID != "" {
		msgs, err = s.deps.Store.GetChatHistoryByUser(ctx, userID)
	} else {
		msgs, err = s.deps.Store.GetChatHistory(ctx)
	}
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (s *Server) clearHistory(c echo.Context) error {
	if err := s.deps.Store.ClearChatHistory(c.Request().Context()); err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, deletedResponse{Deleted: true})
}

func (s *Server) deleteMessage(c echo.Context) error {
	ok, err := s.deps.Store.DeleteChatMessage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "message not found")
	}
	return c.JSON(http.StatusOK, deletedResponse{Deleted: true})
}

func (s *Server) listPapers(c echo.Context) error {
	papers, err := s.deps.Store.SearchPapers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, papers)
}

func (s *Server) addPaper(c echo.Context) error {
	var in types.NewPaper
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := s.deps.Store.AddPaper(c.Request().Context(), in)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) getPaper(c echo.Context) error {
	p, err := s.deps.Store.GetPaperByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) updatePaper(c echo.Context) error {
	var upd types.PaperUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := s.deps.Store.UpdatePaper(c.Request().Context(), c.Param("id"), upd)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) deletePaper(c echo.Context) error {
	ok, err := s.deps.Store.DeletePaper(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "paper not found")
	}
	return c.JSON(http.StatusOK, deletedResponse{Deleted: true})
}

func (s *Server) listSearches(c echo.Context) error {
	results, err := s.deps.Store.GetSearchResults(c.Request().Context())
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) getSearch(c echo.Context) error {
	r, err := s.deps.Store.GetSearchResultByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, r)
}
