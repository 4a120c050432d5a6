package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/venturemind/venturemind-backend/internal/models"
	"github.com/venturemind/venturemind-backend/internal/render"
	"github.com/venturemind/venturemind-backend/internal/store"
)

type historySummary struct {
	ID        string `json:"id"`
	Idea      string `json:"idea"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

type historyDetail struct {
	ID        string             `json:"id"`
	Idea      string             `json:"idea"`
	FullJSON  models.StartupPack `json:"full_json"`
	CreatedAt string             `json:"created_at"`
}

func (s *Server) handleListHistory(c *gin.Context) {
	u := currentUser(c)
	items, err := s.history.ListHistory(c.Request.Context(), u.ID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	out := make([]historySummary, 0, len(items))
	for _, it := range items {
		out = append(out, historySummary{
			ID:        it.ID,
			Idea:      it.Idea,
			Summary:   it.Summary,
			CreatedAt: it.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetHistory(c *gin.Context) {
	u := currentUser(c)
	item, err := s.history.GetHistory(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "History item not found"})
			return
		}
		s.abortWithError(c, err)
		return
	}

	var pack models.StartupPack
	if err := json.Unmarshal([]byte(item.FullJSON), &pack); err != nil {
		s.abortWithError(c, fmt.Errorf("decoding history %s: %w", item.ID, err))
		return
	}
	if s.logos != nil {
		s.logos.Resolve(c.Request.Context(), &pack)
	}

	if c.Query("format") == "html" {
		page := render.HTML(render.Markdown(pack))
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
		return
	}
	c.JSON(http.StatusOK, historyDetail{
		ID:        item.ID,
		Idea:      item.Idea,
		FullJSON:  pack,
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
	})
}
