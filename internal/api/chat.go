package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturemind/venturemind-backend/internal/models"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	ReplyMarkdown    string                 `json:"reply_markdown"`
	StartupPack      models.StartupPack     `json:"startup_pack"`
	Domains          []string               `json:"domains"`
	CompetitorMatrix []models.CompetitorRow `json:"competitor_matrix"`
}

func newChatResponse(result models.CompositeResult) chatResponse {
	matrix := result.CompetitorMatrix
	if matrix == nil {
		matrix = []models.CompetitorRow{}
	}
	return chatResponse{
		ReplyMarkdown:    result.ReplyMarkdown,
		StartupPack:      result.StartupPack,
		Domains:          []string{},
		CompetitorMatrix: matrix,
	}
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	result, err := s.gen.Run(c.Request.Context(), req.Message, nil)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	if u := currentUser(c); u != nil {
		s.saveHistory(c.Request.Context(), u, req.Message, result.StartupPack)
	}
	c.JSON(http.StatusOK, newChatResponse(result))
}

// saveHistory records a generation for u. Failures are logged only.
func (s *Server) saveHistory(ctx context.Context, u *models.User, idea string, pack models.StartupPack) {
	if s.history == nil {
		return
	}
	if s.logos != nil {
		if err := s.logos.Archive(ctx, u.ID, &pack); err != nil {
			s.logger.Warn("logo archive failed, keeping inline logo", "user_id", u.ID, "error", err)
		}
	}

	full, err := json.Marshal(pack)
	if err != nil {
		s.logger.Error("encoding history pack", "user_id", u.ID, "error", err)
		return
	}
	item := &models.HistoryItem{
		UserID:   u.ID,
		Idea:     idea,
		Summary:  pack.StartupSummary,
		FullJSON: string(full),
	}
	if err := s.history.AddHistory(ctx, item); err != nil {
		s.logger.Error("saving history", "user_id", u.ID, "error", err)
		return
	}
	s.logger.Info("history saved", "user_id", u.ID, "history_id", item.ID)
}
