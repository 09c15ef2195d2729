package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/askdocs/graph"
	"github.com/hupe1980/askdocs/intent"
)

// ChatQueryRequest is the body of POST /v1/chat/query.
type ChatQueryRequest struct {
	Text      string `json:"text" binding:"required,min=1,max=4000"`
	SessionID string `json:"session_id"`
}

// ChatQueryResponse is the reply for a completed turn.
type ChatQueryResponse struct {
	SessionID string           `json:"session_id"`
	Intent    intent.Intent    `json:"intent"`
	Answer    string           `json:"answer"`
	Sources   []graph.Citation `json:"sources"`
	Status    string           `json:"status"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// handleChatQuery runs one conversation turn.
//
// Responses:
//
//	200 OK: ChatQueryResponse
//	400 Bad Request: validation error
//	500 Internal Server Error: the turn could not be completed
func (s *Server) handleChatQuery(c *gin.Context) {
	var req ChatQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("server.chat.invalid_request", "error", err.Error())
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "text is required and must be between 1 and 4000 characters",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.turnTimeout)
	defer cancel()

	turn, err := s.assistant.Chat(ctx, req.SessionID, req.Text)
	if err != nil {
		s.logger.Error("server.chat.failed", "session_id", req.SessionID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "the request could not be processed, please try again",
			Code:  "TURN_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, ChatQueryResponse{
		SessionID: turn.SessionID,
		Intent:    turn.Intent,
		Answer:    turn.Answer,
		Sources:   turn.Sources,
		Status:    "ok",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
