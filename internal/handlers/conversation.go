package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/response"
	"github.com/praxislabs/praxis-backend/internal/services"
)

type ConversationHandler struct {
	conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

func (ch *ConversationHandler) Start(c *gin.Context) {
	rd := requestDataOrAbort(c)
	if rd == nil {
		return
	}
	var req struct {
		SimID string `json:"sim_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	simID, err := uuid.Parse(req.SimID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_sim_id", err)
		return
	}
	session, err := ch.conversationService.Start(c.Request.Context(), rd.UserID, simID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			response.RespondError(c, http.StatusNotFound, "simulation_not_found", err)
		case errors.Is(err, services.ErrInvalidPhase):
			response.RespondError(c, http.StatusConflict, "conversation_in_progress", err)
		default:
			response.RespondError(c, http.StatusBadGateway, "conversation_start_failed", err)
		}
		return
	}
	response.RespondOK(c, session)
}

func (ch *ConversationHandler) Get(c *gin.Context) {
	rd := requestDataOrAbort(c)
	if rd == nil {
		return
	}
	session, ok := ch.conversationService.Get(rd.UserID)
	if !ok {
		response.RespondError(c, http.StatusNotFound, "conversation_not_found", errs.ErrNotFound)
		return
	}
	response.RespondOK(c, session)
}

func (ch *ConversationHandler) Leave(c *gin.Context) {
	rd := requestDataOrAbort(c)
	if rd == nil {
		return
	}
	session, err := ch.conversationService.Leave(c.Request.Context(), rd.UserID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPhase) {
			response.RespondError(c, http.StatusConflict, "no_active_call", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "conversation_leave_failed", err)
		return
	}
	response.RespondOK(c, session)
}

func (ch *ConversationHandler) Restart(c *gin.Context) {
	rd := requestDataOrAbort(c)
	if rd == nil {
		return
	}
	session, err := ch.conversationService.Restart(rd.UserID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPhase) {
			response.RespondError(c, http.StatusConflict, "conversation_in_progress", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "conversation_restart_failed", err)
		return
	}
	response.RespondOK(c, session)
}
