package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/requestdata"
	"github.com/praxislabs/praxis-backend/internal/response"
	"github.com/praxislabs/praxis-backend/internal/services"
)

type HistoryHandler struct {
	historyService services.HistoryService
}

func NewHistoryHandler(historyService services.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// requestDataOrAbort is shared by the authenticated handlers; the auth
// middleware populates request data, so a nil here means middleware was
// bypassed.
func requestDataOrAbort(c *gin.Context) *requestdata.RequestData {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
	}
	return rd
}

func (hh *HistoryHandler) Record(c *gin.Context) {
	rd := requestDataOrAbort(c)
	if rd == nil {
		return
	}
	var req struct {
		SimID            string  `json:"sim_id"`
		SimulationName   string  `json:"simulation_name"`
		Category         string  `json:"category"`
		Score            float64 `json:"score"`
		DurationMinutes  int     `json:"duration_minutes"`
		CompletionStatus string  `json:"completion_status"`
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
	record, err := hh.historyService.Record(c.Request.Context(), rd.UserID, services.RecordSessionInput{
		SimulationID:     simID,
		SimulationName:   req.SimulationName,
		Category:         req.Category,
		Score:            req.Score,
		DurationMinutes:  req.DurationMinutes,
		CompletionStatus: strings.TrimSpace(req.CompletionStatus),
	})
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "session_record_failed", err)
		return
	}
	response.RespondCreated(c, record)
}

func (hh *HistoryHandler) List(c *gin.Context) {
	rd := requestDataOrAbort(c)
	if rd == nil {
		return
	}
	records, err := hh.historyService.List(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "history_fetch_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": records})
}

func (hh *HistoryHandler) Summary(c *gin.Context) {
	rd := requestDataOrAbort(c)
	if rd == nil {
		return
	}
	summary, err := hh.historyService.Summary(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "history_summary_failed", err)
		return
	}
	response.RespondOK(c, summary)
}
