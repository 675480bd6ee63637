package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/onboarding"
	"github.com/praxislabs/praxis-backend/internal/requestdata"
	"github.com/praxislabs/praxis-backend/internal/response"
	"github.com/praxislabs/praxis-backend/internal/services"
)

type OnboardingHandler struct {
	onboardingService services.OnboardingService
}

func NewOnboardingHandler(onboardingService services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

func (oh *OnboardingHandler) Steps(c *gin.Context) {
	response.RespondOK(c, gin.H{"steps": oh.onboardingService.Steps()})
}

func (oh *OnboardingHandler) Complete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
		return
	}
	var answers onboarding.Answers
	if err := c.ShouldBindJSON(&answers); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := oh.onboardingService.Complete(c.Request.Context(), rd.UserID, answers); err != nil {
		response.RespondError(c, http.StatusBadRequest, "onboarding_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"next": string(services.DestinationDashboard)})
}
