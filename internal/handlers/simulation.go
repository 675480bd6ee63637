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

type SimulationHandler struct {
	simulationService services.SimulationService
}

func NewSimulationHandler(simulationService services.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationService: simulationService}
}

func (sh *SimulationHandler) List(c *gin.Context) {
	sims, err := sh.simulationService.List(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "simulation_list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"simulations": sims})
}

func (sh *SimulationHandler) Get(c *gin.Context) {
	simID, err := uuid.Parse(c.Param("sim_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_sim_id", err)
		return
	}
	sim, err := sh.simulationService.Get(c.Request.Context(), simID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.RespondError(c, http.StatusNotFound, "simulation_not_found", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "simulation_fetch_failed", err)
		return
	}
	response.RespondOK(c, sim)
}

func (sh *SimulationHandler) Search(c *gin.Context) {
	query := c.Query("q")
	sims, err := sh.simulationService.Search(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_query", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "simulation_search_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"simulations": sims})
}

func (sh *SimulationHandler) ListByCategory(c *gin.Context) {
	category := c.Param("category")
	sims, err := sh.simulationService.ListByCategory(c.Request.Context(), category)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_category", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "simulation_list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"simulations": sims})
}
