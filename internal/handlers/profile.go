package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/repos"
	"github.com/praxislabs/praxis-backend/internal/requestdata"
	"github.com/praxislabs/praxis-backend/internal/response"
	"github.com/praxislabs/praxis-backend/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (ph *ProfileHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
		return
	}
	profile, err := ph.profileService.Get(c.Request.Context(), rd.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.RespondError(c, http.StatusNotFound, "profile_not_found", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "profile_fetch_failed", err)
		return
	}
	response.RespondOK(c, profile)
}

func (ph *ProfileHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
		return
	}
	var req struct {
		Role       services.OptionalString      `json:"role"`
		Field      services.OptionalString      `json:"field"`
		Experience services.OptionalString      `json:"experience"`
		StudyLevel services.OptionalString      `json:"studyLevel"`
		Goals      services.OptionalStringSlice `json:"goals"`
		Interests  services.OptionalStringSlice `json:"interests"`
		FocusAreas services.OptionalStringSlice `json:"focusAreas"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	// Absent fields stay untouched; an explicit null clears the field.
	var patch repos.ProfileUpdate
	if req.Role.Set {
		patch.Role = stringOrEmpty(req.Role.Value)
	}
	if req.Field.Set {
		patch.Field = stringOrEmpty(req.Field.Value)
	}
	if req.Experience.Set {
		patch.Experience = stringOrEmpty(req.Experience.Value)
	}
	if req.StudyLevel.Set {
		patch.StudyLevel = stringOrEmpty(req.StudyLevel.Value)
	}
	if req.Goals.Set {
		patch.Goals = sliceOrEmpty(req.Goals.Value)
	}
	if req.Interests.Set {
		patch.Interests = sliceOrEmpty(req.Interests.Value)
	}
	if req.FocusAreas.Set {
		patch.FocusAreas = sliceOrEmpty(req.FocusAreas.Value)
	}
	if err := ph.profileService.Update(c.Request.Context(), rd.UserID, patch); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.RespondError(c, http.StatusNotFound, "profile_not_found", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "profile_update_failed", err)
		return
	}
	updated, err := ph.profileService.Get(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "profile_fetch_failed", err)
		return
	}
	response.RespondOK(c, updated)
}

func stringOrEmpty(v *string) *string {
	if v != nil {
		return v
	}
	empty := ""
	return &empty
}

func sliceOrEmpty(v *[]string) *[]string {
	if v != nil {
		return v
	}
	empty := []string{}
	return &empty
}
