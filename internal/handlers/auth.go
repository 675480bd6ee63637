package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/praxislabs/praxis-backend/internal/apierr"
	"github.com/praxislabs/praxis-backend/internal/requestdata"
	"github.com/praxislabs/praxis-backend/internal/response"
	"github.com/praxislabs/praxis-backend/internal/services"
	"github.com/praxislabs/praxis-backend/internal/types"
)

type AuthHandler struct {
	authService services.AuthService
	sessionGate services.SessionGate
}

func NewAuthHandler(authService services.AuthService, sessionGate services.SessionGate) *AuthHandler {
	return &AuthHandler{authService: authService, sessionGate: sessionGate}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user := types.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}
	if err := ah.authService.RegisterUser(c.Request.Context(), &user); err != nil {
		response.RespondError(c, http.StatusBadRequest, "registration_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	accessToken, refreshToken, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "invalid_credentials", err)
		return
	}
	next := ah.resolveNext(c, accessToken)
	response.RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
		"next":          next,
	})
}

// resolveNext runs the session gate once per authentication completion. Gate
// errors fall back to the dashboard rather than failing the sign-in.
func (ah *AuthHandler) resolveNext(c *gin.Context, accessToken string) string {
	ctx, err := ah.authService.SetContextFromToken(c.Request.Context(), accessToken)
	if err != nil {
		return string(services.DestinationDashboard)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return string(services.DestinationDashboard)
	}
	dest, err := ah.sessionGate.Resolve(ctx, rd.UserID)
	if err != nil {
		return string(services.DestinationDashboard)
	}
	return string(dest)
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	accessToken, refreshToken, err := ah.authService.RefreshUser(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusUnauthorized, "refresh_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondError(c, http.StatusBadRequest, "logout_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) OAuthNonce(c *gin.Context) {
	nonceID, nonce, expiresIn, err := ah.authService.CreateOAuthNonce(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "nonce_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"nonce_id":   nonceID.String(),
		"nonce":      nonce,
		"expires_in": expiresIn,
	})
}

func (ah *AuthHandler) OAuthGoogle(c *gin.Context) {
	var req struct {
		IDToken   string `json:"id_token"`
		NonceID   string `json:"nonce_id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	nonceID, err := uuid.Parse(req.NonceID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_nonce_id", err)
		return
	}
	accessToken, refreshToken, userID, err := ah.authService.OAuthLoginGoogle(c.Request.Context(), req.IDToken, nonceID, req.FirstName, req.LastName)
	if err != nil {
		var appErr *apierr.Error
		if errors.As(err, &appErr) {
			response.RespondError(c, appErr.Status, appErr.Code, err)
			return
		}
		response.RespondError(c, http.StatusUnauthorized, "oauth_login_failed", err)
		return
	}
	dest, gErr := ah.sessionGate.Resolve(c.Request.Context(), userID)
	if gErr != nil {
		dest = services.DestinationDashboard
	}
	response.RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
		"next":          string(dest),
	})
}
