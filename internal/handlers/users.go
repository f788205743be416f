package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coursehive/course-auction/internal/model"
	"github.com/coursehive/course-auction/internal/service"
	"github.com/coursehive/course-auction/pkg/config"
	valid "github.com/coursehive/course-auction/pkg/validator"
)

var validate = valid.GetValidator()

type AccountHandler struct {
	authService service.AuthServicer
}

func NewAccountHandler(authSvc service.AuthServicer) (*AccountHandler, error) {
	return &AccountHandler{
		authService: authSvc,
	}, nil
}

// RegisterAccount godoc
//
//	@Summary		Register a new Account
//	@Description	Register a new account with email, username, and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			user	body		CreateAccountRequest	true	"Account registration details"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	map[string]any
//	@Failure		409		{object}	map[string]any
//	@Router			/auth/register [post]
func (h *AccountHandler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidJson.Error(), "Invalid JSON format", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidRequest.Error(), "Input validation failed", validationDetails(err))
		return
	}

	userId, err := h.authService.AddUser(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			RespondErrorJSON(w, r, http.StatusConflict, ErrUserExists.Error(), "user already exists with same email", nil)
			return
		}
		slog.Error("Internal Error", "error", err.Error())
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Something went wrong", nil)
		return
	}
	resp := map[string]any{
		"user_id": userId.String(),
	}
	RespondSuccessJSON(w, r, http.StatusCreated, "account registered successfully", resp)
}

// LoginAccount godoc
//
//	@Summary		Login an Account
//	@Description	Login with username and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		LoginAccountRequest	true	"Account login credentials"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	map[string]any
//	@Failure		401			{object}	map[string]any
//	@Router			/auth/login [post]
func (h *AccountHandler) LoginAccount(w http.ResponseWriter, r *http.Request) {
	var req model.LoginAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidJson.Error(), "Invalid JSON format", nil)
		return
	}

	if err := validate.Struct(req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidRequest.Error(), "Input validation failed", validationDetails(err))
		return
	}

	tokens, err := h.authService.ValidateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "Invalid username or password", nil)
		return
	}

	// calculate cookie expiry by validating the refresh Token
	refreshClaims, _ := h.authService.ValidateRefreshToken(tokens.RefreshToken)
	expiry := refreshClaims.ExpiresAt.Time

	// set the refresh token cookie
	setRefreshTokenCookie(w, tokens.RefreshToken, expiry)

	resp := map[string]any{
		"access_token": tokens.AccessToken,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Login successful", resp)
}

// RefreshToken godoc
//
//	@Summary		Refresh Access Token
//	@Description	Refresh the access token using a valid refresh token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		401	{object}	map[string]any
//	@Router			/auth/refresh [post]
func (h *AccountHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	// extract cookies
	cookie, err := r.Cookie(config.RefreshTokenCookieName)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrMissingCookie.Error(), "Refresh token cookie missing", nil)
		return
	}
	refreshTokenString := cookie.Value

	// validate token
	refreshClaims, err := h.authService.ValidateRefreshToken(refreshTokenString)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrInvalidToken.Error(), "Invalid or expired refresh token", nil)
		return
	}

	// verify user still exists
	user, err := h.authService.GetUserByID(r.Context(), refreshClaims.UserID)
	if err != nil {
		slog.Error("refresh token error", "error", err.Error())
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrUserNotFound.Error(), "User account not found", nil)
		return
	}

	// issue new tokens
	tokens, err := h.authService.IssueTokenPair(user.ID)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrTokenGenFailed.Error(), "failed to generate tokens", nil)
		return
	}
	claims, err := h.authService.ValidateRefreshToken(tokens.RefreshToken)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrToken.Error(), "Error validating new token", nil)
		return
	}
	setRefreshTokenCookie(w, tokens.RefreshToken, claims.ExpiresAt.Time)

	resp := map[string]any{
		"access_token": tokens.AccessToken,
	}

	RespondSuccessJSON(w, r, http.StatusOK, "token refreshed successfully", resp)
}

// LogoutAccount godoc
//
//	@Summary		Logout Account
//	@Description	Logout by blacklisting the access token and clearing the refresh token cookie
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		401	{object}	map[string]any
//	@Router			/auth/logout [post]
func (h *AccountHandler) LogoutAccount(w http.ResponseWriter, r *http.Request) {
	// extract the access token
	accessTokenString := ""
	authHeader := r.Header.Get("Authorization")
	if parts := strings.Split(authHeader, " "); len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		accessTokenString = parts[1]
	}

	// Even if the token is missing, clear the cookie so the client ends up logged out.
	if accessTokenString != "" {
		if err := h.authService.BlacklistUserToken(r.Context(), accessTokenString); err != nil {
			RespondErrorJSON(w, r, http.StatusInternalServerError, ErrLogout.Error(), "Failed to blacklist token", nil)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.RefreshTokenCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	})

	RespondSuccessJSON(w, r, http.StatusOK, "Logged out successfully", "")
}

// Profile godoc
//
//	@Summary		Get Account Profile
//	@Description	Retrieve the profile of the authenticated account
//	@Tags			Users
//	@Requirements	BearerAuth
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		403	{object}	map[string]any
//	@Router			/users/me [get]
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusForbidden, ErrUserNotFound.Error(), "user profile could not be retrieved", nil)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Profile data fetched successfully", user)
}

func setRefreshTokenCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.RefreshTokenCookieName,
		Value:    token,
		Expires:  expiry,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	})
}
