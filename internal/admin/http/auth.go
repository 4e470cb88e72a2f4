package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/service"
	"github.com/userdesk/userdesk/pkg/httpx"
)

// TokenHandler serves POST /v1/auth/token
// Accepts application/x-www-form-urlencoded, password-grant style.
type TokenHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Password login
//	@Description	Exchanges a username/password pair for an access/refresh token pair.
//	@Description	Authentication failures are uniform: the response never reveals whether
//	@Description	the username or the password was wrong.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string				true	"Username"
//	@Param			password	formData	string				true	"Password"
//	@Success		200			{object}	domain.TokenPair	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400			{object}	ErrorResponse		"detail"
//	@Failure		401			{object}	ErrorResponse		"detail"
//	@Header			200			{string}	Cache-Control		"no-store"
//	@Router			/v1/auth/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		writeBadRequest(w, "expected application/x-www-form-urlencoded")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.AuthService.Authenticate(r.Context(), username, password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.AuthService.IssueTokens(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// RefreshHandler serves POST /v1/auth/refresh
type RefreshHandler struct {
	AuthService *service.AuthService
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ServeHTTP godoc
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a valid refresh token for a brand new access/refresh pair.
//	@Description	Both tokens rotate; the presented refresh token should be discarded.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		refreshRequest		true	"Refresh token"
//	@Success		200		{object}	domain.TokenPair	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	ErrorResponse		"detail"
//	@Failure		401		{object}	ErrorResponse		"detail"
//	@Header			200		{string}	Cache-Control		"no-store"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed json body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, r, domain.ErrAuth)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
