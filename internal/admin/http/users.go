package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/service"
	"github.com/userdesk/userdesk/pkg/httpx"
)

// UsersHandler serves the /v1/users surface.
type UsersHandler struct {
	UserService *service.UserService
}

// UserResponse is the wire shape of a user. The password hash never leaves
// the service.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name"`
	StageName string     `json:"stage_name,omitempty"`
	Nickname  string     `json:"nickname,omitempty"`
	IsAdmin   bool       `json:"is_admin"`
	GroupID   *string    `json:"group_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		StageName: u.StageName,
		Nickname:  u.Nickname,
		IsAdmin:   u.IsAdmin,
		GroupID:   u.GroupID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		DeletedAt: u.DeletedAt,
	}
}

type createUserRequest struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FullName  string  `json:"full_name"`
	StageName string  `json:"stage_name"`
	Nickname  string  `json:"nickname"`
	IsAdmin   bool    `json:"is_admin"`
	GroupID   *string `json:"group_id"`
}

type updateUserRequest struct {
	Username  *string `json:"username"`
	FullName  *string `json:"full_name"`
	StageName *string `json:"stage_name"`
	Nickname  *string `json:"nickname"`
	IsAdmin   *bool   `json:"is_admin"`
	GroupID   *string `json:"group_id"`
	Password  *string `json:"password"`
}

// Create godoc
//
//	@Summary		Register a user
//	@Description	Creates a new user. Anonymous callers can self-register; setting
//	@Description	is_admin requires an authenticated admin.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		createUserRequest	true	"New user"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse	"duplicate username"
//	@Failure		403		{object}	ErrorResponse	"is_admin without admin caller"
//	@Failure		422		{object}	ErrorResponse	"validation failure"
//	@Router			/v1/users [post].
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed json body")
		return
	}

	var actor *domain.User
	if u, ok := CurrentUser(r.Context()); ok {
		actor = &u
	}

	user, err := h.UserService.Create(r.Context(), actor, domain.UserCreate{
		Username:  req.Username,
		Password:  req.Password,
		FullName:  req.FullName,
		StageName: req.StageName,
		Nickname:  req.Nickname,
		IsAdmin:   req.IsAdmin,
		GroupID:   req.GroupID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// List godoc
//
//	@Summary		List users
//	@Description	Returns all users. Admin only; include_deleted=true also returns
//	@Description	soft-deleted rows.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			include_deleted	query		bool	false	"Include soft-deleted users"
//	@Success		200				{array}		UserResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		403				{object}	ErrorResponse
//	@Router			/v1/users [get].
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r.Context())
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	users, err := h.UserService.List(r.Context(), actor, includeDeleted)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Me godoc
//
//	@Summary		Current user
//	@Description	Returns the account the presented access token belongs to.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/v1/users/me [get].
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r.Context())
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(actor))
}

// Get godoc
//
//	@Summary		Get a user
//	@Description	Returns one user. Non-admin callers may only fetch themselves.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id				path		string	true	"User id"
//	@Param			include_deleted	query		bool	false	"Include soft-deleted users (admin only)"
//	@Success		200				{object}	UserResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		403				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r.Context())
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.UserService.Get(r.Context(), actor, id, includeDeleted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Update godoc
//
//	@Summary		Update a user
//	@Description	Field-level partial update: absent fields are untouched, present
//	@Description	fields replace. Self-or-admin; changing is_admin requires an admin.
//	@Description	Setting group_id to "" clears the membership.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User id"
//	@Param			body	body		updateUserRequest	true	"Fields to change"
//	@Success		200		{object}	UserResponse
//	@Failure		400		{object}	ErrorResponse	"duplicate username"
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse	"validation failure"
//	@Router			/v1/users/{id} [patch].
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed json body")
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := CurrentUser(r.Context())
	user, err := h.UserService.Update(r.Context(), actor, id, domain.UserUpdate{
		Username:  req.Username,
		FullName:  req.FullName,
		StageName: req.StageName,
		Nickname:  req.Nickname,
		IsAdmin:   req.IsAdmin,
		GroupID:   req.GroupID,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Delete godoc
//
//	@Summary		Soft-delete a user
//	@Description	Stamps the user as deleted; the row is retained and the username
//	@Description	becomes available again. Admin only; admins cannot delete themselves.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User id"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := CurrentUser(r.Context())
	if err := h.UserService.SoftDelete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Purge godoc
//
//	@Summary		Permanently delete a user
//	@Description	Physically removes the row, soft-deleted or not. Irreversible.
//	@Description	Admin only.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User id"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/v1/users/{id}/permanent [delete].
func (h *UsersHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := CurrentUser(r.Context())
	if err := h.UserService.HardDelete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
