package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/service"
	"github.com/userdesk/userdesk/pkg/httpx"
)

// GroupsHandler serves the /v1/groups surface.
type GroupsHandler struct {
	GroupService *service.GroupService
}

type GroupResponse struct {
	ID        string    `json:"id"`
	Groupname string    `json:"groupname"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toGroupResponse(g domain.Group) GroupResponse {
	return GroupResponse{
		ID:        g.ID,
		Groupname: g.Groupname,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

type createGroupRequest struct {
	Groupname string `json:"groupname"`
}

type updateGroupRequest struct {
	Groupname *string `json:"groupname"`
}

// Create godoc
//
//	@Summary		Create a group
//	@Description	Creates a new group. Admin only. Duplicate groupnames are permitted.
//	@Tags			Groups
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		createGroupRequest	true	"New group"
//	@Success		201		{object}	GroupResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse	"validation failure"
//	@Router			/v1/groups [post].
func (h *GroupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed json body")
		return
	}

	actor, _ := CurrentUser(r.Context())
	group, err := h.GroupService.Create(r.Context(), actor, req.Groupname)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toGroupResponse(group))
}

// List godoc
//
//	@Summary	List groups
//	@Tags		Groups
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}		GroupResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/v1/groups [get].
func (h *GroupsHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.GroupService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Get godoc
//
//	@Summary	Get a group
//	@Tags		Groups
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Group id"
//	@Success	200	{object}	GroupResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/v1/groups/{id} [get].
func (h *GroupsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	group, err := h.GroupService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toGroupResponse(group))
}

// Update godoc
//
//	@Summary		Rename a group
//	@Description	Admin only.
//	@Tags			Groups
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Group id"
//	@Param			body	body		updateGroupRequest	true	"Fields to change"
//	@Success		200		{object}	GroupResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse	"validation failure"
//	@Router			/v1/groups/{id} [patch].
func (h *GroupsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
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
	group, err := h.GroupService.Update(r.Context(), actor, id, domain.GroupUpdate{
		Groupname: req.Groupname,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toGroupResponse(group))
}

// Delete godoc
//
//	@Summary		Delete a group
//	@Description	Physically removes the group. Unconditional and irreversible;
//	@Description	members keep existing with their membership cleared. Admin only.
//	@Tags			Groups
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Group id"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/v1/groups/{id} [delete].
func (h *GroupsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := CurrentUser(r.Context())
	if err := h.GroupService.Delete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
