package admin_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupLifecycle(t *testing.T) {
	client, cleanup := setupAdminContainer(t)
	defer cleanup()

	adminPair := client.mustLogin(t, adminUsername, adminPassword)

	alice := client.register(t, "alice", "password123")
	alicePair := client.mustLogin(t, "alice", "password123")

	// Group writes are admin only.
	code := client.do(t, http.MethodPost, "/v1/groups", alicePair.AccessToken,
		map[string]string{"groupname": "eng"}, nil)
	require.Equal(t, http.StatusForbidden, code)

	var eng groupBody
	code = client.do(t, http.MethodPost, "/v1/groups", adminPair.AccessToken,
		map[string]string{"groupname": "eng"}, &eng)
	require.Equal(t, http.StatusCreated, code)

	// Duplicate groupnames are allowed.
	code = client.do(t, http.MethodPost, "/v1/groups", adminPair.AccessToken,
		map[string]string{"groupname": "eng"}, nil)
	require.Equal(t, http.StatusCreated, code)

	// Reads are open to any authenticated caller.
	var groups []groupBody
	code = client.do(t, http.MethodGet, "/v1/groups", alicePair.AccessToken, nil, &groups)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, groups, 2)

	// Rename.
	var renamed groupBody
	code = client.do(t, http.MethodPatch, "/v1/groups/"+eng.ID, adminPair.AccessToken,
		map[string]string{"groupname": "engineering"}, &renamed)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "engineering", renamed.Groupname)

	// Alice joins; deleting the group leaves her groupless but intact.
	var updated userBody
	code = client.do(t, http.MethodPatch, "/v1/users/"+alice.ID, adminPair.AccessToken,
		map[string]any{"group_id": eng.ID}, &updated)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, updated.GroupID)

	code = client.do(t, http.MethodDelete, "/v1/groups/"+eng.ID, adminPair.AccessToken, nil, nil)
	require.Equal(t, http.StatusNoContent, code)

	var me userBody
	code = client.do(t, http.MethodGet, "/v1/users/me", alicePair.AccessToken, nil, &me)
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, me.GroupID)

	code = client.do(t, http.MethodGet, "/v1/groups/"+eng.ID, alicePair.AccessToken, nil, nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestGroupMembershipClearing(t *testing.T) {
	client, cleanup := setupAdminContainer(t)
	defer cleanup()

	adminPair := client.mustLogin(t, adminUsername, adminPassword)

	var ops groupBody
	code := client.do(t, http.MethodPost, "/v1/groups", adminPair.AccessToken,
		map[string]string{"groupname": "ops"}, &ops)
	require.Equal(t, http.StatusCreated, code)

	// Creating a user straight into the group.
	var bob userBody
	code = client.do(t, http.MethodPost, "/v1/users", "", map[string]any{
		"username": "bob", "password": "password123", "group_id": ops.ID,
	}, &bob)
	require.Equal(t, http.StatusCreated, code)
	require.NotNil(t, bob.GroupID)

	// A nonexistent group is rejected at create time.
	code = client.do(t, http.MethodPost, "/v1/users", "", map[string]any{
		"username": "carol", "password": "password123", "group_id": "01ARZ3NDEKTSV4RRFFQ69G5FAV",
	}, nil)
	require.Equal(t, http.StatusNotFound, code)

	// PATCH with group_id "" clears the membership explicitly.
	var updated userBody
	code = client.do(t, http.MethodPatch, "/v1/users/"+bob.ID, adminPair.AccessToken,
		map[string]any{"group_id": ""}, &updated)
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, updated.GroupID)
}
