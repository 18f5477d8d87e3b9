package datadog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vn.io.arda/provisioner/internal/domain"
)

var testPair = domain.CredentialPair{APIKey: "api-key", AppKey: "app-key"}

func TestListUsers_FollowsNextLinks(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "api-key", r.Header.Get("DD-API-KEY"))
		assert.Equal(t, "app-key", r.Header.Get("DD-APPLICATION-KEY"))

		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			fmt.Fprint(w, `{"data":[
				{"id":"1","attributes":{"email":"a@x.com","name":"Alice","status":"Pending"}},
				{"id":"2","attributes":{"email":"b@x.com","name":"Bob","status":"Active"}}],
				"links":{"next":"/api/v2/users?page=2"}}`)
		case "2":
			fmt.Fprint(w, `{"data":[{"id":"3","attributes":{"email":"c@x.com","name":"Carol","status":"Pending"}}],
				"links":{"next":"/api/v2/users?page=3"}}`)
		default:
			fmt.Fprint(w, `{"data":[{"id":"4","attributes":{"email":"d@x.com","name":"Dan","status":"Pending"}}],"links":{}}`)
		}
	}))
	defer srv.Close()

	c := newForBase(srv.URL, 5*time.Second)
	pager := c.ListUsers(testPair, domain.StatusPending)

	var ids []string
	for pager.Next(context.Background()) {
		ids = append(ids, pager.User().ID)
	}
	require.NoError(t, pager.Err())
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.Equal(t, 3, requests, "one request per page, stop when the next link is absent")
}

func TestListUsers_TransportErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	pager := newForBase(srv.URL, 5*time.Second).ListUsers(testPair, "")
	assert.False(t, pager.Next(context.Background()))
	require.Error(t, pager.Err())
	assert.Contains(t, pager.Err().Error(), "status 403")
}

func TestCreateUser_SendsRoleRelationship(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v2/users", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"data":{"id":"u-77","type":"users","attributes":{"status":"Pending"}}}`)
	}))
	defer srv.Close()

	c := newForBase(srv.URL, 5*time.Second)
	user, err := c.CreateUser(context.Background(), testPair, "a@x.com", "Alice", "42")
	require.NoError(t, err)

	assert.Equal(t, "u-77", user.ID)
	assert.Equal(t, domain.StatusPending, user.Status)

	data := got["data"].(map[string]any)
	attrs := data["attributes"].(map[string]any)
	assert.Equal(t, "a@x.com", attrs["email"])
	assert.Equal(t, "Alice", attrs["name"])
	roles := data["relationships"].(map[string]any)["roles"].(map[string]any)["data"].([]any)
	require.Len(t, roles, 1)
	assert.Equal(t, "42", roles[0].(map[string]any)["id"])
}

func TestSendInvite_ReferencesUser(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/user_invitations", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"data":[{"type":"user_invitations","id":"inv-1"}]}`)
	}))
	defer srv.Close()

	sent, err := newForBase(srv.URL, 5*time.Second).SendInvite(context.Background(), testPair, "u-77")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	invites := got["data"].([]any)
	require.Len(t, invites, 1)
	user := invites[0].(map[string]any)["relationships"].(map[string]any)["user"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "u-77", user["id"])
}

func TestDisableUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v2/users/u-77", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newForBase(srv.URL, 5*time.Second).DisableUser(context.Background(), testPair, "u-77")
	assert.NoError(t, err)
}

func TestListRoles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/roles", r.URL.Path)
		fmt.Fprint(w, `{"data":[
			{"id":"42","attributes":{"name":"Admin"}},
			{"id":"7","attributes":{"name":"Viewer"}}]}`)
	}))
	defer srv.Close()

	roles, err := newForBase(srv.URL, 5*time.Second).ListRoles(context.Background(), testPair)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{{ID: "42", Name: "Admin"}, {ID: "7", Name: "Viewer"}}, roles)
}

func TestCreateUser_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	_, err := newForBase(srv.URL, 5*time.Second).CreateUser(context.Background(), testPair, "a@x.com", "Alice", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 409")
}
