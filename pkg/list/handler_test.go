package list_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/middlewares"
	"github.com/trelliskit/trellis/pkg/access"
	"github.com/trelliskit/trellis/pkg/list"
)

func newTestServer(t *testing.T, repo list.Repository, checker access.Checker) *httptest.Server {
	t.Helper()

	svc := list.NewService(repo, checker)
	r := chi.NewRouter()
	r.Use(middlewares.Actor(middlewares.HeaderActorResolver("X-Actor")))
	list.NewHandler(svc, nil).Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandlerListFlow(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	srv := newTestServer(t, repo, access.DenyAll())
	client := srv.Client()

	do := func(method, path, body string) *http.Response {
		t.Helper()
		req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("X-Actor", "User/1")
		resp, err := client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := do(http.MethodPost, "/lists", `{"title":"Reading"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created list.List
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Equal(t, "Reading", created.Title)

	resp = do(http.MethodPost, "/lists/"+created.ID+"/items", `{"object":"Story/1","name":"first"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item list.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	require.Equal(t, 0, item.SortOrder)

	resp = do(http.MethodPost, "/lists/"+created.ID+"/items", `{"object":"Story/2"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(http.MethodGet, "/lists/"+created.ID+"/items", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []list.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)

	resp = do(http.MethodPatch, "/lists/"+created.ID+"/items/"+item.ID,
		`{"position":1,"state":"deselected"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moved list.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&moved))
	require.Equal(t, 1, moved.SortOrder)
	require.Equal(t, list.StateDeselected, moved.State)

	resp = do(http.MethodGet, "/lists/"+created.ID+"/items/named/first", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(http.MethodDelete, "/lists/"+created.ID+"/items/"+item.ID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(http.MethodDelete, "/lists/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHandlerListErrors(t *testing.T) {
	t.Parallel()

	t.Run("duplicate object is 409", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo(seededList())
		srv := newTestServer(t, repo, access.DenyAll())

		add := func() *http.Response {
			req, err := http.NewRequestWithContext(t.Context(), http.MethodPost,
				srv.URL+"/lists/l1/items", strings.NewReader(`{"object":"Story/1"}`))
			require.NoError(t, err)
			req.Header.Set("X-Actor", "User/1")
			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			t.Cleanup(func() { resp.Body.Close() })
			return resp
		}

		require.Equal(t, http.StatusCreated, add().StatusCode)
		require.Equal(t, http.StatusConflict, add().StatusCode)
	})

	t.Run("stranger read is 403", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, newFakeRepo(seededList()), access.DenyAll())

		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/lists/l1", nil)
		require.NoError(t, err)
		req.Header.Set("X-Actor", "User/2")
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("containing requires object", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, newFakeRepo(), access.AllowAll())

		resp, err := srv.Client().Get(srv.URL + "/lists/containing")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
