package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

type recorded struct {
	method, path, body string
}

func newTestIndex(t *testing.T, status int, reply string) (*UserIndex, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewUserIndex(es, "users"), &calls
}

func testUser(t *testing.T) *entity.User {
	t.Helper()
	name, _ := vo.NewUserName("Carla")
	email, _ := vo.NewEmail("carla@farmacia.com")
	pw, _ := vo.PasswordFromHash("$2a$10$hash")
	roles, _ := vo.NewRoleSet([]string{"cajero"})
	return entity.ReconstituteUser(vo.MustID("7"), name, email, pw, roles)
}

func TestIndexUserOmitsPassword(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusCreated, `{"result":"created"}`)
	require.NoError(t, idx.IndexUser(context.Background(), testUser(t)))

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	require.Equal(t, http.MethodPut, call.method)
	require.Equal(t, "/users/_doc/7", call.path)
	require.NotContains(t, call.body, "hash")

	var doc UserDocument
	require.NoError(t, json.Unmarshal([]byte(call.body), &doc))
	require.Equal(t, []string{"cajero"}, doc.Roles)
}

func TestDeleteMissingDocumentIsNotAnError(t *testing.T) {
	idx, _ := newTestIndex(t, http.StatusNotFound, `{"result":"not_found"}`)
	require.NoError(t, idx.DeleteUser(context.Background(), "7"))
}

func TestSearchUsers(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusOK,
		`{"hits":{"hits":[{"_id":"7","_source":{"id":"7","email":"carla@farmacia.com"}}]}}`)

	hits, err := idx.SearchUsers(context.Background(), "carla", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "carla@farmacia.com", hits[0]["email"])
	require.True(t, strings.HasSuffix((*calls)[0].path, "/_search"))
	require.Contains(t, (*calls)[0].body, "multi_match")
}

func TestSearchUsersErrorStatus(t *testing.T) {
	idx, _ := newTestIndex(t, http.StatusInternalServerError, `{"error":"boom"}`)
	_, err := idx.SearchUsers(context.Background(), "", 5)
	require.Error(t, err)
}

func TestEnsureIndexCreatesWhenMissing(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusNotFound, `{}`)
	err := idx.EnsureIndex(context.Background())
	// The stub answers 404 to the create call too.
	require.Error(t, err)
	require.Len(t, *calls, 2)
	require.Equal(t, http.MethodHead, (*calls)[0].method)
	require.Equal(t, http.MethodPut, (*calls)[1].method)
	require.Contains(t, (*calls)[1].body, `"roles"`)
}
