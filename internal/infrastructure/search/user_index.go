// Package search mirrors users into Elasticsearch for free-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// UserIndex writes one document per user, keyed by user id.
type UserIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{es: es, index: index}
}

// UserDocument is the indexed shape. The password hash is never indexed.
type UserDocument struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

func NewUserDocument(u *entity.User) UserDocument {
	id, _ := u.ID()
	doc := UserDocument{
		ID:    id.Value(),
		Name:  u.Name().Value(),
		Email: u.Email().Value(),
		Roles: u.Roles().Names(),
	}
	if !u.CreatedAt.IsZero() {
		doc.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !u.UpdatedAt.IsZero() {
		doc.UpdatedAt = u.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return doc
}

func (x *UserIndex) IndexUser(ctx context.Context, u *entity.User) error {
	doc := NewUserDocument(u)
	if doc.ID == "" {
		return fmt.Errorf("index user: user has no id")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: doc.ID, Body: bytes.NewReader(b), Refresh: "false"}
	return x.do(ctx, req, "index user")
}

func (x *UserIndex) DeleteUser(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	err := x.do(ctx, req, "delete user")
	if se, ok := err.(*statusError); ok && se.code == 404 {
		return nil
	}
	return err
}

// SearchUsers runs a multi_match over email, name and roles.
func (x *UserIndex) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	body, err := json.Marshal(searchQuery(q, size))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, &statusError{op: "search users", code: res.StatusCode, status: res.Status()}
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func searchQuery(q string, size int) map[string]any {
	if q == "" {
		return map[string]any{"query": map[string]any{"match_all": map[string]any{}}, "size": size}
	}
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name", "roles"},
			},
		},
		"size": size,
	}
}

type statusError struct {
	op     string
	code   int
	status string
}

func (e *statusError) Error() string { return e.op + ": elasticsearch responded " + e.status }

type requester interface {
	Do(ctx context.Context, transport esapi.Transport) (*esapi.Response, error)
}

func (x *UserIndex) do(ctx context.Context, req requester, op string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return &statusError{op: op, code: res.StatusCode, status: res.Status()}
	}
	return nil
}

const usersMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "name":       {"type": "text"},
      "email":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "roles":      {"type": "keyword"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the users index with its mapping when it does not exist.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(c))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}
	req := esapi.IndicesCreateRequest{Index: x.index, Body: strings.NewReader(usersMapping)}
	return x.do(ctx, req, "create index")
}
