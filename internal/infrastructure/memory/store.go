// Package memory provides process-local repositories. They back the "memory"
// store driver and the test suites, and mirror the Postgres schema rules:
// unique (name, guard) for roles and permissions, unique user email, and
// cascading detach of deleted roles and permissions.
package memory

import (
	"sort"
	"strconv"
	"sync"
	"time"

	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

type userRow struct {
	id        int64
	name      string
	email     string
	hash      string
	roles     []string
	createdAt time.Time
	updatedAt time.Time
}

type roleRow struct {
	id          int64
	name        string
	guard       string
	permissions []string
	createdAt   time.Time
	updatedAt   time.Time
}

type permissionRow struct {
	id        int64
	name      string
	guard     string
	createdAt time.Time
	updatedAt time.Time
}

// Store holds every table behind a single lock. Users hold roles by name
// within userGuard.
type Store struct {
	mu          sync.RWMutex
	seq         int64
	userGuard   string
	users       map[int64]*userRow
	roles       map[int64]*roleRow
	permissions map[int64]*permissionRow
	now         func() time.Time
}

func NewStore() *Store {
	return NewStoreForGuard(vo.GuardOrDefault(""))
}

// NewStoreForGuard returns a store whose users hold roles from guard.
func NewStoreForGuard(guard vo.GuardName) *Store {
	return &Store{
		userGuard:   guard.Value(),
		users:       map[int64]*userRow{},
		roles:       map[int64]*roleRow{},
		permissions: map[int64]*permissionRow{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() *UserRepository             { return &UserRepository{s: s} }
func (s *Store) Roles() *RoleRepository             { return &RoleRepository{s: s} }
func (s *Store) Permissions() *PermissionRepository { return &PermissionRepository{s: s} }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// rowID converts an ID to a table key. UUID ids never match a memory row.
func rowID(id vo.ID) (int64, bool) {
	n, err := strconv.ParseInt(id.Value(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// window returns the [from, to) bounds of a 1-based page over n rows.
func window(n, page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return 0, 0
	}
	from := (page - 1) * perPage
	if from > n {
		from = n
	}
	to := from + perPage
	if to > n {
		to = n
	}
	return from, to
}

func without(list []string, name string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != name {
			out = append(out, v)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
