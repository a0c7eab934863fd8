package handlers

import (
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	"github.com/oksasatya/go-ddd-rbac/pkg/response"
)

type userView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Roles     []string   `json:"roles"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type roleView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	GuardName   string     `json:"guard_name"`
	Permissions []string   `json:"permissions"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type permissionView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	GuardName string     `json:"guard_name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func presentUser(u *entity.User) userView {
	id, _ := u.ID()
	return userView{
		ID:        id.Value(),
		Name:      u.Name().Value(),
		Email:     u.Email().Value(),
		Roles:     u.Roles().Names(),
		CreatedAt: timePtr(u.CreatedAt),
		UpdatedAt: timePtr(u.UpdatedAt),
	}
}

func presentRole(r *entity.Role) roleView {
	id, _ := r.ID()
	return roleView{
		ID:          id.Value(),
		Name:        r.Name().Value(),
		GuardName:   r.Guard().Value(),
		Permissions: r.Permissions(),
		CreatedAt:   timePtr(r.CreatedAt),
		UpdatedAt:   timePtr(r.UpdatedAt),
	}
}

func presentPermission(p *entity.Permission) permissionView {
	id, _ := p.ID()
	return permissionView{
		ID:        id.Value(),
		Name:      p.Name().Value(),
		GuardName: p.Guard().Value(),
		CreatedAt: timePtr(p.CreatedAt),
		UpdatedAt: timePtr(p.UpdatedAt),
	}
}

// presentPage maps a page of aggregates and builds its meta block.
func presentPage[T, V any](p *application.Page[T], present func(T) V) ([]V, response.PageMeta) {
	items := make([]V, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, present(it))
	}
	return items, response.PageMeta{Total: p.Total, Page: p.Page, PerPage: p.PerPage, LastPage: p.LastPage()}
}

type listQuery struct {
	Page    int `form:"page" binding:"omitempty,gte=1"`
	PerPage int `form:"per_page" binding:"omitempty,gte=1,lte=100"`
}

func (q listQuery) input() application.ListInput {
	return application.ListInput{Page: q.Page, PerPage: q.PerPage}
}
