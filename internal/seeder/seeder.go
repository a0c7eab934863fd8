// Package seeder loads the baseline roles, the permission catalogue and demo
// accounts. Every step is idempotent and goes through the use cases, so the
// usual validation applies.
package seeder

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// Roles seeded in the default guard.
var Roles = []string{"admin", "cajero", "almacen", "compras", "auditor"}

// modules lists the actions of each permission module; permission names are
// "<module>-<action>".
var modules = []struct {
	name    string
	actions []string
}{
	{"manager", []string{"dashboards", "catalogs", "users", "suppliers", "products", "reports", "sales", "shoppings", "recipes", "audits", "permissions"}},
	{"user", crud},
	{"roles", crud},
	{"permissions", crud},
	{"category", crud},
	{"status", crud},
	{"denominations", crud},
	{"laboratories", crud},
	{"saletypes", crud},
	{"pharmaceuticalforms", crud},
	{"symptoms", crud},
	{"suppliers", crud},
	{"products", crud},
	{"batches", crud},
	{"sales", []string{"list", "view", "create", "edit", "delete", "print", "annular"}},
	{"returns", []string{"list", "view", "create", "edit", "delete", "print", "authorize"}},
	{"report", []string{"list", "view", "export", "print"}},
}

var crud = []string{"list", "view", "create", "edit", "delete", "export", "print"}

var cashierPermissions = []string{
	"sales-view", "sales-create", "sales-edit", "sales-print", "sales-annular",
	"returns-view", "returns-create", "returns-edit", "returns-print",
}

// DemoUser is one seeded account.
type DemoUser struct {
	Name  string
	Email string
	Role  string
}

var DemoUsers = []DemoUser{
	{"Admin", "admin@farmacia.com", "admin"},
	{"Cajero", "cajero@farmacia.com", "cajero"},
	{"Almacén", "almacen@farmacia.com", "almacen"},
	{"Compras", "compras@farmacia.com", "compras"},
	{"Auditor", "auditor@farmacia.com", "auditor"},
}

// Catalogue returns every permission name in declaration order.
func Catalogue() []string {
	var out []string
	for _, m := range modules {
		for _, a := range m.actions {
			out = append(out, m.name+"-"+a)
		}
	}
	return out
}

type Seeder struct {
	Services    application.Services
	Users       repo.UserRepository
	Roles       repo.RoleRepository
	Permissions repo.PermissionRepository
	Guard       vo.GuardName
	Logger      *logrus.Logger
}

type Options struct {
	// SkipUsers leaves accounts untouched.
	SkipUsers bool
	// Password for every demo account.
	Password string
}

// Report counts what a run created; existing records are not counted.
type Report struct {
	Permissions int
	Roles       int
	Users       int
}

func (s *Seeder) Run(ctx context.Context, opts Options) (Report, error) {
	var rep Report
	if s.Guard.Value() == "" {
		s.Guard = vo.GuardOrDefault("")
	}
	if opts.Password == "" {
		opts.Password = "password123"
	}

	catalogue := Catalogue()
	for _, name := range catalogue {
		created, err := s.ensurePermission(ctx, name)
		if err != nil {
			return rep, err
		}
		if created {
			rep.Permissions++
		}
	}

	grants := map[string][]string{
		"admin":  catalogue,
		"cajero": cashierPermissions,
	}
	for _, name := range Roles {
		created, err := s.ensureRole(ctx, name, grants[name])
		if err != nil {
			return rep, err
		}
		if created {
			rep.Roles++
		}
	}

	if opts.SkipUsers {
		return rep, nil
	}
	for _, u := range DemoUsers {
		created, err := s.ensureUser(ctx, u, opts.Password)
		if err != nil {
			return rep, err
		}
		if created {
			rep.Users++
		}
	}
	s.log().WithFields(logrus.Fields{
		"permissions": rep.Permissions,
		"roles":       rep.Roles,
		"users":       rep.Users,
	}).Info("seed complete")
	return rep, nil
}

func (s *Seeder) ensurePermission(ctx context.Context, raw string) (bool, error) {
	name, err := vo.NewPermissionName(raw)
	if err != nil {
		return false, err
	}
	existing, err := s.Permissions.FindByName(ctx, name, s.Guard)
	if err != nil || existing != nil {
		return false, err
	}
	if _, err := s.Services.Permissions.Create(ctx, application.CreatePermissionInput{Name: raw, Guard: s.Guard.Value()}); err != nil {
		return false, fmt.Errorf("seed permission %s: %w", raw, err)
	}
	return true, nil
}

// ensureRole creates the role or grants it any missing permissions. Grants are
// additive; permissions given by hand are kept.
func (s *Seeder) ensureRole(ctx context.Context, raw string, grant []string) (bool, error) {
	name, err := vo.NewRoleName(raw)
	if err != nil {
		return false, err
	}
	existing, err := s.Roles.FindByName(ctx, name, s.Guard)
	if err != nil {
		return false, err
	}
	if existing == nil {
		if _, err := s.Services.Roles.Create(ctx, application.CreateRoleInput{Name: raw, Guard: s.Guard.Value(), Permissions: grant}); err != nil {
			return false, fmt.Errorf("seed role %s: %w", raw, err)
		}
		return true, nil
	}

	merged := existing.Permissions()
	missing := false
	for _, p := range grant {
		if !existing.HasPermission(p) {
			merged = append(merged, p)
			missing = true
		}
	}
	if !missing {
		return false, nil
	}
	id, _ := existing.ID()
	if _, err := s.Services.Roles.Update(ctx, application.UpdateRoleInput{ID: id.Value(), Permissions: &merged}); err != nil {
		return false, fmt.Errorf("seed role %s: %w", raw, err)
	}
	return false, nil
}

// ensureUser creates the account, or resets its name and password and adds the role.
func (s *Seeder) ensureUser(ctx context.Context, u DemoUser, password string) (bool, error) {
	email, err := vo.NewEmail(u.Email)
	if err != nil {
		return false, err
	}
	existing, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing == nil {
		if _, err := s.Services.Users.Create(ctx, application.CreateUserInput{
			Name:     u.Name,
			Email:    u.Email,
			Password: password,
			Roles:    []string{u.Role},
		}); err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		return true, nil
	}

	roles := existing.Roles().Names()
	if !existing.HasRole(u.Role) {
		roles = append(roles, u.Role)
	}
	id, _ := existing.ID()
	if _, err := s.Services.Users.Update(ctx, application.UpdateUserInput{
		ID:       id.Value(),
		Name:     &u.Name,
		Password: &password,
		Roles:    &roles,
	}); err != nil {
		return false, fmt.Errorf("seed user %s: %w", u.Email, err)
	}
	return false, nil
}

func (s *Seeder) log() *logrus.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}
