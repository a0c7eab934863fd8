package router

import (
	"github.com/oksasatya/go-ddd-rbac/config"
	"github.com/oksasatya/go-ddd-rbac/internal/application"
	"github.com/oksasatya/go-ddd-rbac/internal/container"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
	pginfra "github.com/oksasatya/go-ddd-rbac/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/token"
	handlers "github.com/oksasatya/go-ddd-rbac/internal/interface/http"
	"github.com/oksasatya/go-ddd-rbac/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-rbac/internal/metrics"
	"github.com/oksasatya/go-ddd-rbac/internal/router/modules"
)

// Repositories bundles the three aggregate stores of one driver.
type Repositories struct {
	Users       repo.UserRepository
	Roles       repo.RoleRepository
	Permissions repo.PermissionRepository
}

// Deps is everything the HTTP modules are built from.
type Deps struct {
	Repos    Repositories
	Tokens   *token.JWTManager
	Index    application.UserIndexer
	Guard    vo.GuardName
	Hooks    application.Hooks
	Counter  middleware.Counter
	Recorder *metrics.Recorder
	Cookie   CookieOptions
	Services application.Services
}

type CookieOptions struct {
	Domain string
	Secure bool
}

// NewServices builds the use cases over r.
func NewServices(r Repositories, tokens repo.TokenManager, index application.UserIndexer, guard vo.GuardName, hooks application.Hooks) application.Services {
	return application.NewServices(r.Users, r.Roles, r.Permissions, tokens, index, guard, hooks)
}

// BuildRepositories picks the storage backend named by STORE_DRIVER.
func BuildRepositories(cfg *config.Config, guard vo.GuardName) Repositories {
	if cfg.StoreDriver == config.DriverMemory {
		store := container.GetMemoryStore(guard)
		return Repositories{Users: store.Users(), Roles: store.Roles(), Permissions: store.Permissions()}
	}
	pool := container.GetPGPool()
	return Repositories{
		Users:       pginfra.NewUserRepository(pool, guard),
		Roles:       pginfra.NewRoleRepository(pool),
		Permissions: pginfra.NewPermissionRepository(pool),
	}
}

// BuildTokenManager signs tokens with the configured secret and keeps the
// revocation list in Redis when available, in process memory otherwise.
func BuildTokenManager(cfg *config.Config, users repo.UserRepository) *token.JWTManager {
	var revoked token.RevocationStore = token.NewMemoryRevocationStore()
	if rdb := container.GetRedis(); rdb != nil {
		revoked = token.NewRedisRevocationStore(rdb)
	}
	return token.NewJWTManager(token.Options{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		TTL:        cfg.JWTTTL,
		RefreshTTL: cfg.JWTRefreshTTL,
	}, users, revoked)
}

func buildDeps() Deps {
	cfg := container.GetConfig()
	guard := vo.GuardOrDefault(cfg.DefaultGuard)
	repos := BuildRepositories(cfg, guard)

	rec := container.GetMetrics()
	hooks := application.Hooks{
		Logger:  container.GetLogger(),
		Events:  container.GetPublisher(),
		Metrics: rec,
	}

	var index application.UserIndexer
	if es := container.GetES(); es != nil {
		index = search.NewUserIndex(es, cfg.ESUsersIndex)
	}

	var counter middleware.Counter = middleware.NewMemoryCounter()
	if rdb := container.GetRedis(); rdb != nil {
		counter = middleware.NewRedisCounter(rdb)
	}

	tokens := BuildTokenManager(cfg, repos.Users)
	return Deps{
		Repos:    repos,
		Tokens:   tokens,
		Index:    index,
		Guard:    guard,
		Hooks:    hooks,
		Counter:  counter,
		Recorder: rec,
		Cookie:   CookieOptions{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure},
		Services: NewServices(repos, tokens, index, guard, hooks),
	}
}

// Modules builds every HTTP module from d.
func Modules(d Deps) []Module {
	logger := d.Hooks.Logger
	shared := modules.Shared{
		Auth:    d.Services.Auth,
		Authz:   d.Services.Authz,
		Counter: d.Counter,
		Metrics: d.Recorder,
		Logger:  logger,
	}
	return []Module{
		modules.NewAuthModule(handlers.NewAuthHandler(d.Services.Auth, d.Services.Authz, logger, d.Cookie.Domain, d.Cookie.Secure), shared),
		modules.NewPermissionModule(handlers.NewPermissionHandler(d.Services.Permissions, logger), shared),
		modules.NewRoleModule(handlers.NewRoleHandler(d.Services.Roles, logger), shared),
		modules.NewUserModule(handlers.NewUserHandler(d.Services.Users, logger), shared),
		modules.NewDebugModule(d.Recorder),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	for _, m := range Modules(buildDeps()) {
		r.Add(m)
	}
}
