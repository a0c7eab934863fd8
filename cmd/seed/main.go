package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-ddd-rbac/config"
	"github.com/oksasatya/go-ddd-rbac/internal/application"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
	pginfra "github.com/oksasatya/go-ddd-rbac/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-rbac/internal/seeder"
	"github.com/oksasatya/go-ddd-rbac/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	var (
		password  = "password123"
		skipUsers bool
		migrate   bool
	)

	root := &cobra.Command{
		Use:   "seed",
		Short: "Seed roles, the permission catalogue and demo users into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
			ctx := cmd.Context()

			if migrate {
				if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}
			pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			guard := vo.GuardOrDefault(cfg.DefaultGuard)
			users := pginfra.NewUserRepository(pool, guard)
			roles := pginfra.NewRoleRepository(pool)
			perms := pginfra.NewPermissionRepository(pool)

			s := &seeder.Seeder{
				Services:    application.NewServices(users, roles, perms, nil, nil, guard, application.Hooks{Logger: logger}),
				Users:       users,
				Roles:       roles,
				Permissions: perms,
				Guard:       guard,
				Logger:      logger,
			}
			rep, err := s.Run(ctx, seeder.Options{SkipUsers: skipUsers, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created permissions=%d roles=%d users=%d\n", rep.Permissions, rep.Roles, rep.Users)
			return nil
		},
	}
	root.Flags().StringVar(&password, "password", password, "password for every demo user")
	root.Flags().BoolVar(&skipUsers, "skip-users", false, "seed roles and permissions only")
	root.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations first")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
