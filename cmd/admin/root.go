package main

import (
	"context"

	"puppytalk/internal/config"
	"puppytalk/internal/database"
	"puppytalk/internal/repository"
	"puppytalk/internal/security"
	"puppytalk/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// deps are the services the subcommands act through.
type deps struct {
	users    *service.UserService
	sessions *service.SessionService
	close    func() error
}

type depsFunc func(ctx context.Context) (*deps, error)

func openDeps(_ context.Context) (*deps, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return newDeps(db, cfg), nil
}

func newDeps(db *gorm.DB, cfg *config.Config) *deps {
	return &deps{
		users: service.NewUserService(
			repository.NewUserRepository(db),
			repository.NewImageRepository(db),
			security.NewHasher(cfg.BcryptCost),
		),
		sessions: service.NewSessionService(repository.NewSessionRepository(db), cfg.SessionTTL()),
		close:    func() error { return database.Close(db) },
	}
}

func newRootCmd(open depsFunc) *cobra.Command {
	var d *deps
	root := &cobra.Command{
		Use:           "admin",
		Short:         "PuppyTalk operator utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			d, err = open(cmd.Context())
			return err
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if d == nil {
				return nil
			}
			return d.close()
		},
	}
	get := func() *deps { return d }
	root.AddCommand(newSessionsCmd(get), newUsersCmd(get))
	return root
}
