package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sandevgo/docqa/internal/config"
	"github.com/sandevgo/docqa/internal/core"
	"github.com/sandevgo/docqa/internal/storage/sqlite"
	"github.com/sandevgo/docqa/pkg/log"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an organization and print its API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		db, err := initStorage(ctx, appCfg)
		if err != nil {
			return err
		}
		defer db.Close()

		org := core.Organization{
			ID:        uuid.NewString(),
			Name:      args[0],
			APIKey:    uuid.NewString(),
			CreatedAt: time.Now(),
		}
		if err := sqlite.NewOrganizationsRepo(db).Create(ctx, org); err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Str("org_id", org.ID).Str("name", org.Name).Msg("organization created")

		// The API key is shown once; it is not retrievable later.
		fmt.Printf("Organization: %s\nID:           %s\nAPI key:      %s\n", org.Name, org.ID, org.APIKey)
		return nil
	},
}

func init() {
	orgCmd.AddCommand(orgCreateCmd)
	rootCmd.AddCommand(orgCmd)
}
