package main

import (
	"fmt"

	"github.com/rpggio/foreman/internal/domain/player"
	"github.com/rpggio/foreman/internal/sqlite"
	"github.com/spf13/cobra"
)

func newMigrateCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date\n", cfg.DB.Path)
			return nil
		},
	}
}

func newPlayerCommand(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Manage players",
	}
	cmd.AddCommand(newPlayerCreateCommand(load))
	return cmd
}

func newPlayerCreateCommand(load configLoader) *cobra.Command {
	var req player.CreateRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a player with starting funds",
		Long: `Register a player with starting funds and construction workers.

Example:
  foreman player create --name alice --money 500000 --workers 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			p, err := player.NewService(sqlite.NewPlayerRepository(db), nil).Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created player %s (%s) with %.0f coins and %d workers\n",
				p.ID, p.Name, p.Money, p.ConstructionWorkers)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.ID, "id", "", "player id (generated when empty)")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().Float64Var(&req.Money, "money", defaultStartingMoney, "starting funds")
	cmd.Flags().IntVar(&req.ConstructionWorkers, "workers", 1, "construction workers")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAPIKeyCommand(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage bearer tokens for the HTTP transport",
	}

	var playerID, token, description string
	add := &cobra.Command{
		Use:   "add",
		Short: "Map a bearer token to a player",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := sqlite.NewAPIKeyRepository(db).Add(cmd.Context(), playerID, token, description); err != nil {
				return fmt.Errorf("adding key for %s: %w", playerID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token registered for player %s\n", playerID)
			return nil
		},
	}
	add.Flags().StringVar(&playerID, "player", "", "player id")
	add.Flags().StringVar(&token, "token", "", "bearer token")
	add.Flags().StringVar(&description, "description", "", "note stored with the key")
	_ = add.MarkFlagRequired("player")
	_ = add.MarkFlagRequired("token")
	cmd.AddCommand(add)
	return cmd
}
