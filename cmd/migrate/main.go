package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/config"
	"github.com/siarkonyar/fitnessChronicleServer/internal/migrate"
	"github.com/siarkonyar/fitnessChronicleServer/internal/storage"
)

var purgeUserID string

func newRunner() (*migrate.Runner, *storage.Repositories, error) {
	cfg := config.Load()
	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	var repos *storage.Repositories
	if cfg.DBType == "postgres" {
		repos, err = storage.NewPostgresRepositories(cfg.DBDSN, logger)
	} else {
		repos, err = storage.NewFileRepositories(cfg.FileLabels, cfg.FileAssignments, cfg.FileExercises, cfg.FileNames, logger)
	}
	if err != nil {
		return nil, nil, err
	}
	return migrate.NewRunner(repos.Batch, logger), repos, nil
}

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bulk maintenance over the fitness data store",
}

var relabelCmd = &cobra.Command{
	Use:   "relabel <legacy-file>",
	Short: "Rewrite legacy emoji records as labels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var records []migrate.LegacyEmoji
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		runner, repos, err := newRunner()
		if err != nil {
			return err
		}
		defer repos.Close()

		n, err := runner.Relabel(cmd.Context(), records)
		if err != nil {
			return err
		}
		fmt.Printf("migrated %d records\n", n)
		return nil
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Drop stale label date entries left by interrupted assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, repos, err := newRunner()
		if err != nil {
			return err
		}
		defer repos.Close()

		n, err := runner.ReconcileDates(cmd.Context(), repos.Labels, repos.Assignments)
		if err != nil {
			return err
		}
		fmt.Printf("repaired %d labels\n", n)
		return nil
	},
}

var purgeLogsCmd = &cobra.Command{
	Use:   "purge-logs",
	Short: "Delete every exercise log a user owns",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, repos, err := newRunner()
		if err != nil {
			return err
		}
		defer repos.Close()

		n, err := runner.PurgeLogs(cmd.Context(), repos.Exercises, purgeUserID)
		if err != nil {
			return err
		}
		fmt.Printf("purged %d logs\n", n)
		return nil
	},
}

func init() {
	purgeLogsCmd.Flags().StringVar(&purgeUserID, "user", "", "user ID to purge")
	if err := purgeLogsCmd.MarkFlagRequired("user"); err != nil {
		log.Fatalf("failed to mark --user required: %v", err)
	}
	rootCmd.AddCommand(relabelCmd, reconcileCmd, purgeLogsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
