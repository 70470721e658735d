package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"yorick/internal/pipeline"
	"yorick/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.migrate(cmd.Context()); err != nil {
			return err
		}
		slog.Info("migrations applied")
		return nil
	},
}

var generatePostCmd = &cobra.Command{
	Use:   "generate-post",
	Short: "Run the content pipeline once and store a new draft",
	Long: `Runs the content pipeline once. Pass --run-id with the id of a failed
run to resume it from its last finished step.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		runID := runIDFlag(cmd)
		path, err := a.contentPipeline(a.registry()).Run(cmd.Context(), runID)
		if err != nil {
			return fmt.Errorf("content run %s: %w", runID, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var discoverCategoriesCmd = &cobra.Command{
	Use:   "discover-categories",
	Short: "Ask the model for new categories and add them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		runID := runIDFlag(cmd)
		added, err := a.categoryPipeline(a.registry()).Run(cmd.Context(), runID)
		if err != nil {
			return fmt.Errorf("category run %s: %w", runID, err)
		}
		if len(added) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no new categories")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(added, "\n"))
		return nil
	},
}

var resetRunCmd = &cobra.Command{
	Use:   "reset-run RUN_ID",
	Short: "Forget the checkpoints of a run so it starts over",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if a.valkey == nil {
			return errors.New("reset-run needs Valkey; in-memory checkpoints do not outlive the process")
		}
		if err := a.checkpoints.Clear(cmd.Context(), args[0]); err != nil {
			return err
		}
		slog.Info("run checkpoints cleared", "run_id", args[0])
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload every published post as Markdown to object storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := a.cfg
		bucket, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		res, err := storage.Export(cmd.Context(), a.posts, bucket)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d, unchanged %d, pruned %d to %s\n",
			res.Uploaded, res.Unchanged, res.Pruned, bucket.ObjectURL(storage.ExportPrefix))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{generatePostCmd, discoverCategoriesCmd} {
		c.Flags().String("run-id", "", "resume the run with this id instead of starting a new one")
	}
}

// runIDFlag returns --run-id, or a fresh id when the flag is empty.
func runIDFlag(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("run-id")
	if id == "" {
		id = pipeline.NewRunID()
		slog.Info("starting new run", "run_id", id)
	}
	return id
}
