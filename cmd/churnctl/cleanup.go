package main

import (
	"context"

	"churn-metrics-pipeline/internal/cleanup"
	platform "churn-metrics-pipeline/internal/platform/postgres"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Drop the pipeline schema and remove report files",
	Long: `Drops every churn_analytics table and the schema itself, then removes the csv, png
and pdf files from the output directory (and the directory when it is left empty).

Asks for confirmation unless --yes is given. --db-only leaves files alone and
--output-only never connects to the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		yes, _ := cmd.Flags().GetBool("yes")
		dbOnly, _ := cmd.Flags().GetBool("db-only")
		outputOnly, _ := cmd.Flags().GetBool("output-only")

		var confirmer cleanup.Confirmer = cleanup.PromptConfirmer{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
		if yes {
			confirmer = cleanup.Yes{}
		}

		uc := cleanup.NewUseCase(schemaDropper{a: a}, confirmer, a.logger)
		res, err := uc.Execute(ctx, cleanup.Options{
			DBOnly:     dbOnly,
			OutputOnly: outputOnly,
			OutputDir:  a.cfg.Output.Dir,
		})
		if err != nil {
			return err
		}
		for _, obj := range res.Dropped {
			a.logger.Debug("dropped", "object", obj)
		}
		for _, f := range res.Removed {
			a.logger.Debug("removed", "file", f)
		}
		return nil
	},
}

// schemaDropper connects only when the drop actually runs.
type schemaDropper struct {
	a *app
}

func (d schemaDropper) DropSchema(ctx context.Context) ([]string, error) {
	db, err := d.a.openDB(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return platform.DropSchema(ctx, db)
}

func init() {
	cleanupCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	cleanupCmd.Flags().Bool("db-only", false, "Only drop the database schema")
	cleanupCmd.Flags().Bool("output-only", false, "Only remove report files")
	cleanupCmd.MarkFlagsMutuallyExclusive("db-only", "output-only")
}
