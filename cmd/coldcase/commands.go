package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/myrjola/coldcase/internal/engine"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
	"github.com/myrjola/coldcase/internal/scenario"
	"github.com/spf13/cobra"
)

func newNewCmd(app *application) *cobra.Command {
	var casePath string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new investigation",
		Long:  `Generates a new murder case, or reads a hand-written one with --case, and starts the interrogations.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				s   *models.Scenario
				err error
			)
			if casePath != "" {
				s, err = readCase(casePath)
			} else {
				app.printf("%s\n", styles.dim.Render("Generating a new case..."))
				s, err = app.generator.Generate(ctx)
			}
			if err != nil {
				return errors.Wrap(err, "prepare case")
			}
			session, err := app.engine.NewSession(ctx, uuid.NewString(), *s)
			if err != nil {
				return errors.Wrap(err, "start session")
			}
			return app.play(ctx, session, true)
		},
	}
	cmd.Flags().StringVar(&casePath, "case", "", "path to a YAML or JSON case file")
	return cmd
}

// readCase validates a hand-written case file. The extension selects the format.
func readCase(path string) (*models.Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read case file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return scenario.ValidateYAML(raw)
	default:
		return scenario.Validate(raw)
	}
}

func newLoadCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "load <save>",
		Short: "Resume a saved investigation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.play(cmd.Context(), session, false)
		},
	}
}

func newSavesCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "saves",
		Short: "List saved investigations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			names, err := app.saves.List()
			if err != nil {
				return errors.Wrap(err, "list saves")
			}
			if len(names) == 0 {
				app.printf("%s\n", styles.dim.Render("No saved investigations."))
			}
			for _, name := range names {
				app.printf("%s\n", name)
			}
			return nil
		},
	}
}

func newReportCmd(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "report <save> <suspect-id>",
		Short: "Write the police verification report of an interrogation",
		Args:  cobra.ExactArgs(2), //nolint:mnd // save and suspect id
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			suspectID, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Wrap(err, "parse suspect id")
			}
			session, err := app.restore(ctx, args[0])
			if err != nil {
				return err
			}
			exchanges, err := app.transcripts.List(ctx, session.CaseID, suspectID)
			if err != nil {
				return errors.Wrap(err, "list transcript")
			}
			return app.report(ctx, session, suspectID, exchanges)
		},
	}
}

func (app *application) restore(ctx context.Context, name string) (*engine.Session, error) {
	snapshot, err := app.saves.Load(name)
	if err != nil {
		return nil, errors.Wrap(err, "load save")
	}
	session, err := app.engine.RestoreSession(ctx, snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "restore session")
	}
	return session, nil
}

func (app *application) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(app.out, format, args...)
}
