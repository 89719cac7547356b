package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd(app *application) *cobra.Command {
	root := &cobra.Command{
		Use:   "coldcase",
		Short: "Interrogate AI suspects in a procedurally generated murder case",
		Long: `Coldcase generates a murder case and lets you interrogate three suspects. Every answer is checked
against the facts of the case and rewritten when it contradicts them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return app.close(cmd.Context())
		},
	}
	root.AddCommand(newNewCmd(app), newLoadCmd(app), newSavesCmd(app), newReportCmd(app))
	return root
}

func main() {
	app := newApplication(os.Stdin, os.Stdout)
	if err := newRootCmd(app).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
