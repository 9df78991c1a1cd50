package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/essence/internal/def"
)

// Version is stamped at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// app carries global flag state shared by every subcommand.
type app struct {
	verbose bool
	format  string
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "essence",
		Short:         "Essence: dot-path lookups over JSON, YAML, SQLite records and HTTP requests",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.format {
			case formatJSON, formatText, formatGo:
			default:
				return fmt.Errorf("unknown output format %q (want json, text or go)", a.format)
			}
			if a.verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				a.log = l
			}
			def.SetIfNotDefined("ESSENCE_VERSION", Version)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log diagnostics to stderr")
	root.PersistentFlags().StringVarP(&a.format, "format", "f", formatJSON, "Output format: json, text or go")

	root.AddCommand(
		newLookupCmd(a),
		newQueryCmd(a),
		newFlattenCmd(a),
		newPartitionCmd(a),
		newImportCmd(a),
		newFieldsCmd(a),
		newProjectCmd(a),
		newEnvCmd(a),
		newConstCmd(a),
		newRequestCmd(a),
		newMCPCmd(a),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
