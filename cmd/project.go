package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/essence/internal/projection"
)

func newProjectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "project MANIFEST [FILE]",
		Short: "Map a document onto flat records using a YAML or JSON projection manifest",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, name, err := dirFS(args[0])
			if err != nil {
				return err
			}
			p, err := projection.Load(fs, name)
			if err != nil {
				return err
			}
			doc, err := a.loadDoc(cmd, args, 1)
			if err != nil {
				return err
			}
			out, err := projection.Apply(p, doc)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), out)
		},
	}
}
