package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/essence/internal/def"
	"github.com/agentic-research/essence/internal/env"
)

func newEnvCmd(a *app) *cobra.Command {
	var (
		defaultValue string
		file         string
		local        bool
	)

	cmd := &cobra.Command{
		Use:   "env NAME",
		Short: "Read an environment variable, falling back to an HCL env file and a default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []env.Option
			if file != "" {
				fs, name, err := dirFS(file)
				if err != nil {
					return err
				}
				vars, err := env.LoadHCL(fs, name)
				if err != nil {
					return err
				}
				a.log.Debug("loaded env file", zap.String("file", file), zap.Int("vars", len(vars)))
				opts = append(opts, env.WithFallback(vars))
			}
			e := env.New(opts...)

			var v string
			if local {
				v = e.GetLocal(args[0], defaultValue)
			} else {
				v = e.Get(args[0], defaultValue)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	}

	cmd.Flags().StringVarP(&defaultValue, "default", "d", "", "Value printed when the variable is unset or empty")
	cmd.Flags().StringVar(&file, "file", "", "HCL file of NAME = value fallbacks")
	cmd.Flags().BoolVar(&local, "local", false, "Ignore --file and read the process environment only")
	return cmd
}

func newConstCmd(a *app) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "const [NAME]",
		Short: "Print a named constant, or every constant when NAME is omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q, want NAME=VALUE", kv)
				}
				if err := def.Set(name, value); err != nil {
					return err
				}
			}

			if len(args) == 1 {
				v := def.Get(args[0], nil)
				if v == nil {
					return fmt.Errorf("%s: %w", args[0], errNotFound)
				}
				return a.print(cmd.OutOrStdout(), v)
			}
			all := make(map[string]any)
			for _, name := range def.Default.Names() {
				all[name] = def.Get(name, nil)
			}
			return a.print(cmd.OutOrStdout(), all)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Define NAME=VALUE before reading (repeatable)")
	return cmd
}
