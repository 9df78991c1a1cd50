package cmd

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/essence/internal/data"
	"github.com/agentic-research/essence/internal/web"
)

func newRequestCmd(a *app) *cobra.Command {
	var (
		path   string
		secure bool
	)

	cmd := &cobra.Command{
		Use:   "request [FILE]",
		Short: "Parse a raw HTTP/1.x request capture and print its request context",
		Long: `Parse a raw HTTP/1.x request (request line, headers, body) and print the
values a handler would see: method, path, query and form input, decoded JSON
body, auth, HTTPS and AJAX flags. Use --lookup to resolve a single path,
e.g. --lookup json.user.name or --lookup query.page.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open capture: %w", err)
				}
				defer func() { _ = f.Close() }() // safe to ignore
				in = f
			}

			r, err := http.ReadRequest(bufio.NewReader(in))
			if err != nil {
				return fmt.Errorf("parse request: %w", err)
			}
			req, err := web.New(r, web.WithSecure(secure), web.WithLogger(a.log))
			if err != nil {
				return err
			}

			if path == "" {
				return a.print(cmd.OutOrStdout(), req.Values())
			}
			v := data.Lookup(path, req, nil)
			if v == nil {
				return fmt.Errorf("%s: %w", path, errNotFound)
			}
			return a.print(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().StringVarP(&path, "lookup", "l", "", "Resolve one dot-notation path against the request values")
	cmd.Flags().BoolVar(&secure, "secure", false, "Treat the request as received over TLS")
	return cmd
}
