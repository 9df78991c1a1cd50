package cmd

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/essence/internal/data"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve lookup, query and blank tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.log.Debug("serving mcp over stdio")
			return server.ServeStdio(newMCPServer())
		},
	}
}

func newMCPServer() *server.MCPServer {
	s := server.NewMCPServer("essence", Version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("lookup",
		mcp.WithDescription("Resolve a dot-notation path (a.*.b) against a JSON document. '*' fans out over lists and maps."),
		mcp.WithString("document", mcp.Required(), mcp.Description("JSON document")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Dot-notation path")),
		mcp.WithString("default", mcp.Description("Value returned when the path resolves to nothing")),
	), handleLookup)

	s.AddTool(mcp.NewTool("query",
		mcp.WithDescription("Evaluate a JSONPath selector ($.a[*].b) against a JSON document."),
		mcp.WithString("document", mcp.Required(), mcp.Description("JSON document")),
		mcp.WithString("selector", mcp.Required(), mcp.Description("JSONPath selector")),
	), handleQuery)

	s.AddTool(mcp.NewTool("blank",
		mcp.WithDescription("Report whether the value at a dot-notation path is blank (missing, null, whitespace or empty). 0 and false are not blank."),
		mcp.WithString("document", mcp.Required(), mcp.Description("JSON document")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Dot-notation path")),
	), handleBlank)

	return s
}

func handleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, path, errResult := documentAndArg(req, "path")
	if errResult != nil {
		return errResult, nil
	}
	var def any
	if d := req.GetString("default", ""); d != "" {
		def = d
	}
	return jsonResult(data.Lookup(path, doc, def)), nil
}

func handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, selector, errResult := documentAndArg(req, "selector")
	if errResult != nil {
		return errResult, nil
	}
	matches, err := data.Query(selector, doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if matches == nil {
		matches = []any{}
	}
	return jsonResult(matches), nil
}

func handleBlank(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, path, errResult := documentAndArg(req, "path")
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(data.IsBlank(data.Lookup(path, doc, nil))), nil
}

// documentAndArg decodes the "document" argument and reads the named string
// argument. Failures come back as tool errors.
func documentAndArg(req mcp.CallToolRequest, name string) (any, string, *mcp.CallToolResult) {
	raw, err := req.RequireString("document")
	if err != nil {
		return nil, "", mcp.NewToolResultError(err.Error())
	}
	arg, err := req.RequireString(name)
	if err != nil {
		return nil, "", mcp.NewToolResultError(err.Error())
	}
	doc, err := data.DecodeJSON([]byte(raw))
	if err != nil {
		return nil, "", mcp.NewToolResultError(fmt.Sprintf("document: %v", err))
	}
	return doc, arg, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	return mcp.NewToolResultText(oj.JSON(v, &ojg.Options{Sort: true}))
}
