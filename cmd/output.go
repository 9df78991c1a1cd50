package cmd

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/essence/internal/arr"
	"github.com/agentic-research/essence/internal/data"
)

const (
	formatJSON = "json"
	formatText = "text"
	formatGo   = "go"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// print writes v to w in the selected format.
func (a *app) print(w io.Writer, v any) error {
	var err error
	switch a.format {
	case formatText:
		err = writeText(w, v)
	case formatGo:
		_, err = io.WriteString(w, dumper.Sdump(v))
	default:
		_, err = fmt.Fprintln(w, oj.JSON(v, &ojg.Options{Indent: 2, Sort: true}))
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// writeText prints scalars as-is and containers as sorted "path = value"
// lines, coloring paths when w is a terminal.
func writeText(w io.Writer, v any) error {
	if _, ok := data.Entries(v); !ok {
		_, err := fmt.Fprintln(w, textValue(v))
		return err
	}

	key := color.New(color.FgCyan)
	if isTerminal(w) {
		key.EnableColor()
	} else {
		key.DisableColor()
	}

	flat := arr.DotFlatten(v)
	for _, k := range slices.Sorted(maps.Keys(flat)) {
		if _, err := fmt.Fprintf(w, "%s = %s\n", key.Sprint(k), textValue(flat[k])); err != nil {
			return err
		}
	}
	return nil
}

func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case []byte:
		return string(x)
	}
	if _, ok := data.Entries(v); ok {
		return oj.JSON(v, &ojg.Options{Sort: true})
	}
	return fmt.Sprint(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
