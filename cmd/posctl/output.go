package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

// printJSON reports whether the global --json flag is set and, if so, prints value as indented JSON
func printJSON(ctx *cli.Context, value any) (bool, error) {
	if !ctx.Bool("json") {
		return false, nil
	}
	encoder := json.NewEncoder(ctx.App.Writer)
	encoder.SetIndent("", "  ")
	return true, encoder.Encode(value)
}

// printTable prints tab-aligned rows below an upper-case header
func printTable(ctx *cli.Context, header []string, rows [][]string) error {
	writer := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, strings.ToUpper(strings.Join(header, "\t")))
	for _, row := range rows {
		fmt.Fprintln(writer, strings.Join(row, "\t"))
	}
	return writer.Flush()
}

// printResult prints value as JSON if requested and the given message otherwise
func printResult(ctx *cli.Context, value any, format string, args ...any) error {
	if ok, err := printJSON(ctx, value); ok {
		return err
	}
	_, err := fmt.Fprintf(ctx.App.Writer, format+"\n", args...)
	return err
}
