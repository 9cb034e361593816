package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mediajournal/mediajournal/client"
	"github.com/mediajournal/mediajournal/client/views"
)

const (
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

func renderRecords[T any](cmd *cobra.Command, output string, v *views.View[T], recs []client.Record[T]) error {
	out := cmd.OutOrStdout()
	switch resolveOutput(output, v.Layout) {
	case outputJSON:
		return writeJSON(cmd, recs)
	case outputCards:
		_, err := io.WriteString(out, renderCards(v, recs, shouldColorize(out)))
		return err
	default:
		if len(recs) == 0 {
			_, err := fmt.Fprintf(out, "No %ss yet\n", strings.ToLower(v.Kind().Name))
			return err
		}
		_, err := fmt.Fprintln(out, renderTable(v, recs))
		return err
	}
}

func resolveOutput(output string, layout views.Layout) string {
	if output != outputAuto {
		return output
	}
	if layout == views.Cards {
		return outputCards
	}
	return outputTable
}

func renderTable[T any](v *views.View[T], recs []client.Record[T]) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := table.Row{"ID"}
	for _, f := range v.Fields {
		header = append(header, f.Label)
	}
	header = append(header, "Added")
	tw.AppendHeader(header)

	for _, r := range recs {
		row := table.Row{r.ID}
		for _, f := range v.Fields {
			row = append(row, f.Value(r.Content))
		}
		row = append(row, r.CreatedAt.Local().Format(time.DateOnly))
		tw.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, len(header))
	for i := range header {
		configs = append(configs, table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft, WidthMax: 48})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func renderCards[T any](v *views.View[T], recs []client.Record[T], colorize bool) string {
	if len(recs) == 0 {
		return fmt.Sprintf("No %ss yet\n", strings.ToLower(v.Kind().Name))
	}
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n")
		}
		title := v.Fields[0].Value(r.Content)
		rule := strings.Repeat("-", len(title))
		if colorize {
			title = ansiBold + title + ansiReset
		}
		fmt.Fprintf(&b, "%s\n%s\n", title, rule)
		for _, f := range v.Fields[1:] {
			if val := f.Value(r.Content); val != "" {
				fmt.Fprintf(&b, "%s: %s\n", f.Label, val)
			}
		}
		fmt.Fprintf(&b, "(%s, added %s)\n", r.ID, r.CreatedAt.Local().Format(time.DateOnly))
	}
	return b.String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
