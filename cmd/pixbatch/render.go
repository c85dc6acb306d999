package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"pixbatch/internal/api"
)

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(v)/float64(div), "KMGTPEZY"[exp])
}

func dimensions(width, height int) string {
	if width <= 0 || height <= 0 {
		return "-"
	}
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

func itemRows(items []api.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		output, result := "-", "-"
		if item.Output != nil {
			output = dimensions(item.Output.Width, item.Output.Height)
			result = humanBytes(int64(item.Output.Size))
		}
		note := item.ErrorMessage
		if note == "" && len(item.Warnings) > 0 {
			note = strings.Join(item.Warnings, ", ")
		}
		rows = append(rows, []string{
			item.Name,
			item.StateLabel,
			dimensions(item.Width, item.Height),
			output,
			humanBytes(item.Size),
			result,
			note,
		})
	}
	return rows
}

func renderItemsTable(items []api.Item) string {
	return renderTable(
		[]string{"Name", "State", "Source", "Output", "Size", "Result", "Note"},
		itemRows(items),
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}

func summaryLine(summary api.BatchSummary) string {
	return fmt.Sprintf("%d item(s): %d converted, %d failed, %d cancelled, %d idle",
		summary.Total,
		summary.Counts["converted"],
		summary.Counts["failed"],
		summary.Counts["cancelled"],
		summary.Counts["idle"],
	)
}

func exportLines(report *api.ExportReport) []string {
	if report == nil {
		return []string{"Nothing delivered"}
	}
	var lines []string
	switch report.Strategy {
	case "archive":
		if len(report.Delivered) > 0 {
			lines = append(lines, fmt.Sprintf("Archive %s (%d entries, %s) written to %s",
				report.ArchiveName, len(report.Entries), humanBytes(report.Bytes), report.OutputDir))
		}
	case "individual":
		for _, name := range report.Files {
			lines = append(lines, "Wrote "+name)
		}
		if report.OutputDir != "" && len(report.Files) > 0 {
			lines = append(lines, "Output directory: "+report.OutputDir)
		}
	}
	for _, f := range report.Failures {
		lines = append(lines, fmt.Sprintf("Skipped %s: %s", f.Name, f.Error))
	}
	if len(lines) == 0 {
		lines = append(lines, "Nothing delivered")
	}
	return lines
}

func printRunResponse(out io.Writer, resp api.RunResponse, colorize bool) {
	if len(resp.Items) > 0 {
		fmt.Fprintln(out, renderItemsTable(resp.Items))
	}
	fmt.Fprintln(out, summaryLine(resp.Summary))
	if len(resp.Events) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Notifications", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, line := range eventLines(resp.Events, colorize) {
			fmt.Fprintln(out, line)
		}
	}
	fmt.Fprintln(out)
	for _, line := range exportLines(resp.Export) {
		fmt.Fprintln(out, line)
	}
}
