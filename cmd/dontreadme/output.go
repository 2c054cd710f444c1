package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dusk-indust/dontreadme/internal/bridge"
	"github.com/dusk-indust/dontreadme/internal/export"
	"github.com/dusk-indust/dontreadme/internal/history"
	"github.com/dusk-indust/dontreadme/internal/pipeline"
	"github.com/dusk-indust/dontreadme/internal/risk"
	"github.com/dusk-indust/dontreadme/internal/source"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// summaryRows caps the hotspot and risk tables printed after generate.
const summaryRows = 5

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// severityColor returns the colorizer for a risk severity.
func severityColor(s risk.Severity) func(...any) string {
	switch s {
	case risk.SeverityCritical:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case risk.SeverityHigh:
		return color.New(color.FgMagenta, color.Bold).SprintFunc()
	case risk.SeverityMedium:
		return yellow
	default:
		return fmt.Sprint
	}
}

// renderTable writes rows under headers. The first column is left aligned.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func printGenerateSummary(w io.Writer, dir string, r *run) error {
	res, m := r.res, r.manifest
	lang := source.PrimaryLanguage(res.Files)
	if lang == "" {
		lang = "unknown"
	}
	framework := "none"
	if res.Framework != "" {
		framework = string(res.Framework)
	}
	fmt.Fprintf(w, "Analyzed %d files (primary language %s, framework %s)\n\n", res.Files.Len(), lang, framework)

	var rows [][]string
	written := 0
	for _, a := range export.Artifacts {
		if !selected(res, a.Name) {
			continue
		}
		status, hash := yellow("skipped"), "-"
		if res.Ran[a.Name] {
			status = green("written")
			written++
		}
		if entry, ok := m.Entry(string(a.Name)); ok {
			hash = entry.Hash
		}
		rows = append(rows, []string{string(a.Name), a.Path, status, hash})
	}
	if err := renderTable(w, []string{"Artifact", "File", "Status", "Hash"}, rows); err != nil {
		return err
	}

	if res.Ran[pipeline.AnalysisHotspots] && len(res.Hotspots.Hotspots) > 0 {
		fmt.Fprintf(w, "\nTop hotspots (%d commits analyzed):\n", res.Hotspots.CommitsAnalyzed)
		if err := printHotspots(w, res.Hotspots.Hotspots[:min(summaryRows, len(res.Hotspots.Hotspots))]); err != nil {
			return err
		}
	}
	if res.Ran[pipeline.AnalysisRisk] {
		s := res.Risk.Summary
		fmt.Fprintf(w, "\nRisk: %s critical, %s high, %s medium, %d low\n",
			severityColor(risk.SeverityCritical)(s.Critical),
			severityColor(risk.SeverityHigh)(s.High),
			severityColor(risk.SeverityMedium)(s.Medium),
			s.Low)
		if err := printRisk(w, res.Risk.Entries[:min(summaryRows, len(res.Risk.Entries))]); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "\nWrote %d artifacts to %s in %s\n", written, dir, res.Duration.Round(time.Millisecond))
	printBridged(w, r.bridged)
	return nil
}

func printBridged(w io.Writer, results []bridge.Result) {
	for _, b := range results {
		if b.Action == bridge.ActionUnchanged {
			continue
		}
		fmt.Fprintf(w, "Context pointer %s in %s (%s)\n", b.Action, b.Path, b.Tool)
	}
}

func printHotspots(w io.Writer, hotspots []history.Hotspot) error {
	rows := make([][]string, 0, len(hotspots))
	for _, h := range hotspots {
		score := fmt.Sprintf("%.2f", h.Score)
		if h.IsHot {
			score = red(score)
		}
		rows = append(rows, []string{h.File, score, strconv.Itoa(h.ChangeFrequency), strconv.Itoa(h.AuthorCount), h.LastModified})
	}
	return renderTable(w, []string{"File", "Score", "Changes", "Authors", "Last Modified"}, rows)
}

func printRisk(w io.Writer, entries []risk.Entry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.File,
			string(e.Domain),
			fmt.Sprintf("%.2f", e.FinalScore),
			severityColor(e.Severity)(string(e.Severity)),
		})
	}
	return renderTable(w, []string{"File", "Domain", "Score", "Severity"}, rows)
}

// selected reports whether analysis a was requested in res.
func selected(res *pipeline.Results, a pipeline.Analysis) bool {
	if len(res.Selected) == 0 {
		return true
	}
	for _, s := range res.Selected {
		if s == a {
			return true
		}
	}
	return false
}
