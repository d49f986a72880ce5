// Package cli renders command results as text or JSON.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/shirabe/internal/fileid"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// snippetContext is how many runes of surrounding text a scan snippet
// shows on each side of the matched range.
const snippetContext = 40

const divider = "─────────────────────────────────────────────────────────"

// WriteMatchResponse writes a single-report match result to w.
func WriteMatchResponse(w io.Writer, resp *models.MatchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	if !resp.Matched {
		fmt.Fprintf(w, "No match in report %s (%dms)\n", resp.ReportID, resp.QueryTime)
		return nil
	}
	if resp.Match != nil {
		fmt.Fprintf(w, "Report %s matched in %dms\n", resp.ReportID, resp.QueryTime)
		writeMatchResult(w, "  ", resp.Match)
		return nil
	}
	fmt.Fprintf(w, "Report %s: %d matches in %dms\n", resp.ReportID, len(resp.Matches), resp.QueryTime)
	for _, m := range resp.Matches {
		writeMatchResult(w, "  ", m)
	}
	return nil
}

func writeMatchResult(w io.Writer, prefix string, m *models.MatchResult) {
	if len(m.SubMatches) > 0 {
		fmt.Fprintf(w, "%sconjunction of %d:\n", prefix, len(m.SubMatches))
		for _, sub := range m.SubMatches {
			writeMatchResult(w, prefix+"  ", sub)
		}
		return
	}
	if m.Range != nil {
		fmt.Fprintf(w, "%sdistance %d at %d-%d: %q\n", prefix, m.Distance, m.Range.Start, m.Range.End, m.Text)
		return
	}
	fmt.Fprintf(w, "%sdistance %d: %q\n", prefix, m.Distance, m.Text)
}

// WriteScanResponse writes corpus scan results to w. Text output shows
// a snippet of each report around the matched range.
func WriteScanResponse(w io.Writer, resp *models.ScanResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\nMatched %d of %d reports in %dms\n\n", resp.TotalMatched, resp.TotalReports, resp.QueryTime)
	for _, result := range resp.Results {
		writeReportMatch(w, result)
	}
	return nil
}

func writeReportMatch(w io.Writer, rm *models.ReportMatch) {
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "ID: %s\n", rm.Report.ID)
	if path := sourcePath(rm.Report); path != "" {
		fmt.Fprintf(w, "Source: %s\n", path)
	}
	if rm.Match != nil {
		writeSnippets(w, rm.Report.Text, rm.Match)
	}
	for _, m := range rm.Matches {
		writeSnippets(w, rm.Report.Text, m)
	}
	fmt.Fprintln(w)
}

func writeSnippets(w io.Writer, text string, m *models.MatchResult) {
	if len(m.SubMatches) > 0 {
		for _, sub := range m.SubMatches {
			writeSnippets(w, text, sub)
		}
		return
	}
	if m.Range == nil {
		return
	}
	fmt.Fprintf(w, "distance %d at %d-%d: %s\n",
		m.Distance, m.Range.Start, m.Range.End, Snippet(text, m.Range, snippetContext))
}

// Snippet renders the neighborhood of rng within text, bracketing the
// matched range and keeping at most context runes on each side. Ranges
// are 1-indexed inclusive rune positions.
func Snippet(text string, rng *models.Range, context int) string {
	runes := []rune(text)
	start := rng.Start - 1
	end := rng.End
	if start < 0 || end > len(runes) || start >= end {
		return utils.Truncate(text, 2*context)
	}
	from := start - context
	if from < 0 {
		from = 0
	}
	to := end + context
	if to > len(runes) {
		to = len(runes)
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString("...")
	}
	b.WriteString(string(runes[from:start]))
	b.WriteString("[")
	b.WriteString(string(runes[start:end]))
	b.WriteString("]")
	b.WriteString(string(runes[end:to]))
	if to < len(runes) {
		b.WriteString("...")
	}
	return b.String()
}

// WriteReport writes one report to w, metadata keys in sorted order.
func WriteReport(w io.Writer, report *models.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "ID: %s\n", report.ID)
	fmt.Fprintf(w, "Created: %s\n", report.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Updated: %s\n", report.UpdatedAt.Format(time.RFC3339))
	if len(report.Metadata) > 0 {
		keys := make([]string, 0, len(report.Metadata))
		for k := range report.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(w, "Metadata:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %v\n", k, report.Metadata[k])
		}
	}
	fmt.Fprintf(w, "\n%s\n", report.Text)
	return nil
}

// WriteReportList writes a page of reports to w. File-derived reports
// show their source path, API-submitted reports a preview of their
// text.
func WriteReportList(w io.Writer, reports []*models.Report, total int64, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]any{"reports": reports, "total": total})
	}
	fmt.Fprintf(w, "%d reports (%d shown)\n", total, len(reports))
	for _, r := range reports {
		desc := utils.Truncate(r.Text, 60)
		if fileid.IsFileReport(r.ID) {
			if path := sourcePath(r); path != "" {
				desc = path
			}
		}
		fmt.Fprintf(w, "%s  %s\n", r.ID, desc)
	}
	return nil
}

// WriteStatus writes service status to w.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "Reports:  %d\n", status.Reports)
	fmt.Fprintf(w, "Database: %s\n", humanBytes(status.DatabaseBytes))
	fmt.Fprintf(w, "Version:  %s\n", status.Version)
	return nil
}

// WriteIngestResponse writes an ingest summary to w.
func WriteIngestResponse(w io.Writer, resp *models.IngestResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "Ingested %d files from %s\n", resp.Ingested, resp.Path)
	return nil
}

func sourcePath(r *models.Report) string {
	if r.Metadata == nil {
		return ""
	}
	if p, ok := r.Metadata["source_path"].(string); ok {
		return p
	}
	return ""
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
