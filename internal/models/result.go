package models

// Range is a 1-indexed inclusive character interval into a report's
// normalized text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// MatchResult is the wire form of a single match. Simple matches carry
// a distance, range, and the matched text slice; conjunction matches
// carry only SubMatches, one per subquery in subquery order.
type MatchResult struct {
	Distance   int            `json:"distance"`
	Range      *Range         `json:"range,omitempty"`
	Text       string         `json:"text,omitempty"`
	SubMatches []*MatchResult `json:"sub_matches,omitempty"`
}

// MatchResponse is the response for a single-report match request.
// Match is set in first-match mode, Matches in match-all mode.
type MatchResponse struct {
	ReportID  string         `json:"report_id"`
	Matched   bool           `json:"matched"`
	Match     *MatchResult   `json:"match,omitempty"`
	Matches   []*MatchResult `json:"matches,omitempty"`
	QueryTime int64          `json:"query_time_ms"`
}

// ReportMatch pairs a report with its match results during a corpus
// scan.
type ReportMatch struct {
	Report  *Report        `json:"report"`
	Match   *MatchResult   `json:"match,omitempty"`
	Matches []*MatchResult `json:"matches,omitempty"`
}

// ScanResponse is the response for a corpus scan. Results contains only
// matched reports, in stable report order.
type ScanResponse struct {
	Results      []*ReportMatch `json:"results"`
	TotalReports int            `json:"total_reports"`
	TotalMatched int            `json:"total_matched"`
	QueryTime    int64          `json:"query_time_ms"`
}

// StatusResponse describes service state for the status endpoint and
// CLI command.
type StatusResponse struct {
	Reports       int64  `json:"reports"`
	DatabaseBytes int64  `json:"database_bytes"`
	Version       string `json:"version"`
}

// IngestResponse reports how many files an ingest request processed.
type IngestResponse struct {
	Path     string `json:"path"`
	Ingested int    `json:"ingested"`
}
