// Package scan evaluates queries against stored reports.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/match"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/storage"
)

// pageSize is how many reports a scan loads from storage per batch.
const pageSize = 256

// ErrInvalidQuery marks failures caused by the query itself rather than
// the store, so callers can report them as client mistakes.
var ErrInvalidQuery = errors.New("invalid query")

var errAndMatchAll = fmt.Errorf("%w: and queries do not support match-all", ErrInvalidQuery)

func compileQuery(spec *models.QuerySpec) (match.Query, error) {
	q, err := match.Compile(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return q, nil
}

// Engine runs compiled queries against single reports or the whole
// store. Matching itself is pure, so one compiled query is shared by
// all workers.
type Engine struct {
	storage storage.Storage
	workers int
	logger  *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets how many goroutines a corpus scan uses. Values
// below 1 are ignored.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n >= 1 {
			e.workers = n
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a scan engine backed by store.
func NewEngine(store storage.Storage, opts ...EngineOption) *Engine {
	e := &Engine{
		storage: store,
		workers: 4,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MatchReport evaluates spec against one stored report and returns its
// first match, if any. A report with no match is a normal response with
// Matched false, not an error.
func (e *Engine) MatchReport(ctx context.Context, reportID string, spec *models.QuerySpec) (*models.MatchResponse, error) {
	startTime := time.Now()
	q, err := compileQuery(spec)
	if err != nil {
		return nil, err
	}
	report, err := e.storage.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	resp := &models.MatchResponse{ReportID: report.ID}
	if res := match.Match(q, report); res != nil {
		resp.Matched = true
		resp.Match = toResult(res)
	}
	resp.QueryTime = time.Since(startTime).Milliseconds()
	return resp, nil
}

// MatchAllReport evaluates spec against one stored report and returns
// every match. Conjunction queries have no match-all form.
func (e *Engine) MatchAllReport(ctx context.Context, reportID string, spec *models.QuerySpec) (*models.MatchResponse, error) {
	startTime := time.Now()
	if spec != nil && spec.Kind == models.KindAnd {
		return nil, errAndMatchAll
	}
	q, err := compileQuery(spec)
	if err != nil {
		return nil, err
	}
	report, err := e.storage.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	resp := &models.MatchResponse{ReportID: report.ID}
	if matches := match.MatchAll(q, report); len(matches) > 0 {
		resp.Matched = true
		resp.Matches = toResults(matches)
	}
	resp.QueryTime = time.Since(startTime).Milliseconds()
	return resp, nil
}

// Scan evaluates spec against every stored report and returns the
// reports that matched, in store order. With all set each matched
// report carries its full match list instead of just the first match.
func (e *Engine) Scan(ctx context.Context, spec *models.QuerySpec, all bool) (*models.ScanResponse, error) {
	startTime := time.Now()
	if all && spec != nil && spec.Kind == models.KindAnd {
		return nil, errAndMatchAll
	}
	q, err := compileQuery(spec)
	if err != nil {
		return nil, err
	}

	var results []*models.ReportMatch
	totalReports := 0
	for offset := 0; ; offset += pageSize {
		page, err := e.storage.ListReports(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		totalReports += len(page)
		pageResults, err := e.matchPage(ctx, q, page, all)
		if err != nil {
			return nil, err
		}
		for _, r := range pageResults {
			if r != nil {
				results = append(results, r)
			}
		}
		if len(page) < pageSize {
			break
		}
	}

	resp := &models.ScanResponse{
		Results:      results,
		TotalReports: totalReports,
		TotalMatched: len(results),
		QueryTime:    time.Since(startTime).Milliseconds(),
	}
	e.logger.Debug("scan complete",
		zap.Int("reports", totalReports),
		zap.Int("matched", len(results)),
		zap.Int64("query_time_ms", resp.QueryTime),
	)
	return resp, nil
}

// matchPage fans one page of reports out across the worker pool.
// Results land at the report's own index so store order survives the
// concurrency.
func (e *Engine) matchPage(ctx context.Context, q match.Query, page []*models.Report, all bool) ([]*models.ReportMatch, error) {
	out := make([]*models.ReportMatch, len(page))

	workers := e.workers
	if workers > len(page) {
		workers = len(page)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = matchOne(q, page[i], all)
			}
		}()
	}

	var err error
feed:
	for i := range page {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return out, err
}

func matchOne(q match.Query, report *models.Report, all bool) *models.ReportMatch {
	if all {
		matches := match.MatchAll(q, report)
		if len(matches) == 0 {
			return nil
		}
		return &models.ReportMatch{Report: report, Matches: toResults(matches)}
	}
	res := match.Match(q, report)
	if res == nil {
		return nil
	}
	return &models.ReportMatch{Report: report, Match: toResult(res)}
}

// toResult converts an in-memory match to its wire form. Conjunction
// matches carry only their sub-matches.
func toResult(res match.Result) *models.MatchResult {
	switch m := res.(type) {
	case *match.QueryMatch:
		return &models.MatchResult{
			Distance: m.Distance,
			Range:    &models.Range{Start: m.Span.Start, End: m.Span.End},
			Text:     m.Text(),
		}
	case *match.ConjunctionMatch:
		subs := make([]*models.MatchResult, 0, len(m.SubMatches))
		for _, sm := range m.SubMatches {
			subs = append(subs, toResult(sm))
		}
		return &models.MatchResult{SubMatches: subs}
	default:
		return nil
	}
}

func toResults(matches []*match.QueryMatch) []*models.MatchResult {
	out := make([]*models.MatchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, toResult(m))
	}
	return out
}
