// Package ingest turns files and API submissions into stored reports.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/extract"
	"github.com/hyperjump/shirabe/internal/fileid"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/normalize"
	"github.com/hyperjump/shirabe/internal/storage"
)

const (
	metaKeySourcePath  = "source_path"
	metaKeySourceName  = "source_name"
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// Ingester builds reports out of files and raw submissions and writes
// them to storage.
type Ingester struct {
	storage   storage.Storage
	extractor *extract.Extractor
	rules     []normalize.Rule
	validator models.FieldValidator
	logger    *zap.Logger
}

// IngesterOption configures an Ingester.
type IngesterOption func(*Ingester)

// WithRules sets the replacement table applied while normalizing
// ingested text. Order is significant.
func WithRules(rules []normalize.Rule) IngesterOption {
	return func(in *Ingester) { in.rules = rules }
}

// WithFieldValidator sets the metadata field-name validator applied to
// API-submitted reports. File ingestion writes its own metadata keys
// and is not subject to it.
func WithFieldValidator(v models.FieldValidator) IngesterOption {
	return func(in *Ingester) { in.validator = v }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IngesterOption {
	return func(in *Ingester) {
		if l != nil {
			in.logger = l
		}
	}
}

// NewIngester creates an ingester. extractor may be nil; when nil,
// every file is read as plain text.
func NewIngester(store storage.Storage, extractor *extract.Extractor, opts ...IngesterOption) *Ingester {
	in := &Ingester{
		storage: store,
		logger:  zap.NewNop(),
	}
	in.extractor = extractor
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// AddReport stores a report submitted directly (not from a file). A
// missing ID gets a generated one. Submitting an existing ID replaces
// that report's text and metadata.
func (in *Ingester) AddReport(ctx context.Context, input *models.ReportInput) (*models.Report, error) {
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	report, err := models.NewReport(input,
		models.WithRules(in.rules),
		models.WithFieldValidator(in.validator),
	)
	if err != nil {
		return nil, err
	}
	if err := in.saveReport(ctx, report); err != nil {
		return nil, err
	}
	in.logger.Debug("report added", zap.String("id", report.ID))
	return report, nil
}

// IngestFile reads the file at path and stores it as a report. The
// report ID is derived from the absolute path, so re-ingesting updates
// the same report. When allowedExts is non-empty the file's extension
// must be in it (case-insensitive). Unchanged files (same path, mtime,
// and size as last time) are skipped.
func (in *Ingester) IngestFile(ctx context.Context, path string, allowedExts []string) error {
	in.logger.Debug("ingesting file", zap.String("path", path))
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}

	id := fileid.ReportID(absPath)
	if in.unchangedSinceLastIngest(ctx, absPath, id, info) {
		in.logger.Debug("skipping unchanged file", zap.String("path", absPath))
		return nil
	}

	text, err := in.extractContent(absPath)
	if err != nil {
		return fmt.Errorf("extract content: %w", err)
	}
	report, err := models.NewReport(&models.ReportInput{
		ID:   id,
		Text: text,
		Metadata: map[string]any{
			metaKeySourcePath:  absPath,
			metaKeySourceName:  filepath.Base(absPath),
			metaKeySourceMtime: strconv.FormatInt(info.ModTime().UnixNano(), 10),
			metaKeySourceSize:  strconv.FormatInt(info.Size(), 10),
		},
	}, models.WithRules(in.rules))
	if err != nil {
		return err
	}
	if err := in.saveReport(ctx, report); err != nil {
		return err
	}
	in.logger.Debug("file ingested", zap.String("path", absPath), zap.String("report_id", id))
	return nil
}

// saveReport updates an existing report or creates a new one.
func (in *Ingester) saveReport(ctx context.Context, report *models.Report) error {
	err := in.storage.UpdateReport(ctx, report)
	if errors.Is(err, storage.ErrNotFound) {
		err = in.storage.CreateReport(ctx, report)
	}
	if err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

// unchangedSinceLastIngest reports whether the file already has a
// report with the same path, mtime, and size.
func (in *Ingester) unchangedSinceLastIngest(ctx context.Context, absPath, id string, info os.FileInfo) bool {
	report, err := in.storage.GetReport(ctx, id)
	if err != nil || report.Metadata == nil {
		return false
	}
	if report.Metadata[metaKeySourcePath] != absPath {
		return false
	}
	// Mtime and size are stored as strings: UnixNano does not survive a
	// round trip through JSON's float64.
	return metadataInt64(report.Metadata, metaKeySourceMtime) == info.ModTime().UnixNano() &&
		metadataInt64(report.Metadata, metaKeySourceSize) == info.Size()
}

func metadataInt64(m map[string]any, key string) int64 {
	switch n := m[key].(type) {
	case string:
		x, _ := strconv.ParseInt(n, 10, 64)
		return x
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// IngestDirectory walks dir recursively and ingests each regular file
// whose extension is allowed. Returns the number of files ingested and
// the first error encountered.
func (in *Ingester) IngestDirectory(ctx context.Context, dir string, allowedExts []string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		// Resolve symlinks so only regular files are ingested.
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		if ingestErr := in.IngestFile(ctx, path, allowedExts); ingestErr != nil {
			return ingestErr
		}
		n++
		return nil
	})
	return n, err
}

// DeleteFile removes the report derived from path, if any.
func (in *Ingester) DeleteFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	id := fileid.ReportID(absPath)
	if err := in.storage.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	in.logger.Debug("file report deleted", zap.String("path", absPath), zap.String("report_id", id))
	return nil
}

func (in *Ingester) extractContent(path string) (string, error) {
	if in.extractor != nil {
		return in.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
