// Package storage defines the persistence interface for reports.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/shirabe/internal/models"
)

// ErrNotFound is returned when a report with the requested ID does not
// exist. Callers distinguish it with errors.Is.
var ErrNotFound = errors.New("report not found")

// Storage defines report persistence operations.
type Storage interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	UpdateReport(ctx context.Context, report *models.Report) error
	DeleteReport(ctx context.Context, id string) error
	ListReports(ctx context.Context, offset, limit int) ([]*models.Report, error)

	CountReports(ctx context.Context) (int64, error)

	Close() error
}
