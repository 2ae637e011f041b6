package repository

import (
	"context"

	"frontdesk-rental-backend/internal/domain"
)

type RentalRepository interface {
	// FindByID returns the first row whose identifier column equals rentalID,
	// decoded by the header row. Absent rows yield an apperr NotFound error.
	FindByID(ctx context.Context, rentalID string) (*domain.RowRef, error)
	List(ctx context.Context) ([]domain.Record, error)
	// ListRows is List with the sheet row of each record, for writers that
	// update many rows after a single read.
	ListRows(ctx context.Context) ([]domain.RowRef, error)
	Append(ctx context.Context, rec domain.Record) error
	// ApplyUpdate writes every field present in both fields and columns to its
	// cell at row in one batched request and returns the written field names.
	// Fields without a column are skipped.
	ApplyUpdate(ctx context.Context, row int, fields domain.Record, columns map[string]string) ([]string, error)
	DeleteRow(ctx context.Context, row int) error
}

type StaffRepository interface {
	List(ctx context.Context) ([]domain.Staff, error)
	Create(ctx context.Context, staff *domain.Staff) error
	Rename(ctx context.Context, id, name, lastUpdated string) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, staff []domain.Staff) error
}

// HealthChecker is implemented by stores that can verify connectivity.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
