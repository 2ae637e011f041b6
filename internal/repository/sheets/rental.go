package sheets

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/repository"
	"frontdesk-rental-backend/internal/schema"
)

type rentalRepository struct {
	client Client
	schema *schema.Schema
	opts   Options

	mu      sync.Mutex
	sheetID *int64
}

func NewRentalRepository(client Client, s *schema.Schema, opts Options) repository.RentalRepository {
	return &rentalRepository{client: client, schema: s, opts: opts}
}

func (r *rentalRepository) FindByID(ctx context.Context, rentalID string) (*domain.RowRef, error) {
	rows, err := r.readAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) > 1 {
		header := rows[0]
		for i := 1; i < len(rows); i++ {
			if len(rows[i]) > 0 && rows[i][0] == rentalID {
				return &domain.RowRef{Row: i + 1, Record: decodeRow(header, rows[i])}, nil
			}
		}
	}
	return nil, apperr.NotFound("Rental", rentalID)
}

func (r *rentalRepository) List(ctx context.Context) ([]domain.Record, error) {
	refs, err := r.ListRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Record, len(refs))
	for i, ref := range refs {
		out[i] = ref.Record
	}
	return out, nil
}

func (r *rentalRepository) ListRows(ctx context.Context) ([]domain.RowRef, error) {
	rows, err := r.readAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return []domain.RowRef{}, nil
	}
	header := rows[0]
	out := make([]domain.RowRef, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		out = append(out, domain.RowRef{Row: i + 1, Record: decodeRow(header, row)})
	}
	return out, nil
}

func (r *rentalRepository) Append(ctx context.Context, rec domain.Record) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	rng := sheetRange(r.opts.RentalsSheet, "A:"+r.schema.LastColumn())
	if err := r.client.AppendRow(ctx, rng, r.schema.EncodeRow(rec)); err != nil {
		return storeError(fmt.Errorf("append rental %s: %w", rec.ID(), err))
	}
	return nil
}

func (r *rentalRepository) ApplyUpdate(ctx context.Context, row int, fields domain.Record, columns map[string]string) ([]string, error) {
	if row < 2 {
		return nil, fmt.Errorf("invalid data row %d", row)
	}
	written := make([]string, 0, len(fields))
	for field := range fields {
		if _, ok := columns[field]; ok {
			written = append(written, field)
		}
	}
	if len(written) == 0 {
		return written, nil
	}
	sort.Strings(written)

	updates := make([]CellUpdate, 0, len(written))
	for _, field := range written {
		updates = append(updates, CellUpdate{
			Range:  sheetRange(r.opts.RentalsSheet, fmt.Sprintf("%s%d", columns[field], row)),
			Values: [][]string{{fields[field]}},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	if err := r.client.BatchUpdate(ctx, updates); err != nil {
		return nil, storeError(fmt.Errorf("update row %d: %w", row, err))
	}
	return written, nil
}

func (r *rentalRepository) DeleteRow(ctx context.Context, row int) error {
	if row < 2 {
		return fmt.Errorf("invalid data row %d", row)
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	id, err := r.rentalsSheetID(ctx)
	if err != nil {
		return storeError(err)
	}
	if err := r.client.DeleteRows(ctx, id, int64(row-1), int64(row)); err != nil {
		return storeError(fmt.Errorf("delete row %d: %w", row, err))
	}
	return nil
}

func (r *rentalRepository) readAll(ctx context.Context) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	rows, err := r.client.GetValues(ctx, r.opts.RentalsSheet)
	if err != nil {
		return nil, storeError(fmt.Errorf("read %s: %w", r.opts.RentalsSheet, err))
	}
	return rows, nil
}

// rentalsSheetID resolves the numeric sheet id once; deleteDimension needs it.
func (r *rentalRepository) rentalsSheetID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sheetID != nil {
		return *r.sheetID, nil
	}
	id, err := r.client.SheetID(ctx, r.opts.RentalsSheet)
	if err != nil {
		return 0, err
	}
	r.sheetID = &id
	return id, nil
}

// decodeRow keys a row by the header row. Cells past the end of a short row
// read as blank, so rows written before a column was added stay readable.
func decodeRow(header, row []string) domain.Record {
	rec := make(domain.Record, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if i < len(row) {
			rec[name] = row[i]
		} else {
			rec[name] = ""
		}
	}
	return rec
}
