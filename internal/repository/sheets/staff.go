package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/repository"
)

const staffColumns = "A:D"

type staffRepository struct {
	client Client
	opts   Options
}

func NewStaffRepository(client Client, opts Options) repository.StaffRepository {
	return &staffRepository{client: client, opts: opts}
}

func (r *staffRepository) List(ctx context.Context) ([]domain.Staff, error) {
	rows, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	staff := make([]domain.Staff, 0, max(len(rows)-1, 0))
	if len(rows) <= 1 {
		return staff, nil
	}
	header := rows[0]
	for _, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec := decodeRow(header, row)
		order, _ := strconv.Atoi(strings.TrimSpace(rec["order"]))
		staff = append(staff, domain.Staff{
			ID:          rec["id"],
			Name:        rec["name"],
			LastUpdated: rec["lastUpdated"],
			Order:       order,
		})
	}
	return staff, nil
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.Staff) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	row := []string{staff.ID, staff.Name, staff.LastUpdated, strconv.Itoa(staff.Order)}
	if err := r.client.AppendRow(ctx, sheetRange(r.opts.StaffSheet, staffColumns), row); err != nil {
		return storeError(fmt.Errorf("append staff %s: %w", staff.ID, err))
	}
	return nil
}

func (r *staffRepository) Rename(ctx context.Context, id, name, lastUpdated string) error {
	row, err := r.findRow(ctx, id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	updates := []CellUpdate{
		{Range: sheetRange(r.opts.StaffSheet, fmt.Sprintf("B%d", row)), Values: [][]string{{name}}},
		{Range: sheetRange(r.opts.StaffSheet, fmt.Sprintf("C%d", row)), Values: [][]string{{lastUpdated}}},
	}
	if err := r.client.BatchUpdate(ctx, updates); err != nil {
		return storeError(fmt.Errorf("rename staff %s: %w", id, err))
	}
	return nil
}

func (r *staffRepository) Delete(ctx context.Context, id string) error {
	row, err := r.findRow(ctx, id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	sheetID, err := r.client.SheetID(ctx, r.opts.StaffSheet)
	if err != nil {
		return apperr.StoreMisconfigured(err).WithTitle("Staff sheet not found")
	}
	if err := r.client.DeleteRows(ctx, sheetID, int64(row-1), int64(row)); err != nil {
		return storeError(fmt.Errorf("delete staff %s: %w", id, err))
	}
	return nil
}

// ReplaceAll rewrites every data row in the given order. The header row is kept.
func (r *staffRepository) ReplaceAll(ctx context.Context, staff []domain.Staff) error {
	rows, err := r.read(ctx)
	if err != nil {
		return err
	}
	if len(rows) <= 1 {
		return apperr.NotFound("Staff", "").WithTitle("No staff data found")
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	if err := r.client.ClearRange(ctx, sheetRange(r.opts.StaffSheet, fmt.Sprintf("A2:D%d", len(rows)))); err != nil {
		return storeError(fmt.Errorf("clear staff rows: %w", err))
	}
	if len(staff) == 0 {
		return nil
	}
	values := make([][]string, len(staff))
	for i, s := range staff {
		values[i] = []string{s.ID, s.Name, s.LastUpdated, strconv.Itoa(s.Order)}
	}
	if err := r.client.UpdateRange(ctx, sheetRange(r.opts.StaffSheet, "A2:D"), values); err != nil {
		return storeError(fmt.Errorf("write staff rows: %w", err))
	}
	return nil
}

func (r *staffRepository) read(ctx context.Context) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	rows, err := r.client.GetValues(ctx, sheetRange(r.opts.StaffSheet, staffColumns))
	if err != nil {
		return nil, storeError(fmt.Errorf("read %s: %w", r.opts.StaffSheet, err))
	}
	return rows, nil
}

// findRow returns the 1-based sheet row holding id.
func (r *staffRepository) findRow(ctx context.Context, id string) (int, error) {
	rows, err := r.read(ctx)
	if err != nil {
		return 0, err
	}
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > 0 && rows[i][0] == id {
			return i + 1, nil
		}
	}
	return 0, apperr.NotFound("Staff member", id).WithTitle("Staff member not found")
}
