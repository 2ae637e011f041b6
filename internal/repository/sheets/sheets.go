package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/repository"
	"frontdesk-rental-backend/internal/schema"
)

const (
	DefaultRentalsSheet = "Rentals"
	DefaultStaffSheet   = "Staff"
	defaultTimeout      = 10 * time.Second
)

// Options configures the sheet-backed store.
type Options struct {
	RentalsSheet string
	StaffSheet   string
	Timeout      time.Duration
}

type Store struct {
	client  Client
	opts    Options
	schema  *schema.Schema
	Rentals repository.RentalRepository
	Staff   repository.StaffRepository
}

func NewStore(client Client, s *schema.Schema, opts Options) *Store {
	if opts.RentalsSheet == "" {
		opts.RentalsSheet = DefaultRentalsSheet
	}
	if opts.StaffSheet == "" {
		opts.StaffSheet = DefaultStaffSheet
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Store{
		client:  client,
		opts:    opts,
		schema:  s,
		Rentals: NewRentalRepository(client, s, opts),
		Staff:   NewStaffRepository(client, opts),
	}
}

// Ping checks that the spreadsheet answers and carries the rentals sheet.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	if _, err := s.client.SheetID(ctx, s.opts.RentalsSheet); err != nil {
		return storeError(err)
	}
	return nil
}

// storeError classifies a client failure as a backing-store error.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrMissingCredentials) {
		return apperr.StoreMisconfigured(err)
	}
	return apperr.StoreUnavailable(err)
}

func sheetRange(sheet, cells string) string {
	return fmt.Sprintf("%s!%s", sheet, cells)
}
