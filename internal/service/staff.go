package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/lock"
	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/repository"
)

type staffService struct {
	staff  repository.StaffRepository
	locker lock.Locker
	now    func() time.Time

	// idMu keeps generated ids strictly increasing within the process.
	idMu   sync.Mutex
	lastID int64
}

func NewStaffService(staff repository.StaffRepository, locker lock.Locker) StaffService {
	return &staffService{staff: staff, locker: locker, now: time.Now}
}

// List returns staff in display order.
func (s *staffService) List(ctx context.Context) ([]domain.Staff, error) {
	members, err := s.staff.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Order < members[j].Order })
	return members, nil
}

func (s *staffService) Add(ctx context.Context, name string) (*domain.Staff, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name", "Staff name is required").WithTitle("Staff name is required")
	}

	unlock, err := s.locker.Lock(ctx, lock.StaffKey)
	if err != nil {
		return nil, fmt.Errorf("failed to lock staff list: %w", err)
	}
	defer unlock()

	existing, err := s.staff.List(ctx)
	if err != nil {
		return nil, err
	}
	member := &domain.Staff{
		ID:          s.nextID(),
		Name:        name,
		LastUpdated: domain.FormatTime(s.now()),
		Order:       len(existing),
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, err
	}
	logger.Info("Staff member added", "staff_id", member.ID, "name", name)
	return member, nil
}

func (s *staffService) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return apperr.Validation("id", "Staff ID and name are required").WithTitle("Missing staff ID or name")
	}

	unlock, err := s.locker.Lock(ctx, lock.StaffKey)
	if err != nil {
		return fmt.Errorf("failed to lock staff list: %w", err)
	}
	defer unlock()

	if err := s.staff.Rename(ctx, id, name, domain.FormatTime(s.now())); err != nil {
		return err
	}
	logger.Info("Staff member renamed", "staff_id", id, "name", name)
	return nil
}

func (s *staffService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("id", "Staff ID is required").WithTitle("Missing staff ID")
	}

	unlock, err := s.locker.Lock(ctx, lock.StaffKey)
	if err != nil {
		return fmt.Errorf("failed to lock staff list: %w", err)
	}
	defer unlock()

	if err := s.staff.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Staff member deleted", "staff_id", id)
	return nil
}

// Reorder replaces the stored list with ordered, renumbering Order by position.
func (s *staffService) Reorder(ctx context.Context, ordered []domain.Staff) error {
	if ordered == nil {
		return apperr.Validation("orderedStaff", "orderedStaff must be an array").WithTitle("Invalid ordered staff data")
	}
	for _, m := range ordered {
		if m.ID == "" {
			return apperr.Validation("orderedStaff", "Every staff entry needs an id").WithTitle("Invalid ordered staff data")
		}
	}

	unlock, err := s.locker.Lock(ctx, lock.StaffKey)
	if err != nil {
		return fmt.Errorf("failed to lock staff list: %w", err)
	}
	defer unlock()

	rows := make([]domain.Staff, len(ordered))
	for i, m := range ordered {
		m.Order = i
		rows[i] = m
	}
	if err := s.staff.ReplaceAll(ctx, rows); err != nil {
		return err
	}
	logger.Info("Staff order updated", "count", len(rows))
	return nil
}

func (s *staffService) nextID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return fmt.Sprintf("STAFF_%d", ms)
}
