package http

import (
	"context"

	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/security"
	"frontdesk-rental-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockRentalService
type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) Register(ctx context.Context, req *service.RegisterRequest) (*service.RegisterResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegisterResult), args.Error(1)
}
func (m *MockRentalService) List(ctx context.Context, filter service.ListFilter) (*service.ListResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}
func (m *MockRentalService) Update(ctx context.Context, fields map[string]any) (*service.UpdateResult, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UpdateResult), args.Error(1)
}
func (m *MockRentalService) Delete(ctx context.Context, rentalID string) (*service.DeleteResult, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeleteResult), args.Error(1)
}

// MockLifecycleService
type MockLifecycleService struct {
	mock.Mock
}

func (m *MockLifecycleService) CheckIn(ctx context.Context, req *service.CheckInRequest) (*service.CheckInResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckInResult), args.Error(1)
}
func (m *MockLifecycleService) MoveToActive(ctx context.Context, req *service.MoveToActiveRequest) (*service.MoveToActiveResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MoveToActiveResult), args.Error(1)
}
func (m *MockLifecycleService) Return(ctx context.Context, req *service.ReturnRequest) (*service.ReturnResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReturnResult), args.Error(1)
}
func (m *MockLifecycleService) ReportTrouble(ctx context.Context, req *service.ReportTroubleRequest) (*service.ReportTroubleResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportTroubleResult), args.Error(1)
}
func (m *MockLifecycleService) ResolveTrouble(ctx context.Context, req *service.ResolveTroubleRequest) (*service.ResolveTroubleResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResolveTroubleResult), args.Error(1)
}
func (m *MockLifecycleService) FlagLateRentals(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockHistoryService
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) Search(ctx context.Context, q service.HistoryQuery) (*service.HistoryResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryResult), args.Error(1)
}
func (m *MockHistoryService) FloorBoard(ctx context.Context) (*service.FloorBoard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FloorBoard), args.Error(1)
}
func (m *MockHistoryService) StatusSummary(ctx context.Context) (map[domain.RentalStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.RentalStatus]int), args.Error(1)
}

// MockStaffService
type MockStaffService struct {
	mock.Mock
}

func (m *MockStaffService) List(ctx context.Context) ([]domain.Staff, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Staff), args.Error(1)
}
func (m *MockStaffService) Add(ctx context.Context, name string) (*domain.Staff, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Staff), args.Error(1)
}
func (m *MockStaffService) Rename(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}
func (m *MockStaffService) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockStaffService) Reorder(ctx context.Context, ordered []domain.Staff) error {
	args := m.Called(ctx, ordered)
	return args.Error(0)
}

// MockExportService
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportOnsen(ctx context.Context, q service.ExportQuery) (*service.ExportFile, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}

// MockVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, idToken string) (*security.Identity, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Identity), args.Error(1)
}

// MockHealthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
