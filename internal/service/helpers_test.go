package service

import (
	"context"
	"testing"
	"time"

	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/lock"
	"frontdesk-rental-backend/internal/repository/sheets"
	"frontdesk-rental-backend/internal/schema"
	"frontdesk-rental-backend/internal/storage"
	"frontdesk-rental-backend/internal/utils"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type testEnv struct {
	store  *sheets.Store
	client *sheets.MemoryClient
	schema *schema.Schema
	photos *MockPhotoStorage
	email  *MockEmailService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	reg, err := schema.NewRegistry("")
	require.NoError(t, err)
	s := reg.Current()
	client := sheets.NewMemoryClient(map[string][]string{
		sheets.DefaultRentalsSheet: s.Header(),
		sheets.DefaultStaffSheet:   {"id", "name", "lastUpdated", "order"},
	})
	return &testEnv{
		store:  sheets.NewStore(client, s, sheets.Options{}),
		client: client,
		schema: s,
		photos: new(MockPhotoStorage),
		email:  new(MockEmailService),
	}
}

func (e *testEnv) rentalService() *rentalService {
	svc := NewRentalService(e.store.Rentals, e.schema, lock.NewKeyedMutex(), e.photos,
		NewIDGenerator(fixedClock), utils.DefaultPricing(), nil).(*rentalService)
	svc.now = fixedClock
	return svc
}

func (e *testEnv) lifecycleService() *lifecycleService {
	svc := NewLifecycleService(e.store.Rentals, e.schema, lock.NewKeyedMutex(), e.photos,
		e.email, utils.DefaultPricing(), nil).(*lifecycleService)
	svc.now = fixedClock
	return svc
}

func (e *testEnv) seed(t *testing.T, rec domain.Record) {
	t.Helper()
	if rec[domain.FieldCustomerName] == "" {
		rec[domain.FieldCustomerName] = "Yamada Taro"
	}
	require.NoError(t, e.store.Rentals.Append(context.Background(), rec))
}

func (e *testEnv) find(t *testing.T, id string) domain.Record {
	t.Helper()
	ref, err := e.store.Rentals.FindByID(context.Background(), id)
	require.NoError(t, err)
	return ref.Record
}

type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) UploadPhoto(ctx context.Context, photo storage.Photo) (string, error) {
	args := m.Called(ctx, photo)
	return args.String(0), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendTroubleReport(ctx context.Context, report TroubleReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockEmailService) SendDailySummary(ctx context.Context, counts map[domain.RentalStatus]int) error {
	args := m.Called(ctx, counts)
	return args.Error(0)
}

func float(v float64) *float64 { return &v }
