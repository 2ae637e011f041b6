package service

import (
	"context"

	"frontdesk-rental-backend/internal/domain"
)

type RentalService interface {
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResult, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, fields map[string]any) (*UpdateResult, error)
	Delete(ctx context.Context, rentalID string) (*DeleteResult, error)
}

type LifecycleService interface {
	CheckIn(ctx context.Context, req *CheckInRequest) (*CheckInResult, error)
	MoveToActive(ctx context.Context, req *MoveToActiveRequest) (*MoveToActiveResult, error)
	Return(ctx context.Context, req *ReturnRequest) (*ReturnResult, error)
	ReportTrouble(ctx context.Context, req *ReportTroubleRequest) (*ReportTroubleResult, error)
	ResolveTrouble(ctx context.Context, req *ResolveTroubleRequest) (*ResolveTroubleResult, error)
	// FlagLateRentals marks Active rentals past their expected return as late
	// and returns how many rows were written.
	FlagLateRentals(ctx context.Context) (int, error)
}

type HistoryService interface {
	Search(ctx context.Context, q HistoryQuery) (*HistoryResult, error)
	FloorBoard(ctx context.Context) (*FloorBoard, error)
	StatusSummary(ctx context.Context) (map[domain.RentalStatus]int, error)
}

type StaffService interface {
	List(ctx context.Context) ([]domain.Staff, error)
	Add(ctx context.Context, name string) (*domain.Staff, error)
	Rename(ctx context.Context, id, name string) error
	Remove(ctx context.Context, id string) error
	Reorder(ctx context.Context, ordered []domain.Staff) error
}

type ExportService interface {
	ExportOnsen(ctx context.Context, q ExportQuery) (*ExportFile, error)
}

type EmailService interface {
	SendTroubleReport(ctx context.Context, report TroubleReport) error
	SendDailySummary(ctx context.Context, counts map[domain.RentalStatus]int) error
}
