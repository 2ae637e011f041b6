package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/lock"
	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/metrics"
	"frontdesk-rental-backend/internal/repository"
	"frontdesk-rental-backend/internal/schema"
	"frontdesk-rental-backend/internal/storage"
	"frontdesk-rental-backend/internal/utils"
)

const (
	luggageCheckInStaff   = "System"
	defaultResolutionNote = "トラブル解決済み"
)

// StorageLocations lists the shelves a luggage item may be moved to.
var StorageLocations = []string{
	"Area A - Front",
	"Area B - Middle",
	"Area C - Back",
	"Area D - Overflow",
	"Refrigerated Section",
	"Oversized Items",
	"Valuable Items",
}

var validPhotoFormats = []string{"image/jpeg", "image/jpg", "image/png"}

type CheckInRequest struct {
	RentalID          string   `json:"rentalID"`
	StaffName         string   `json:"staffName"`
	PhotoData         string   `json:"photoData"`
	PhotoFileName     string   `json:"photoFileName"`
	PhotoMimeType     string   `json:"photoMimeType"`
	BikeNumbers       []string `json:"bikeNumbers"`
	OnsenKeyNumbers   []string `json:"onsenKeyNumbers"`
	LuggageTagNumbers []string `json:"luggageTagNumbers"`
	Verified          bool     `json:"verified"`
	CustomerPresent   bool     `json:"customerPresent"`
	Notes             string   `json:"notes"`
}

type CheckInSummary struct {
	StaffName         string              `json:"staffName"`
	CheckedInAt       string              `json:"checkedInAt"`
	NewStatus         domain.RentalStatus `json:"newStatus"`
	ServiceType       domain.ServiceType  `json:"serviceType"`
	PhotoUploaded     bool                `json:"photoUploaded"`
	PhotoFileID       string              `json:"photoFileId"`
	ExpectedReturn    string              `json:"expectedReturn,omitempty"`
	BikeNumbers       []string            `json:"bikeNumbers,omitempty"`
	OnsenKeyNumbers   []string            `json:"onsenKeyNumbers,omitempty"`
	LuggageTagNumbers []string            `json:"luggageTagNumbers,omitempty"`
}

type CheckInResult struct {
	RentalID string         `json:"rentalID"`
	Message  string         `json:"message"`
	CheckIn  CheckInSummary `json:"checkin"`
}

type MoveToActiveRequest struct {
	RentalID        string `json:"rentalID"`
	StaffName       string `json:"staffName"`
	StorageLocation string `json:"storageLocation"`
	ItemCondition   string `json:"itemCondition"`
	Notes           string `json:"notes"`
}

type StorageSummary struct {
	PreviousStatus  domain.RentalStatus `json:"previousStatus"`
	NewStatus       domain.RentalStatus `json:"newStatus"`
	StorageStaff    string              `json:"storageStaff"`
	StoredAt        string              `json:"storedAt"`
	StorageLocation string              `json:"storageLocation"`
	TagNumber       string              `json:"tagNumber"`
	CustomerName    string              `json:"customerName"`
	LuggageCount    int                 `json:"luggageCount"`
	ItemCondition   string              `json:"itemCondition"`
	Notes           string              `json:"notes,omitempty"`
}

type Workflow struct {
	NextStep string `json:"nextStep"`
}

type MoveToActiveResult struct {
	RentalID string         `json:"rentalID"`
	Message  string         `json:"message"`
	Storage  StorageSummary `json:"storage"`
	Workflow Workflow       `json:"workflow"`
}

type ReturnRequest struct {
	RentalID         string   `json:"rentalID"`
	ReturnStaff      string   `json:"returnStaff"`
	BikeNumbers      []string `json:"bikeNumbers"`
	OnsenKeyNumbers  []string `json:"onsenKeyNumbers"`
	CustomerVerified bool     `json:"customerVerified"`
	GoodCondition    bool     `json:"goodCondition"`
	RepairRequired   bool     `json:"repairRequired"`
	ReturnNotes      string   `json:"returnNotes"`
}

type ReturnSummary struct {
	ServiceType     domain.ServiceType  `json:"serviceType"`
	PreviousStatus  domain.RentalStatus `json:"previousStatus"`
	NewStatus       domain.RentalStatus `json:"newStatus"`
	ReturnStaff     string              `json:"returnStaff"`
	ReturnedAt      string              `json:"returnedAt"`
	GoodCondition   bool                `json:"goodCondition"`
	ReturnNotes     string              `json:"returnNotes"`
	CustomerName    string              `json:"customerName"`
	IsLate          bool                `json:"isLate"`
	MinutesLate     int                 `json:"minutesLate,omitempty"`
	LateFee         int                 `json:"lateFee,omitempty"`
	BikesReturned   []string            `json:"bikesReturned,omitempty"`
	KeysReturned    []string            `json:"keysReturned,omitempty"`
	LuggagePickedUp int                 `json:"luggagePickedUp,omitempty"`
}

type ReturnResult struct {
	RentalID string         `json:"rentalID"`
	Message  string         `json:"message"`
	Return   ReturnSummary  `json:"return"`
	Billing  *utils.Billing `json:"billing,omitempty"`
}

type ReportTroubleRequest struct {
	RentalID  string `json:"rentalID"`
	Notes     string `json:"notes"`
	StaffName string `json:"staffName"`
}

type TroubleSummary struct {
	PreviousStatus domain.RentalStatus `json:"previousStatus"`
	NewStatus      domain.RentalStatus `json:"newStatus"`
	ReportedAt     string              `json:"reportedAt"`
	ReportedBy     string              `json:"reportedBy,omitempty"`
	CustomerName   string              `json:"customerName"`
	ServiceType    domain.ServiceType  `json:"serviceType"`
	TroubleNotes   string              `json:"troubleNotes"`
}

type ReportTroubleResult struct {
	RentalID string         `json:"rentalID"`
	Message  string         `json:"message"`
	Trouble  TroubleSummary `json:"trouble"`
}

type ResolveTroubleRequest struct {
	RentalID string `json:"rentalID"`
	Notes    string `json:"notes"`
}

type ResolutionSummary struct {
	PreviousStatus  domain.RentalStatus `json:"previousStatus"`
	NewStatus       domain.RentalStatus `json:"newStatus"`
	ResolvedAt      string              `json:"resolvedAt"`
	CustomerName    string              `json:"customerName"`
	ServiceType     domain.ServiceType  `json:"serviceType"`
	ResolutionNotes string              `json:"resolutionNotes"`
}

type ResolveTroubleResult struct {
	RentalID   string            `json:"rentalID"`
	Message    string            `json:"message"`
	Resolution ResolutionSummary `json:"resolution"`
}

// TroubleReport is what the notification e-mail is built from.
type TroubleReport struct {
	RentalID     string
	ServiceType  domain.ServiceType
	CustomerName string
	Status       domain.RentalStatus
	Notes        string
	ReportedBy   string
	ReportedAt   time.Time
}

type lifecycleService struct {
	rentals repository.RentalRepository
	schema  *schema.Schema
	locker  lock.Locker
	photos  storage.PhotoStorage
	email   EmailService
	pricing utils.Pricing
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewLifecycleService wires the state machine. email may be nil, in which case
// trouble reports are only logged.
func NewLifecycleService(
	rentals repository.RentalRepository,
	s *schema.Schema,
	locker lock.Locker,
	photos storage.PhotoStorage,
	email EmailService,
	pricing utils.Pricing,
	m *metrics.Metrics,
) LifecycleService {
	return &lifecycleService{
		rentals: rentals,
		schema:  s,
		locker:  locker,
		photos:  photos,
		email:   email,
		pricing: pricing,
		metrics: m,
		now:     time.Now,
	}
}

// withRental holds the per-rental lock from lookup through the write in fn.
func (s *lifecycleService) withRental(ctx context.Context, rentalID string, fn func(ref *domain.RowRef) error) error {
	unlock, err := s.locker.Lock(ctx, lock.RentalKey(rentalID))
	if err != nil {
		return fmt.Errorf("failed to lock rental %s: %w", rentalID, err)
	}
	defer unlock()

	ref, err := s.rentals.FindByID(ctx, rentalID)
	if err != nil {
		return err
	}
	return fn(ref)
}

// apply writes updates through the column map of op for service. Callers pass
// the resolved service type so blank legacy rows map like luggage rows.
func (s *lifecycleService) apply(ctx context.Context, ref *domain.RowRef, service domain.ServiceType, op schema.Operation, updates domain.Record) error {
	columns, ok := s.schema.ColumnMap(service, op)
	if !ok {
		return apperr.Validation(domain.FieldServiceType, fmt.Sprintf("Unsupported service type: %s", service)).
			WithTitle("Invalid service type").
			With("serviceType", string(service))
	}
	if _, err := s.rentals.ApplyUpdate(ctx, ref.Row, updates, columns); err != nil {
		return err
	}
	if to, ok := updates[domain.FieldStatus]; ok {
		s.metrics.RecordTransition(string(service), string(ref.Record.Status()), to)
	}
	return nil
}

func requireRentalID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation(domain.FieldRentalID, "rentalID is required").WithTitle("Missing rental ID")
	}
	return nil
}

// serviceOf reads the service type of a stored rental. Rows written before the
// column was filled in are luggage rows.
func serviceOf(rec domain.Record) domain.ServiceType {
	if st := rec.ServiceType(); st != "" {
		return st
	}
	return domain.ServiceLuggage
}

func (s *lifecycleService) CheckIn(ctx context.Context, req *CheckInRequest) (*CheckInResult, error) {
	if err := requireRentalID(req.RentalID); err != nil {
		return nil, err
	}

	var result *CheckInResult
	err := s.withRental(ctx, req.RentalID, func(ref *domain.RowRef) error {
		rec := ref.Record
		service := serviceOf(rec)

		if rec.Status() != domain.RentalStatusPending {
			return apperr.StateConflict("Invalid rental status",
				fmt.Sprintf("Rental must be in Pending status for check-in. Current status: %s", rec.Status()),
				string(rec.Status())).With("requiredStatus", string(domain.RentalStatusPending))
		}
		if service != domain.ServiceLuggage {
			if strings.TrimSpace(req.StaffName) == "" {
				return apperr.Validation("staffName", "Staff name is required for check-in").
					WithTitle("Missing staff information")
			}
			if req.PhotoData == "" || req.PhotoFileName == "" {
				return apperr.Validation("photoData", "ID photo is required for check-in").
					WithTitle("Missing ID photo")
			}
		}
		if req.PhotoData != "" && !storage.AllowedMimeType(req.PhotoMimeType) {
			return apperr.Validation("photoMimeType", "Photo must be JPEG or PNG format").
				WithTitle("Invalid photo format").
				With("validFormats", validPhotoFormats)
		}

		now := s.now()
		ts := domain.FormatTime(now)
		next := domain.RentalStatusActive
		staff := req.StaffName
		updates := domain.Record{
			domain.FieldCheckedInAt: ts,
			domain.FieldLastUpdated: ts,
			domain.FieldVerified:    domain.FormatBool(req.Verified),
		}
		summary := CheckInSummary{ServiceType: service, CheckedInAt: ts}

		switch service {
		case domain.ServiceBike:
			bikes := nonBlank(req.BikeNumbers)
			if len(bikes) == 0 {
				return apperr.Validation("bikeNumbers", "At least one bike number is required").
					WithTitle("Missing bike assignment")
			}
			expected := rec.Int(domain.FieldBikeCount)
			if len(bikes) != expected {
				return apperr.Validation("bikeNumbers",
					fmt.Sprintf("Expected %d bike numbers, received %d", expected, len(bikes))).
					WithTitle("Bike count mismatch").
					With("expectedCount", expected).
					With("receivedCount", len(bikes))
			}
			updates[domain.FieldBikeNumber] = domain.JoinTokens(bikes)
			summary.BikeNumbers = bikes
			if due, ok := s.pricing.ExpectedReturn(rec.Get(domain.FieldRentalPlan), now); ok {
				updates[domain.FieldExpectedReturn] = domain.FormatTime(due)
				summary.ExpectedReturn = updates[domain.FieldExpectedReturn]
			}
		case domain.ServiceOnsen:
			keys := nonBlank(req.OnsenKeyNumbers)
			if len(keys) == 0 {
				return apperr.Validation("onsenKeyNumbers", "At least one onsen key number is required").
					WithTitle("Missing onsen key assignment")
			}
			updates[domain.FieldOnsenKeyNumber] = domain.JoinTokens(keys)
			summary.OnsenKeyNumbers = keys
		case domain.ServiceLuggage:
			tags := nonBlank(req.LuggageTagNumbers)
			if len(tags) == 0 {
				return apperr.Validation("luggageTagNumbers", "At least one luggage tag number is required").
					WithTitle("Missing luggage tag numbers")
			}
			updates[domain.FieldLuggageTagNumber] = domain.JoinTokens(tags)
			summary.LuggageTagNumbers = tags
			next = domain.RentalStatusAwaitingStorage
			staff = luggageCheckInStaff
		default:
			return apperr.Validation(domain.FieldServiceType, fmt.Sprintf("Unsupported service type: %s", service)).
				WithTitle("Invalid service type")
		}

		if req.PhotoData != "" {
			fileID, err := s.uploadPhoto(ctx, storage.Photo{
				RentalID: req.RentalID,
				FileName: req.PhotoFileName,
				MimeType: req.PhotoMimeType,
				Data:     req.PhotoData,
			})
			if err != nil {
				return err
			}
			updates[domain.FieldPhotoFileID] = fileID
			summary.PhotoUploaded = true
			summary.PhotoFileID = fileID
		}

		updates[domain.FieldStatus] = string(next)
		updates[domain.FieldCheckInStaff] = staff
		if err := s.apply(ctx, ref, service, schema.OpCheckIn, updates); err != nil {
			return err
		}

		summary.StaffName = staff
		summary.NewStatus = next
		message := "Check-in completed. Rental is now active."
		if service == domain.ServiceLuggage {
			message = "Check-in completed. Rental moved to storage queue."
		}
		logger.Info("Rental checked in", "rental_id", req.RentalID, "service_type", service, "staff", staff, "status", next)
		result = &CheckInResult{RentalID: req.RentalID, Message: message, CheckIn: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *lifecycleService) MoveToActive(ctx context.Context, req *MoveToActiveRequest) (*MoveToActiveResult, error) {
	if err := requireRentalID(req.RentalID); err != nil {
		return nil, err
	}
	if req.StorageLocation != "" && !contains(StorageLocations, req.StorageLocation) {
		return nil, apperr.Validation("storageLocation", fmt.Sprintf("Storage location must be one of: %s", strings.Join(StorageLocations, ", "))).
			WithTitle("Invalid storage location").
			With("validLocations", StorageLocations)
	}

	var result *MoveToActiveResult
	err := s.withRental(ctx, req.RentalID, func(ref *domain.RowRef) error {
		rec := ref.Record
		previous := rec.Status()
		if previous != domain.RentalStatusPending && previous != domain.RentalStatusAwaitingStorage {
			return apperr.StateConflict("Status transition not allowed",
				fmt.Sprintf("Cannot move rental from %s to Active", previous), string(previous)).
				With("allowedStatuses", []string{string(domain.RentalStatusPending), string(domain.RentalStatusAwaitingStorage)})
		}
		if serviceOf(rec) != domain.ServiceLuggage {
			return apperr.Validation(domain.FieldServiceType, "Only luggage rentals can be moved to storage").
				WithTitle("Invalid service type").
				With("serviceType", string(rec.ServiceType()))
		}
		tag := rec.Get(domain.FieldLuggageTagNumber)
		if strings.TrimSpace(tag) == "" {
			return apperr.Validation(domain.FieldLuggageTagNumber, "Luggage must have a tag number before storage").
				WithTitle("Missing tag number")
		}

		ts := domain.FormatTime(s.now())
		updates := domain.Record{
			domain.FieldStatus:       string(domain.RentalStatusActive),
			domain.FieldStoredAt:     ts,
			domain.FieldStorageStaff: req.StaffName,
			domain.FieldLastUpdated:  ts,
		}
		if err := s.apply(ctx, ref, serviceOf(rec), schema.OpStorage, updates); err != nil {
			return err
		}

		location := req.StorageLocation
		if location == "" {
			location = "Not specified"
		}
		condition := req.ItemCondition
		if condition == "" {
			condition = "Good"
		}
		logger.Info("Luggage stored", "rental_id", req.RentalID, "location", location, "staff", req.StaffName)
		result = &MoveToActiveResult{
			RentalID: req.RentalID,
			Message:  "Luggage successfully moved to active storage",
			Storage: StorageSummary{
				PreviousStatus:  previous,
				NewStatus:       domain.RentalStatusActive,
				StorageStaff:    req.StaffName,
				StoredAt:        ts,
				StorageLocation: location,
				TagNumber:       tag,
				CustomerName:    rec.Get(domain.FieldCustomerName),
				LuggageCount:    rec.Int(domain.FieldLuggageCount),
				ItemCondition:   condition,
				Notes:           req.Notes,
			},
			Workflow: Workflow{NextStep: "Luggage is stored and awaiting customer pickup"},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *lifecycleService) Return(ctx context.Context, req *ReturnRequest) (*ReturnResult, error) {
	if err := requireRentalID(req.RentalID); err != nil {
		return nil, err
	}

	var result *ReturnResult
	err := s.withRental(ctx, req.RentalID, func(ref *domain.RowRef) error {
		rec := ref.Record
		service := serviceOf(rec)
		previous := rec.Status()

		if previous != domain.RentalStatusActive {
			return apperr.StateConflict("Return not allowed",
				fmt.Sprintf("Only Active rentals can be returned. Current status: %s", previous),
				string(previous)).With("requiredStatus", string(domain.RentalStatusActive))
		}
		if service != domain.ServiceLuggage && strings.TrimSpace(req.ReturnStaff) == "" {
			return apperr.Validation("returnStaff", "Return staff is required").
				WithTitle("Missing staff information")
		}

		summary := ReturnSummary{
			ServiceType:    service,
			PreviousStatus: previous,
			ReturnStaff:    req.ReturnStaff,
			GoodCondition:  req.GoodCondition,
			ReturnNotes:    req.ReturnNotes,
			CustomerName:   rec.Get(domain.FieldCustomerName),
		}
		next := domain.RentalStatusClosed

		switch service {
		case domain.ServiceBike:
			assigned := rec.Tokens(domain.FieldBikeNumber)
			returning := nonBlank(req.BikeNumbers)
			if missing := missingTokens(assigned, returning); len(missing) > 0 {
				return apperr.Validation("bikeNumbers", "Missing bikes: "+strings.Join(missing, ", ")).
					WithTitle("Incomplete bike return").
					With("assignedBikes", emptyIfNil(assigned)).
					With("returningBikes", emptyIfNil(returning)).
					With("missingBikes", missing)
			}
			summary.BikesReturned = returning
		case domain.ServiceOnsen:
			assigned := rec.Tokens(domain.FieldOnsenKeyNumber)
			returning := nonBlank(req.OnsenKeyNumbers)
			if missing := missingTokens(assigned, returning); len(missing) > 0 {
				return apperr.Validation("onsenKeyNumbers", "Missing onsen keys: "+strings.Join(missing, ", ")).
					WithTitle("Incomplete key return").
					With("assignedKeys", emptyIfNil(assigned)).
					With("returningKeys", emptyIfNil(returning)).
					With("missingKeys", missing)
			}
			summary.KeysReturned = returning
		case domain.ServiceLuggage:
			if !req.CustomerVerified {
				return apperr.Validation("customerVerified", "Customer identity must be verified before luggage pickup").
					WithTitle("Customer verification required")
			}
			next = domain.RentalStatusPickedUp
			summary.LuggagePickedUp = rec.Int(domain.FieldLuggageCount)
		default:
			return apperr.Validation(domain.FieldServiceType, fmt.Sprintf("Unsupported service type: %s", service)).
				WithTitle("Invalid service type")
		}

		now := s.now()
		ts := domain.FormatTime(now)
		lateness := utils.CalculateLateness(rec.Get(domain.FieldExpectedReturn), now)
		updates := domain.Record{
			domain.FieldStatus:              string(next),
			domain.FieldReturnStaff:         req.ReturnStaff,
			domain.FieldReturnedAt:          ts,
			domain.FieldReturnNotes:         req.ReturnNotes,
			domain.FieldGoodCondition:       domain.FormatBool(req.GoodCondition),
			domain.FieldDamageReported:      domain.FormatBool(!req.GoodCondition),
			domain.FieldRepairRequired:      domain.FormatBool(req.RepairRequired),
			domain.FieldReplacementRequired: domain.FormatBool(false),
			domain.FieldIsLate:              domain.FormatBool(lateness.IsLate),
			domain.FieldMinutesLate:         strconv.Itoa(lateness.MinutesLate),
			domain.FieldLastUpdated:         ts,
		}
		if err := s.apply(ctx, ref, service, schema.OpReturn, updates); err != nil {
			return err
		}

		summary.NewStatus = next
		summary.ReturnedAt = ts
		summary.IsLate = lateness.IsLate
		summary.MinutesLate = lateness.MinutesLate
		billing := s.pricing.CalculateBilling(service, rec.Float(domain.FieldTotalPrice), lateness)
		if billing != nil {
			summary.LateFee = billing.LateFee
		}

		var message string
		switch service {
		case domain.ServiceBike:
			message = "Bike return completed successfully"
			if billing != nil {
				message = fmt.Sprintf("Bike return completed with late fee of %s", utils.FormatYen(float64(billing.LateFee)))
			}
		case domain.ServiceOnsen:
			message = "Onsen pass return completed successfully"
		case domain.ServiceLuggage:
			message = "Luggage pickup completed successfully"
		}
		logger.Info("Rental returned", "rental_id", req.RentalID, "service_type", service,
			"status", next, "is_late", lateness.IsLate, "minutes_late", lateness.MinutesLate)
		result = &ReturnResult{RentalID: req.RentalID, Message: message, Return: summary, Billing: billing}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *lifecycleService) ReportTrouble(ctx context.Context, req *ReportTroubleRequest) (*ReportTroubleResult, error) {
	if err := requireRentalID(req.RentalID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Notes) == "" {
		return nil, apperr.Validation("notes", "Trouble notes are required").WithTitle("Missing trouble notes")
	}

	var result *ReportTroubleResult
	var report TroubleReport
	err := s.withRental(ctx, req.RentalID, func(ref *domain.RowRef) error {
		rec := ref.Record
		previous := rec.Status()
		// Resolving puts the rental back to Active, so only rentals that were
		// already checked in may be troubled.
		if previous != domain.RentalStatusActive {
			return apperr.StateConflict("Status transition not allowed",
				fmt.Sprintf("Cannot report trouble for a rental in %s status", previous), string(previous)).
				With("requiredStatus", string(domain.RentalStatusActive))
		}

		now := s.now()
		ts := domain.FormatTime(now)
		updates := domain.Record{
			domain.FieldStatus:          string(domain.RentalStatusTroubled),
			domain.FieldTroubleNotes:    req.Notes,
			domain.FieldTroubleResolved: domain.FormatBool(false),
			domain.FieldLastUpdated:     ts,
		}
		if err := s.apply(ctx, ref, serviceOf(rec), schema.OpTrouble, updates); err != nil {
			return err
		}

		logger.Warn("Trouble reported", "rental_id", req.RentalID, "previous_status", previous, "reported_by", req.StaffName)
		report = TroubleReport{
			RentalID:     req.RentalID,
			ServiceType:  rec.ServiceType(),
			CustomerName: rec.Get(domain.FieldCustomerName),
			Status:       previous,
			Notes:        req.Notes,
			ReportedBy:   req.StaffName,
			ReportedAt:   now,
		}
		result = &ReportTroubleResult{
			RentalID: req.RentalID,
			Message:  "Trouble reported successfully",
			Trouble: TroubleSummary{
				PreviousStatus: previous,
				NewStatus:      domain.RentalStatusTroubled,
				ReportedAt:     ts,
				ReportedBy:     req.StaffName,
				CustomerName:   report.CustomerName,
				ServiceType:    report.ServiceType,
				TroubleNotes:   req.Notes,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The record is already written; a failed e-mail must not fail the request.
	if s.email != nil {
		if err := s.email.SendTroubleReport(ctx, report); err != nil {
			logger.Error("Failed to send trouble notification", "rental_id", req.RentalID, "error", err)
		}
	}
	return result, nil
}

func (s *lifecycleService) ResolveTrouble(ctx context.Context, req *ResolveTroubleRequest) (*ResolveTroubleResult, error) {
	if err := requireRentalID(req.RentalID); err != nil {
		return nil, err
	}

	var result *ResolveTroubleResult
	err := s.withRental(ctx, req.RentalID, func(ref *domain.RowRef) error {
		rec := ref.Record
		previous := rec.Status()
		if previous != domain.RentalStatusTroubled {
			return apperr.StateConflict("Status transition not allowed",
				fmt.Sprintf("Only Troubled rentals can be resolved. Current status: %s", previous),
				string(previous)).With("requiredStatus", string(domain.RentalStatusTroubled))
		}

		notes := strings.TrimSpace(req.Notes)
		if notes == "" {
			notes = defaultResolutionNote
		}
		ts := domain.FormatTime(s.now())
		// troubleNotes keeps the original report; the resolution note is logged.
		updates := domain.Record{
			domain.FieldStatus:          string(domain.RentalStatusActive),
			domain.FieldTroubleResolved: domain.FormatBool(true),
			domain.FieldLastUpdated:     ts,
		}
		if err := s.apply(ctx, ref, serviceOf(rec), schema.OpTrouble, updates); err != nil {
			return err
		}

		logger.Info("Trouble resolved", "rental_id", req.RentalID, "resolution_notes", notes)
		result = &ResolveTroubleResult{
			RentalID: req.RentalID,
			Message:  "Trouble resolved successfully",
			Resolution: ResolutionSummary{
				PreviousStatus:  previous,
				NewStatus:       domain.RentalStatusActive,
				ResolvedAt:      ts,
				CustomerName:    rec.Get(domain.FieldCustomerName),
				ServiceType:     rec.ServiceType(),
				ResolutionNotes: notes,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FlagLateRentals locks every late candidate, re-reads the sheet once and
// writes the rows that are still Active. Sheet reads stay constant per run
// however many rentals are late.
func (s *lifecycleService) FlagLateRentals(ctx context.Context) (int, error) {
	all, err := s.rentals.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var candidates []string
	for _, rec := range all {
		if rec.Status() == domain.RentalStatusActive &&
			utils.CalculateLateness(rec.Get(domain.FieldExpectedReturn), now).IsLate {
			candidates = append(candidates, rec.ID())
		}
	}
	if len(candidates) == 0 {
		s.metrics.SetLateRentals(0)
		return 0, nil
	}

	// Keys are taken in sorted order; every other caller holds a single key.
	sort.Strings(candidates)
	candidates = slices.Compact(candidates)
	for _, id := range candidates {
		unlock, err := s.locker.Lock(ctx, lock.RentalKey(id))
		if err != nil {
			return 0, fmt.Errorf("failed to lock rental %s: %w", id, err)
		}
		defer unlock()
	}

	// Re-read under the locks: rows may have been returned or deleted meanwhile.
	rows, err := s.rentals.ListRows(ctx)
	if err != nil {
		return 0, err
	}
	wanted := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		wanted[id] = true
	}

	late, flagged := 0, 0
	for i := range rows {
		ref := &rows[i]
		if !wanted[ref.Record.ID()] || ref.Record.Status() != domain.RentalStatusActive {
			continue
		}
		lateness := utils.CalculateLateness(ref.Record.Get(domain.FieldExpectedReturn), now)
		if !lateness.IsLate {
			continue
		}
		late++
		minutes := strconv.Itoa(lateness.MinutesLate)
		if ref.Record.Bool(domain.FieldIsLate) && ref.Record.Get(domain.FieldMinutesLate) == minutes {
			continue
		}
		updates := domain.Record{
			domain.FieldIsLate:      domain.FormatBool(true),
			domain.FieldMinutesLate: minutes,
		}
		if err := s.apply(ctx, ref, serviceOf(ref.Record), schema.OpReturn, updates); err != nil {
			return flagged, err
		}
		flagged++
	}
	s.metrics.SetLateRentals(late)
	return flagged, nil
}

func (s *lifecycleService) uploadPhoto(ctx context.Context, photo storage.Photo) (string, error) {
	fileID, err := s.photos.UploadPhoto(ctx, photo)
	s.metrics.RecordPhotoUpload(err)
	return fileID, err
}

// missingTokens returns the assigned tokens absent from returning, in assigned order.
func missingTokens(assigned, returning []string) []string {
	have := make(map[string]bool, len(returning))
	for _, t := range returning {
		have[t] = true
	}
	var missing []string
	for _, t := range assigned {
		if !have[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

func nonBlank(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
