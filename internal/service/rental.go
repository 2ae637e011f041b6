package service

import (
	"context"
	"fmt"
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

// RegisterRequest is the registration body. TotalPrice is a pointer so an absent
// price can be told apart from zero.
type RegisterRequest struct {
	CustomerName     string   `json:"customerName"`
	CustomerContact  string   `json:"customerContact"`
	DocumentType     string   `json:"documentType"`
	ServiceType      string   `json:"serviceType"`
	RentalPlan       string   `json:"rentalPlan"`
	TotalPrice       *float64 `json:"totalPrice"`
	ExpectedReturn   string   `json:"expectedReturn"`
	Agreement        bool     `json:"agreement"`
	BikeCount        int      `json:"bikeCount"`
	LuggageCount     int      `json:"luggageCount"`
	MaleCount        int      `json:"maleCount"`
	FemaleCount      int      `json:"femaleCount"`
	TotalAdultCount  int      `json:"totalAdultCount"`
	BoyCount         int      `json:"boyCount"`
	GirlCount        int      `json:"girlCount"`
	TotalChildCount  int      `json:"totalChildCount"`
	KidsCount        int      `json:"kidsCount"`
	FaceTowelCount   int      `json:"faceTowelCount"`
	BathTowelCount   int      `json:"bathTowelCount"`
	ComeFrom         string   `json:"comeFrom"`
	Companion        string   `json:"companion"`
	DiscountApplied  bool     `json:"discountApplied"`
	UnavailableBaths string   `json:"unavailableBaths"`
	HotelName        string   `json:"hotelName"`
	HotelTagNumbers  string   `json:"hotelTagNumbers"`
	StaffName        string   `json:"staffName"`
	CreatedBy        string   `json:"createdBy"`
	ImmediateCheckin bool     `json:"immediateCheckin"`
	Notes            string   `json:"notes"`

	// RegistrationType is the "type" query parameter, not part of the body.
	RegistrationType string `json:"-"`
}

type HotelLuggageSummary struct {
	HotelName      string              `json:"hotelName"`
	LuggageCount   int                 `json:"luggageCount"`
	TagNumbers     []string            `json:"tagNumbers"`
	TotalPrice     int                 `json:"totalPrice"`
	RegisteredBy   string              `json:"registeredBy"`
	Status         domain.RentalStatus `json:"status"`
	ExpectedReturn string              `json:"expectedReturn"`
	Notes          string              `json:"notes"`
}

type CounterRegistrationSummary struct {
	StaffName        string             `json:"staffName"`
	ImmediateCheckin bool               `json:"immediateCheckin"`
	CustomerName     string             `json:"customerName"`
	ServiceType      domain.ServiceType `json:"serviceType"`
}

type RegisterResult struct {
	RentalID            string                      `json:"rentalId"`
	ServiceType         domain.ServiceType          `json:"serviceType"`
	RegistrationType    domain.RegistrationChannel  `json:"registrationType"`
	Status              domain.RentalStatus         `json:"status"`
	Message             string                      `json:"message"`
	HotelLuggage        *HotelLuggageSummary        `json:"hotelLuggage,omitempty"`
	CounterRegistration *CounterRegistrationSummary `json:"counterRegistration,omitempty"`
}

type ListFilter struct {
	Status      string
	ServiceType string
	// Limit of zero means no pagination.
	Limit  int
	Offset int
}

type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type ListResult struct {
	Rentals    []domain.Record `json:"rentals"`
	Total      int             `json:"total"`
	Pagination *Pagination     `json:"pagination"`
}

type UpdateResult struct {
	RentalID      string   `json:"rentalID"`
	UpdatedFields []string `json:"updatedFields"`
	SkippedFields []string `json:"skippedFields"`
	PhotoUploaded bool     `json:"photoUploaded"`
	Message       string   `json:"message"`
}

type DeleteResult struct {
	RentalID string `json:"rentalID"`
	Message  string `json:"message"`
}

type rentalService struct {
	rentals repository.RentalRepository
	schema  *schema.Schema
	locker  lock.Locker
	photos  storage.PhotoStorage
	ids     *IDGenerator
	pricing utils.Pricing
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewRentalService(
	rentals repository.RentalRepository,
	s *schema.Schema,
	locker lock.Locker,
	photos storage.PhotoStorage,
	ids *IDGenerator,
	pricing utils.Pricing,
	m *metrics.Metrics,
) RentalService {
	if ids == nil {
		ids = NewIDGenerator(nil)
	}
	return &rentalService{
		rentals: rentals,
		schema:  s,
		locker:  locker,
		photos:  photos,
		ids:     ids,
		pricing: pricing,
		metrics: m,
		now:     time.Now,
	}
}

// DetectChannel picks the registration channel: a hotel name wins, then a staff
// name together with createdBy=staff or ?type=counter.
func DetectChannel(req *RegisterRequest) domain.RegistrationChannel {
	if strings.TrimSpace(req.HotelName) != "" {
		return domain.ChannelHotel
	}
	if req.StaffName != "" && (req.CreatedBy == "staff" || req.RegistrationType == string(domain.ChannelCounter)) {
		return domain.ChannelCounter
	}
	return domain.ChannelCustomer
}

func validateRegistration(req *RegisterRequest, channel domain.RegistrationChannel) []string {
	var errs []string
	service := domain.ServiceType(req.ServiceType)

	if channel != domain.ChannelHotel && strings.TrimSpace(req.CustomerName) == "" {
		errs = append(errs, "Customer name is required")
	}
	if !service.Valid() {
		errs = append(errs, "Valid service type is required (Bike, Onsen, or Luggage)")
	}
	if channel != domain.ChannelHotel && strings.TrimSpace(req.CustomerContact) == "" {
		errs = append(errs, "Customer contact is required")
	}
	validPrice := req.TotalPrice != nil && *req.TotalPrice >= 0

	switch service {
	case domain.ServiceBike:
		if req.RentalPlan == "" {
			errs = append(errs, "Rental plan is required for bike service")
		}
		if req.BikeCount < 1 {
			errs = append(errs, "Valid bike count is required")
		}
		if !validPrice {
			errs = append(errs, "Valid price is required")
		}
		if channel == domain.ChannelCustomer && !req.Agreement {
			errs = append(errs, "Agreement is required for bike service")
		}
	case domain.ServiceOnsen:
		if !validPrice {
			errs = append(errs, "Valid price is required")
		}
		if channel == domain.ChannelCustomer && !req.Agreement {
			errs = append(errs, "Agreement is required for onsen service")
		}
		if req.TotalAdultCount <= 0 && req.TotalChildCount <= 0 && req.KidsCount <= 0 {
			errs = append(errs, "At least one adult or child count is required")
		}
	case domain.ServiceLuggage:
		if req.LuggageCount < 1 {
			errs = append(errs, "Valid luggage count is required")
		}
	}

	if channel == domain.ChannelHotel && strings.TrimSpace(req.HotelName) == "" {
		errs = append(errs, "Hotel name is required for hotel registrations")
	}
	if channel == domain.ChannelCounter && req.ImmediateCheckin && req.StaffName == "" {
		errs = append(errs, "Staff name is required for counter registrations")
	}
	return errs
}

func (s *rentalService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResult, error) {
	channel := DetectChannel(req)
	if errs := validateRegistration(req, channel); len(errs) > 0 {
		return nil, apperr.ValidationFailed(errs)
	}

	service := domain.ServiceType(req.ServiceType)
	id := s.ids.Generate(service, channel, req.HotelName)
	rec := s.buildRecord(req, id, channel, s.now())

	if err := s.rentals.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to append rental %s: %w", id, err)
	}
	s.metrics.RecordTransition(string(service), "", string(rec.Status()))
	logger.Info("Rental registered", "rental_id", id, "service_type", service, "channel", channel, "status", rec.Status())

	result := &RegisterResult{
		RentalID:         id,
		ServiceType:      service,
		RegistrationType: channel,
		Status:           rec.Status(),
		Message:          "Rental registered successfully",
	}
	switch channel {
	case domain.ChannelHotel:
		result.Message = "Hotel luggage registered successfully"
		tags := []string{}
		if req.HotelTagNumbers != "" {
			tags = domain.SplitTokens(req.HotelTagNumbers)
		}
		result.HotelLuggage = &HotelLuggageSummary{
			HotelName:      req.HotelName,
			LuggageCount:   req.LuggageCount,
			TagNumbers:     tags,
			TotalPrice:     s.pricing.HotelLuggagePrice(req.LuggageCount),
			RegisteredBy:   req.StaffName,
			Status:         domain.RentalStatusAwaitingStorage,
			ExpectedReturn: req.ExpectedReturn,
			Notes:          req.Notes,
		}
	case domain.ChannelCounter:
		result.Message = "Counter registration completed successfully"
		result.CounterRegistration = &CounterRegistrationSummary{
			StaffName:        req.StaffName,
			ImmediateCheckin: req.ImmediateCheckin,
			CustomerName:     req.CustomerName,
			ServiceType:      service,
		}
	}
	return result, nil
}

// buildRecord lays out a new row. Service-specific fields are only set for the
// matching service type so other services read them as blank.
func (s *rentalService) buildRecord(req *RegisterRequest, id string, channel domain.RegistrationChannel, now time.Time) domain.Record {
	ts := domain.FormatTime(now)
	service := domain.ServiceType(req.ServiceType)

	rec := domain.Record{
		domain.FieldRentalID:            id,
		domain.FieldStatus:              string(domain.RentalStatusPending),
		domain.FieldSubmittedAt:         ts,
		domain.FieldLastUpdated:         ts,
		domain.FieldCustomerName:        req.CustomerName,
		domain.FieldCustomerContact:     req.CustomerContact,
		domain.FieldDocumentType:        req.DocumentType,
		domain.FieldServiceType:         req.ServiceType,
		domain.FieldAgreement:           domain.FormatBool(req.Agreement),
		domain.FieldVerified:            domain.FormatBool(false),
		domain.FieldIsLate:              domain.FormatBool(false),
		domain.FieldMinutesLate:         "0",
		domain.FieldTroubleResolved:     domain.FormatBool(false),
		domain.FieldDamageReported:      domain.FormatBool(false),
		domain.FieldRepairRequired:      domain.FormatBool(false),
		domain.FieldReplacementRequired: domain.FormatBool(false),
		domain.FieldTroubleNotes:        req.Notes,
	}
	if req.TotalPrice != nil {
		rec[domain.FieldTotalPrice] = formatNumber(*req.TotalPrice)
	} else {
		rec[domain.FieldTotalPrice] = "0"
	}

	switch service {
	case domain.ServiceBike:
		rec[domain.FieldRentalPlan] = req.RentalPlan
		rec[domain.FieldBikeCount] = strconv.Itoa(req.BikeCount)
		rec[domain.FieldExpectedReturn] = req.ExpectedReturn
	case domain.ServiceOnsen:
		rec[domain.FieldMaleCount] = strconv.Itoa(req.MaleCount)
		rec[domain.FieldFemaleCount] = strconv.Itoa(req.FemaleCount)
		rec[domain.FieldTotalAdultCount] = strconv.Itoa(req.TotalAdultCount)
		rec[domain.FieldBoyCount] = strconv.Itoa(req.BoyCount)
		rec[domain.FieldGirlCount] = strconv.Itoa(req.GirlCount)
		rec[domain.FieldTotalChildCount] = strconv.Itoa(req.TotalChildCount)
		rec[domain.FieldKidsCount] = strconv.Itoa(req.KidsCount)
		rec[domain.FieldFaceTowelCount] = strconv.Itoa(req.FaceTowelCount)
		rec[domain.FieldBathTowelCount] = strconv.Itoa(req.BathTowelCount)
		rec[domain.FieldComeFrom] = req.ComeFrom
		rec[domain.FieldCompanion] = req.Companion
		rec[domain.FieldDiscountApplied] = domain.FormatBool(req.DiscountApplied)
		rec[domain.FieldUnavailableBaths] = req.UnavailableBaths
	case domain.ServiceLuggage:
		rec[domain.FieldLuggageCount] = strconv.Itoa(req.LuggageCount)
		rec[domain.FieldExpectedReturn] = req.ExpectedReturn
	}

	checkInStaff := ""
	switch channel {
	case domain.ChannelHotel:
		rec[domain.FieldCustomerName] = req.HotelName
		rec[domain.FieldCustomerContact] = ""
		rec[domain.FieldDocumentType] = ""
		rec[domain.FieldStatus] = string(domain.RentalStatusAwaitingStorage)
		rec[domain.FieldCheckedInAt] = ts
		rec[domain.FieldVerified] = domain.FormatBool(true)
		rec[domain.FieldAgreement] = domain.FormatBool(true)
		rec[domain.FieldPartnerHotel] = req.HotelName
		rec[domain.FieldLuggageTagNumber] = req.HotelTagNumbers
		rec[domain.FieldTroubleNotes] = ""
		if req.TotalPrice == nil {
			rec[domain.FieldTotalPrice] = strconv.Itoa(s.pricing.HotelLuggagePrice(req.LuggageCount))
		}
	case domain.ChannelCounter:
		if rec[domain.FieldDocumentType] == "" {
			rec[domain.FieldDocumentType] = "on_site"
		}
		if req.ImmediateCheckin {
			checkInStaff = req.StaffName
			rec[domain.FieldCheckInStaff] = checkInStaff
			rec[domain.FieldCheckedInAt] = ts
			rec[domain.FieldVerified] = domain.FormatBool(true)
			if service == domain.ServiceLuggage {
				rec[domain.FieldStatus] = string(domain.RentalStatusAwaitingStorage)
			} else {
				rec[domain.FieldStatus] = string(domain.RentalStatusActive)
			}
		}
	}

	rec[domain.FieldCreatedBy] = req.CreatedBy
	if req.CreatedBy == "" {
		rec[domain.FieldCreatedBy] = checkInStaff
	}
	return rec
}

func (s *rentalService) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	all, err := s.rentals.List(ctx)
	if err != nil {
		return nil, err
	}
	rentals := make([]domain.Record, 0, len(all))
	for _, rec := range all {
		if filter.Status != "" && string(rec.Status()) != filter.Status {
			continue
		}
		if filter.ServiceType != "" && string(rec.ServiceType()) != filter.ServiceType {
			continue
		}
		rentals = append(rentals, rec)
	}

	result := &ListResult{Total: len(rentals)}
	if filter.Limit > 0 {
		offset := clamp(filter.Offset, 0, len(rentals))
		end := clamp(offset+filter.Limit, offset, len(rentals))
		result.Pagination = &Pagination{
			Limit:   filter.Limit,
			Offset:  filter.Offset,
			HasMore: filter.Offset+filter.Limit < len(rentals),
		}
		rentals = rentals[offset:end]
	}
	result.Rentals = rentals
	return result, nil
}

func (s *rentalService) Update(ctx context.Context, fields map[string]any) (*UpdateResult, error) {
	rentalID, _ := fields[domain.FieldRentalID].(string)
	if rentalID == "" {
		return nil, apperr.Validation(domain.FieldRentalID, "rentalID is required").WithTitle("Missing rental ID")
	}

	unlock, err := s.locker.Lock(ctx, lock.RentalKey(rentalID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock rental %s: %w", rentalID, err)
	}
	defer unlock()

	ref, err := s.rentals.FindByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	updates := make(domain.Record, len(fields))
	for field, v := range fields {
		if field == domain.FieldRentalID || field == "photoData" {
			continue
		}
		if text, ok := cellText(v); ok {
			updates[field] = text
		}
	}

	photoUploaded := false
	if photoData, _ := fields["photoData"].(string); strings.Contains(photoData, "base64") {
		fileID, err := s.uploadPhoto(ctx, storage.Photo{
			RentalID: rentalID,
			FileName: fmt.Sprintf("%s_ID_%d.jpg", rentalID, s.now().UnixMilli()),
			Data:     photoData,
		})
		if err != nil {
			return nil, err
		}
		updates[domain.FieldPhotoFileID] = fileID
		photoUploaded = true
	}

	columns, _ := s.schema.ColumnMap(ref.Record.ServiceType(), schema.OpUpdate)
	var skipped []string
	for field := range updates {
		if _, ok := columns[field]; !ok {
			skipped = append(skipped, field)
		}
	}
	sort.Strings(skipped)

	written, err := s.rentals.ApplyUpdate(ctx, ref.Row, updates, columns)
	if err != nil {
		return nil, err
	}
	if status, ok := updates[domain.FieldStatus]; ok && status != string(ref.Record.Status()) {
		s.metrics.RecordTransition(string(ref.Record.ServiceType()), string(ref.Record.Status()), status)
	}
	logger.Info("Rental updated", "rental_id", rentalID, "fields", written, "skipped", skipped)

	if written == nil {
		written = []string{}
	}
	if skipped == nil {
		skipped = []string{}
	}
	return &UpdateResult{
		RentalID:      rentalID,
		UpdatedFields: written,
		SkippedFields: skipped,
		PhotoUploaded: photoUploaded,
		Message:       "Rental updated successfully",
	}, nil
}

func (s *rentalService) Delete(ctx context.Context, rentalID string) (*DeleteResult, error) {
	if rentalID == "" {
		return nil, apperr.Validation(domain.FieldRentalID, "rentalID is required").WithTitle("Missing rental ID")
	}

	unlock, err := s.locker.Lock(ctx, lock.RentalKey(rentalID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock rental %s: %w", rentalID, err)
	}
	defer unlock()

	ref, err := s.rentals.FindByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if ref.Record.Status() == domain.RentalStatusActive {
		return nil, apperr.Validation(domain.FieldStatus, "Active rentals must be returned before deletion").
			WithTitle("Cannot delete active rental").
			With("currentStatus", string(domain.RentalStatusActive))
	}
	if err := s.rentals.DeleteRow(ctx, ref.Row); err != nil {
		return nil, err
	}
	logger.Info("Rental deleted", "rental_id", rentalID, "status", ref.Record.Status())
	return &DeleteResult{RentalID: rentalID, Message: "Rental deleted successfully"}, nil
}

func (s *rentalService) uploadPhoto(ctx context.Context, photo storage.Photo) (string, error) {
	fileID, err := s.photos.UploadPhoto(ctx, photo)
	s.metrics.RecordPhotoUpload(err)
	return fileID, err
}

// cellText renders a decoded JSON value the way the sheet stores it.
// nil values are not written.
func cellText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return domain.FormatBool(t), true
	case float64:
		return formatNumber(t), true
	case int:
		return strconv.Itoa(t), true
	case []any:
		tokens := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := cellText(item); ok {
				tokens = append(tokens, s)
			}
		}
		return domain.JoinTokens(tokens), true
	case []string:
		return domain.JoinTokens(t), true
	default:
		return fmt.Sprint(t), true
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
