package domain

import (
	"strconv"
	"strings"
	"time"
)

type RentalStatus string

const (
	RentalStatusPending         RentalStatus = "Pending"
	RentalStatusAwaitingStorage RentalStatus = "Awaiting_Storage"
	RentalStatusActive          RentalStatus = "Active"
	RentalStatusTroubled        RentalStatus = "Troubled"
	RentalStatusClosed          RentalStatus = "Closed"
	RentalStatusPickedUp        RentalStatus = "Closed (Picked Up)"
)

// IsTerminal reports whether no further lifecycle event applies.
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusClosed || s == RentalStatusPickedUp
}

type ServiceType string

const (
	ServiceBike    ServiceType = "Bike"
	ServiceOnsen   ServiceType = "Onsen"
	ServiceLuggage ServiceType = "Luggage"
)

// Valid reports whether s is one of the offered services.
func (s ServiceType) Valid() bool {
	return s == ServiceBike || s == ServiceOnsen || s == ServiceLuggage
}

type RegistrationChannel string

const (
	ChannelCustomer RegistrationChannel = "customer"
	ChannelCounter  RegistrationChannel = "counter"
	ChannelHotel    RegistrationChannel = "hotel"
)

// Logical field names of the rental record. Column letters live in the schema package.
const (
	FieldRentalID            = "rentalID"
	FieldStatus              = "status"
	FieldSubmittedAt         = "submittedAt"
	FieldLastUpdated         = "lastUpdated"
	FieldCustomerName        = "customerName"
	FieldCustomerContact     = "customerContact"
	FieldDocumentType        = "documentType"
	FieldComeFrom            = "comeFrom"
	FieldServiceType         = "serviceType"
	FieldRentalPlan          = "rentalPlan"
	FieldTotalPrice          = "totalPrice"
	FieldExpectedReturn      = "expectedReturn"
	FieldAgreement           = "agreement"
	FieldCheckInStaff        = "checkInStaff"
	FieldCheckedInAt         = "checkedInAt"
	FieldPhotoFileID         = "photoFileID"
	FieldVerified            = "verified"
	FieldStorageStaff        = "storageStaff"
	FieldStoredAt            = "storedAt"
	FieldReturnedAt          = "returnedAt"
	FieldReturnStaff         = "returnStaff"
	FieldGoodCondition       = "goodCondition"
	FieldReturnNotes         = "returnNotes"
	FieldIsLate              = "isLate"
	FieldMinutesLate         = "minutesLate"
	FieldTroubleNotes        = "troubleNotes"
	FieldTroubleResolved     = "troubleResolved"
	FieldDamageReported      = "damageReported"
	FieldRepairRequired      = "repairRequired"
	FieldReplacementRequired = "replacementRequired"
	FieldBikeCount           = "bikeCount"
	FieldBikeNumber          = "bikeNumber"
	FieldOnsenKeyNumber      = "onsenKeyNumber"
	FieldLuggageCount        = "luggageCount"
	FieldLuggageTagNumber    = "luggageTagNumber"
	FieldMaleCount           = "maleCount"
	FieldFemaleCount         = "femaleCount"
	FieldTotalAdultCount     = "totalAdultCount"
	FieldBoyCount            = "boyCount"
	FieldGirlCount           = "girlCount"
	FieldTotalChildCount     = "totalChildCount"
	FieldKidsCount           = "kidsCount"
	FieldFaceTowelCount      = "faceTowelCount"
	FieldBathTowelCount      = "bathTowelCount"
	FieldPartnerHotel        = "partnerHotel"
	FieldCreatedBy           = "createdBy"
	FieldCompanion           = "companion"
	FieldDiscountApplied     = "discountApplied"
	FieldUnavailableBaths    = "unavailableBaths"
)

// TokenSeparator joins multi-token resource fields such as bike numbers.
const TokenSeparator = ", "

// Record is one rental row decoded into logical field name -> cell text.
type Record map[string]string

// RowRef locates a decoded record in the backing sheet (1-based row number).
type RowRef struct {
	Row    int
	Record Record
}

func (r Record) Get(field string) string {
	return r[field]
}

func (r Record) ID() string {
	return r[FieldRentalID]
}

func (r Record) Status() RentalStatus {
	return RentalStatus(r[FieldStatus])
}

func (r Record) ServiceType() ServiceType {
	return ServiceType(r[FieldServiceType])
}

// Int parses an integer cell; blank or malformed cells read as zero.
func (r Record) Int(field string) int {
	v := strings.TrimSpace(r[field])
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return n
}

// Float parses a numeric cell; blank or malformed cells read as zero.
func (r Record) Float(field string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(r[field]), 64)
	if err != nil {
		return 0
	}
	return f
}

// Bool reads TRUE/true/1 as true.
func (r Record) Bool(field string) bool {
	return ParseBool(r[field])
}

// Time parses a timestamp cell. ok is false for blank or unparseable cells.
func (r Record) Time(field string) (time.Time, bool) {
	return ParseTime(r[field])
}

// Tokens splits a multi-token resource field.
func (r Record) Tokens(field string) []string {
	return SplitTokens(r[field])
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys returns the fields present in the record.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// FormatBool renders a boolean the way the sheet stores it.
func FormatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// FormatTime renders a timestamp as ISO-8601 with millisecond precision in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func ParseTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func SplitTokens(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func JoinTokens(tokens []string) string {
	return strings.Join(tokens, TokenSeparator)
}
