package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/repository"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
	filteredMask        = "[FILTERED]"
)

// HistoryQuery holds the optional predicates and ordering of a history search.
// Empty strings mean "no filter".
type HistoryQuery struct {
	StartDate       string
	EndDate         string
	Status          string
	ServiceType     string
	CustomerName    string
	CustomerContact string
	StaffName       string
	RentalID        string
	Limit           int
	Offset          int
	SortBy          string
	SortOrder       string
}

type HistoryPagination struct {
	Total       int  `json:"total"`
	Limit       int  `json:"limit"`
	Offset      int  `json:"offset"`
	HasMore     bool `json:"hasMore"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
}

type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

type HistoryStatistics struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
	ByServiceType map[string]int `json:"byServiceType"`
	TotalRevenue  float64        `json:"totalRevenue"`
	DateRange     *DateRange     `json:"dateRange"`
}

type HistoryResult struct {
	Rentals []domain.Record `json:"rentals"`
	// Scanned counts every record read before filtering.
	Scanned    int               `json:"scanned"`
	Pagination HistoryPagination `json:"pagination"`
	Statistics HistoryStatistics `json:"statistics"`
	Filters    map[string]string `json:"filters"`
}

// FloorColumn is one status lane of the floor board.
type FloorColumn struct {
	Status    domain.RentalStatus                    `json:"status"`
	Total     int                                    `json:"total"`
	ByService map[domain.ServiceType][]domain.Record `json:"byService"`
}

type FloorBoard struct {
	Columns     []FloorColumn `json:"columns"`
	Total       int           `json:"total"`
	GeneratedAt string        `json:"generatedAt"`
}

var floorStatuses = []domain.RentalStatus{
	domain.RentalStatusAwaitingStorage,
	domain.RentalStatusActive,
	domain.RentalStatusTroubled,
}

type historyService struct {
	rentals repository.RentalRepository
	now     func() time.Time
}

func NewHistoryService(rentals repository.RentalRepository) HistoryService {
	return &historyService{rentals: rentals, now: time.Now}
}

func (s *historyService) Search(ctx context.Context, q HistoryQuery) (*HistoryResult, error) {
	q, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}
	from, to, err := dateBounds(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	all, err := s.rentals.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Record, 0, len(all))
	for _, rec := range all {
		if matches(rec, q, from, to) {
			matched = append(matched, rec)
		}
	}
	sortRecords(matched, q.SortBy, q.SortOrder == "asc")

	total := len(matched)
	start := clamp(q.Offset, 0, total)
	end := clamp(start+q.Limit, start, total)
	page := matched[start:end]

	return &HistoryResult{
		Rentals: page,
		Scanned: len(all),
		Pagination: HistoryPagination{
			Total:       total,
			Limit:       q.Limit,
			Offset:      q.Offset,
			HasMore:     q.Offset+q.Limit < total,
			TotalPages:  (total + q.Limit - 1) / q.Limit,
			CurrentPage: q.Offset/q.Limit + 1,
		},
		Statistics: statistics(matched),
		Filters:    appliedFilters(q),
	}, nil
}

func normalizeQuery(q HistoryQuery) (HistoryQuery, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit > MaxHistoryLimit {
		q.Limit = MaxHistoryLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.SortBy == "" {
		q.SortBy = domain.FieldSubmittedAt
	}
	q.SortOrder = strings.ToLower(q.SortOrder)
	switch q.SortOrder {
	case "":
		q.SortOrder = "desc"
	case "asc", "desc":
	default:
		return q, apperr.Validation("sortOrder", "sortOrder must be asc or desc")
	}
	return q, nil
}

// dateBounds turns the inclusive date filter into an instant range. A bare end
// date covers the whole day.
func dateBounds(start, end string) (time.Time, time.Time, error) {
	var from, to time.Time
	if start != "" {
		t, ok := domain.ParseTime(start)
		if !ok {
			return from, to, apperr.Validation("startDate", "startDate must be YYYY-MM-DD or an ISO-8601 timestamp")
		}
		from = t
	}
	if end != "" {
		t, ok := domain.ParseTime(end)
		if !ok {
			return from, to, apperr.Validation("endDate", "endDate must be YYYY-MM-DD or an ISO-8601 timestamp")
		}
		if len(strings.TrimSpace(end)) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		to = t
	}
	return from, to, nil
}

func matches(rec domain.Record, q HistoryQuery, from, to time.Time) bool {
	if !from.IsZero() || !to.IsZero() {
		submitted, ok := rec.Time(domain.FieldSubmittedAt)
		if !ok {
			return false
		}
		if !from.IsZero() && submitted.Before(from) {
			return false
		}
		if !to.IsZero() && submitted.After(to) {
			return false
		}
	}
	if q.Status != "" && string(rec.Status()) != q.Status {
		return false
	}
	if q.ServiceType != "" && string(rec.ServiceType()) != q.ServiceType {
		return false
	}
	if q.RentalID != "" && rec.ID() != q.RentalID {
		return false
	}
	if q.CustomerContact != "" && rec.Get(domain.FieldCustomerContact) != q.CustomerContact {
		return false
	}
	if q.CustomerName != "" && !containsFold(rec.Get(domain.FieldCustomerName), q.CustomerName) {
		return false
	}
	if q.StaffName != "" &&
		!containsFold(rec.Get(domain.FieldCheckInStaff), q.StaffName) &&
		!containsFold(rec.Get(domain.FieldReturnStaff), q.StaffName) &&
		!containsFold(rec.Get(domain.FieldCreatedBy), q.StaffName) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type sortKind int

const (
	sortLexical sortKind = iota
	sortDate
	sortNumeric
)

func classifySortField(field string) sortKind {
	switch {
	case strings.Contains(field, "At") || field == domain.FieldExpectedReturn:
		return sortDate
	case field == domain.FieldTotalPrice || strings.Contains(field, "Count") || field == domain.FieldMinutesLate:
		return sortNumeric
	default:
		return sortLexical
	}
}

// sortRecords orders records by field. Ties, and values that cannot be compared,
// fall back to rentalID ascending so the order is total.
func sortRecords(recs []domain.Record, field string, asc bool) {
	kind := classifySortField(field)
	sort.SliceStable(recs, func(i, j int) bool {
		c := compareField(recs[i], recs[j], field, kind)
		if c == 0 {
			return recs[i].ID() < recs[j].ID()
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func compareField(a, b domain.Record, field string, kind sortKind) int {
	switch kind {
	case sortDate:
		ta, oka := a.Time(field)
		tb, okb := b.Time(field)
		switch {
		case !oka && !okb:
			return 0
		case !oka:
			return -1
		case !okb:
			return 1
		}
		return ta.Compare(tb)
	case sortNumeric:
		fa, fb := a.Float(field), b.Float(field)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	default:
		return strings.Compare(a.Get(field), b.Get(field))
	}
}

func statistics(recs []domain.Record) HistoryStatistics {
	stats := HistoryStatistics{
		Total:         len(recs),
		ByStatus:      make(map[string]int),
		ByServiceType: make(map[string]int),
	}
	var earliest, latest time.Time
	var earliestText, latestText string
	for _, rec := range recs {
		stats.ByStatus[string(rec.Status())]++
		stats.ByServiceType[string(rec.ServiceType())]++
		stats.TotalRevenue += rec.Float(domain.FieldTotalPrice)
		t, ok := rec.Time(domain.FieldSubmittedAt)
		if !ok {
			continue
		}
		if earliestText == "" || t.Before(earliest) {
			earliest, earliestText = t, rec.Get(domain.FieldSubmittedAt)
		}
		if latestText == "" || t.After(latest) {
			latest, latestText = t, rec.Get(domain.FieldSubmittedAt)
		}
	}
	if earliestText != "" {
		stats.DateRange = &DateRange{Earliest: earliestText, Latest: latestText}
	}
	return stats
}

// appliedFilters echoes the active filters with customer identity masked.
func appliedFilters(q HistoryQuery) map[string]string {
	filters := map[string]string{
		"sortBy":    q.SortBy,
		"sortOrder": q.SortOrder,
		"limit":     strconv.Itoa(q.Limit),
		"offset":    strconv.Itoa(q.Offset),
	}
	set := func(key, v string) {
		if v != "" {
			filters[key] = v
		}
	}
	set("startDate", q.StartDate)
	set("endDate", q.EndDate)
	set("status", q.Status)
	set("serviceType", q.ServiceType)
	set("staffName", q.StaffName)
	set("rentalID", q.RentalID)
	if q.CustomerName != "" {
		filters["customerName"] = filteredMask
	}
	if q.CustomerContact != "" {
		filters["customerContact"] = filteredMask
	}
	return filters
}

func (s *historyService) FloorBoard(ctx context.Context) (*FloorBoard, error) {
	all, err := s.rentals.List(ctx)
	if err != nil {
		return nil, err
	}
	sortRecords(all, domain.FieldSubmittedAt, true)

	board := &FloorBoard{GeneratedAt: domain.FormatTime(s.now())}
	for _, status := range floorStatuses {
		col := FloorColumn{Status: status, ByService: make(map[domain.ServiceType][]domain.Record)}
		for _, rec := range all {
			if rec.Status() != status {
				continue
			}
			col.ByService[rec.ServiceType()] = append(col.ByService[rec.ServiceType()], rec)
			col.Total++
		}
		board.Total += col.Total
		board.Columns = append(board.Columns, col)
	}
	return board, nil
}

func (s *historyService) StatusSummary(ctx context.Context) (map[domain.RentalStatus]int, error) {
	all, err := s.rentals.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.RentalStatus]int)
	for _, rec := range all {
		counts[rec.Status()]++
	}
	return counts, nil
}
