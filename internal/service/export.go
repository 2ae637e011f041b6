package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/repository"
	"frontdesk-rental-backend/internal/utils"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
	onsenSheetName  = "外湯めぐりdata"
	exportColWidth  = 15
)

type exportColumn struct {
	field  string
	header string
	// pdfHeader is used when no UTF-8 font is configured for PDF output.
	pdfHeader string
}

var onsenExportColumns = []exportColumn{
	{domain.FieldRentalID, "予約番号", "Rental ID"},
	{domain.FieldCustomerName, "お客様名", "Customer"},
	{domain.FieldCustomerContact, "連絡先", "Contact"},
	{domain.FieldTotalPrice, "料金", "Price"},
	{domain.FieldDiscountApplied, "割引適用", "Discount"},
	{domain.FieldUnavailableBaths, "利用不可浴場", "Closed baths"},
	{domain.FieldCompanion, "同行者", "Companion"},
	{domain.FieldComeFrom, "お住まい", "From"},
	{domain.FieldTotalAdultCount, "大人", "Adults"},
	{domain.FieldTotalChildCount, "小人", "Children"},
	{domain.FieldMaleCount, "男性", "Male"},
	{domain.FieldFemaleCount, "女性", "Female"},
	{domain.FieldBoyCount, "男の子", "Boys"},
	{domain.FieldGirlCount, "女の子", "Girls"},
	{domain.FieldFaceTowelCount, "フェイスタオル", "Face towels"},
	{domain.FieldBathTowelCount, "バスタオル", "Bath towels"},
	{domain.FieldCheckInStaff, "担当", "Staff"},
	{domain.FieldCheckedInAt, "日時", "Checked in"},
}

type ExportQuery struct {
	StartDate string
	EndDate   string
	Format    string
}

type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

type exportService struct {
	rentals  repository.RentalRepository
	location *time.Location
	pdfFont  string
	now      func() time.Time
}

// NewExportService builds the onsen exporter. Times are rendered in loc
// (Asia/Tokyo when nil). pdfFontPath optionally points at a UTF-8 TrueType font
// so PDF exports can carry Japanese text.
func NewExportService(rentals repository.RentalRepository, loc *time.Location, pdfFontPath string) ExportService {
	if loc == nil {
		loc = tokyo()
	}
	return &exportService{rentals: rentals, location: loc, pdfFont: pdfFontPath, now: time.Now}
}

func tokyo() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

func (s *exportService) ExportOnsen(ctx context.Context, q ExportQuery) (*ExportFile, error) {
	format := strings.ToLower(q.Format)
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatPDF {
		return nil, apperr.Validation("format", "format must be xlsx or pdf")
	}
	from, to, err := dateBounds(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	all, err := s.rentals.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, apperr.Empty("No data found", "No rental data available for export")
	}

	var rows [][]string
	for _, rec := range all {
		if rec.ServiceType() != domain.ServiceOnsen {
			continue
		}
		if !matches(rec, HistoryQuery{}, from, to) {
			continue
		}
		rows = append(rows, s.formatRow(rec))
	}
	if len(rows) == 0 {
		return nil, apperr.Empty("No Onsen data found", "No Onsen service records available for export")
	}

	name := s.fileName(q.StartDate, q.EndDate, format)
	var data []byte
	var contentType string
	switch format {
	case FormatPDF:
		data, err = s.renderPDF(rows)
		contentType = pdfContentType
	default:
		data, err = renderXLSX(rows)
		contentType = xlsxContentType
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render onsen export: %w", err)
	}
	logger.Info("Onsen export generated", "file", name, "rows", len(rows), "bytes", len(data))
	return &ExportFile{FileName: name, ContentType: contentType, Data: data}, nil
}

func (s *exportService) formatRow(rec domain.Record) []string {
	row := make([]string, len(onsenExportColumns))
	for i, col := range onsenExportColumns {
		v := rec.Get(col.field)
		switch col.field {
		case domain.FieldDiscountApplied:
			if rec.Bool(col.field) {
				v = "はい"
			} else {
				v = "いいえ"
			}
		case domain.FieldTotalPrice:
			v = utils.FormatYen(rec.Float(col.field))
		case domain.FieldCheckedInAt:
			if t, ok := rec.Time(col.field); ok {
				v = t.In(s.location).Format("2006/1/2 15:04:05")
			}
		}
		row[i] = v
	}
	return row
}

func (s *exportService) fileName(start, end, format string) string {
	switch {
	case start != "" && end != "" && start == end:
		return fmt.Sprintf("onsen-data-%s.%s", start, format)
	case start != "" && end != "":
		return fmt.Sprintf("onsen-data-%s_to_%s.%s", start, end, format)
	case start != "":
		return fmt.Sprintf("onsen-data-from-%s.%s", start, format)
	case end != "":
		return fmt.Sprintf("onsen-data-until-%s.%s", end, format)
	default:
		return fmt.Sprintf("onsen-data-all-%s.%s", s.now().In(s.location).Format("2006-01-02"), format)
	}
}

func renderXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", onsenSheetName); err != nil {
		return nil, err
	}
	for i, col := range onsenExportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(onsenSheetName, cell, col.header); err != nil {
			return nil, err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(onsenSheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}
	last, err := excelize.ColumnNumberToName(len(onsenExportColumns))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(onsenSheetName, "A", last, exportColWidth); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *exportService) renderPDF(rows [][]string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A3", "")
	pdf.SetMargins(8, 10, 8)

	family := "Arial"
	utf8 := s.pdfFont != ""
	if utf8 {
		family = "jp"
		pdf.AddUTF8Font(family, "", s.pdfFont)
	}
	pdf.AddPage()

	pdf.SetFont(family, "", 14)
	pdf.CellFormat(0, 10, "Onsen Export", "", 1, "C", false, 0, "")
	pdf.SetFont(family, "", 8)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", s.now().In(s.location).Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	width := (420.0 - 16) / float64(len(onsenExportColumns))
	pdf.SetFillColor(220, 220, 220)
	for _, col := range onsenExportColumns {
		header := col.pdfHeader
		if utf8 {
			header = col.header
		}
		pdf.CellFormat(width, 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	tr := func(v string) string { return v }
	if !utf8 {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	for _, row := range rows {
		for _, v := range row {
			pdf.CellFormat(width, 6, tr(v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
