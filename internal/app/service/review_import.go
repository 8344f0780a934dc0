package service

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

var ErrImportFailed = errors.New("review import failed")

const importBatchSize = 500

// Recognized header names, lower-cased.
var importColumns = map[string][]string{
	"reviewer": {"reviewer", "reviewer_name", "name"},
	"rating":   {"rating", "stars"},
	"text":     {"text", "review", "review_text"},
	"source":   {"source", "platform"},
	"date":     {"date", "review_date"},
}

var importDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// SkippedRow is a spreadsheet row that could not be imported. Row is 1-based as shown in the sheet.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported int          `json:"imported"`
	Skipped  []SkippedRow `json:"skipped"`
}

// ParseReviewSheet reads the first sheet of an xlsx workbook. The first row is a header.
func ParseReviewSheet(r io.Reader) ([]ReviewInput, []SkippedRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open XLSX: %v", ErrImportFailed, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("%w: no sheets found", ErrImportFailed)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read rows: %v", ErrImportFailed, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet is empty", ErrImportFailed)
	}

	cols := headerIndex(rows[0])
	for _, required := range []string{"rating", "text"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("%w: missing %q column", ErrImportFailed, required)
		}
	}

	var (
		inputs  []ReviewInput
		skipped []SkippedRow
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		cell := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		if cell("rating") == "" && cell("text") == "" {
			continue
		}

		rating, err := strconv.ParseFloat(cell("rating"), 64)
		if err != nil {
			skipped = append(skipped, SkippedRow{Row: rowNum, Reason: "rating is not a number"})
			continue
		}

		input := ReviewInput{
			ReviewerName: cell("reviewer"),
			Rating:       int(rating),
			Text:         cell("text"),
			Source:       model.ReviewSource(strings.ToLower(cell("source"))),
		}
		if raw := cell("date"); raw != "" {
			date, err := parseImportDate(raw)
			if err != nil {
				skipped = append(skipped, SkippedRow{Row: rowNum, Reason: "unrecognized date"})
				continue
			}
			input.ReviewDate = &date
		}

		if err := ValidateReviewInput(&input); err != nil {
			skipped = append(skipped, SkippedRow{Row: rowNum, Reason: strings.TrimPrefix(err.Error(), ErrInvalidReview.Error()+": ")})
			continue
		}
		inputs = append(inputs, input)
	}

	return inputs, skipped, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		for key, aliases := range importColumns {
			if _, seen := cols[key]; seen {
				continue
			}
			for _, alias := range aliases {
				if name == alias {
					cols[key] = i
				}
			}
		}
	}
	return cols
}

// parseImportDate accepts text dates and raw Excel serial dates.
func parseImportDate(raw string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

type ReviewImportService interface {
	ImportXLSX(business *model.Business, r io.Reader) (*ImportResult, error)
}

type reviewImportService struct {
	reviewRepo repository.ReviewRepository
	usageRepo  repository.UsageRepository
	now        func() time.Time
}

func NewReviewImportService(reviewRepo repository.ReviewRepository, usageRepo repository.UsageRepository) ReviewImportService {
	return &reviewImportService{
		reviewRepo: reviewRepo,
		usageRepo:  usageRepo,
		now:        time.Now,
	}
}

func (s *reviewImportService) ImportXLSX(business *model.Business, r io.Reader) (*ImportResult, error) {
	inputs, skipped, err := ParseReviewSheet(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Skipped: skipped}
	if result.Skipped == nil {
		result.Skipped = []SkippedRow{}
	}
	if len(inputs) == 0 {
		return result, nil
	}

	reviews := make([]model.Review, 0, len(inputs))
	for _, in := range inputs {
		review := model.Review{
			BusinessID:   business.ID,
			ReviewerName: in.ReviewerName,
			Rating:       in.Rating,
			Text:         in.Text,
			Source:       in.Source,
			Status:       model.ReviewStatusPending,
		}
		if in.ReviewDate != nil {
			review.ReviewDate = in.ReviewDate.UTC()
		}
		reviews = append(reviews, review)
	}

	if err := s.reviewRepo.CreateBatch(reviews, importBatchSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}
	result.Imported = len(reviews)

	period := DailyPeriod(s.now())
	if err := s.usageRepo.IncrementReviewsCreated(business.OwnerUserID, period.Start, period.End, len(reviews)); err != nil {
		logger.Warn("Failed to count imported reviews", map[string]interface{}{
			"business_id": business.ID,
			"error":       err.Error(),
		})
	}

	logger.Info("Reviews imported", map[string]interface{}{
		"business_id": business.ID,
		"imported":    result.Imported,
		"skipped":     len(result.Skipped),
	})
	return result, nil
}
