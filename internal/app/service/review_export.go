package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportURLTTL    = 15 * time.Minute
	exportSheet     = "Reviews"
)

var exportHeader = []interface{}{
	"Reviewer", "Rating", "Text", "Source", "Date", "Status",
	"Sentiment", "Urgency", "Category", "Summary",
}

// ExportStorage keeps generated files and hands out temporary download links.
type ExportStorage interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ExportResult holds either a download URL or the file itself.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
	DownloadURL string
	ExpiresAt   time.Time
}

type ReviewExportService interface {
	ExportReviews(ctx context.Context, ownerID, businessID uuid.UUID) (*ExportResult, error)
}

type reviewExportService struct {
	reviewRepo      repository.ReviewRepository
	businessService BusinessService
	storage         ExportStorage
	now             func() time.Time
}

// NewReviewExportService creates the export service. A nil storage streams files to the caller.
func NewReviewExportService(reviewRepo repository.ReviewRepository, businessService BusinessService, storage ExportStorage) ReviewExportService {
	return &reviewExportService{
		reviewRepo:      reviewRepo,
		businessService: businessService,
		storage:         storage,
		now:             time.Now,
	}
}

func (s *reviewExportService) ExportReviews(ctx context.Context, ownerID, businessID uuid.UUID) (*ExportResult, error) {
	business, err := s.businessService.GetBusiness(ownerID, businessID)
	if err != nil {
		return nil, err
	}

	reviews, _, err := s.reviewRepo.List(businessID, repository.ReviewFilter{})
	if err != nil {
		return nil, err
	}

	data, err := BuildReviewWorkbook(reviews)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	result := &ExportResult{
		FileName:    fmt.Sprintf("%s-reviews-%s.xlsx", slugify(business.Name), now.Format("20060102")),
		ContentType: xlsxContentType,
	}

	if s.storage == nil {
		result.Data = data
		return result, nil
	}

	key := fmt.Sprintf("exports/%s/%s.xlsx", businessID, uuid.New())
	if err := s.storage.Upload(ctx, key, xlsxContentType, data); err != nil {
		logger.Error("Failed to upload review export", err, map[string]interface{}{
			"business_id": businessID,
			"key":         key,
		})
		return nil, err
	}
	url, err := s.storage.PresignGet(ctx, key, exportURLTTL)
	if err != nil {
		return nil, err
	}

	result.DownloadURL = url
	result.ExpiresAt = now.Add(exportURLTTL)
	return result, nil
}

// BuildReviewWorkbook renders reviews as a single-sheet xlsx file.
func BuildReviewWorkbook(reviews []model.Review) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	for i, r := range reviews {
		row := []interface{}{
			r.ReviewerName,
			r.Rating,
			r.Text,
			string(r.Source),
			r.ReviewDate.UTC().Format("2006-01-02"),
			string(r.Status),
			derefEnum(r.Sentiment),
			derefEnum(r.AnalysisUrgency),
			derefString(r.AnalysisCategory),
			derefString(r.AnalysisSummary),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefEnum[T ~string](v *T) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "business"
	}
	return s
}
