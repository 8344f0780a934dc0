package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/internal/app/model"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/internal/monitoring"
	"github.com/ikkim/replydesk-backend/pkg/llm"
	"github.com/ikkim/replydesk-backend/pkg/logger"
)

var (
	ErrAnalysisNotConfigured  = errors.New("AI provider is not configured")
	ErrInvalidAnalysisRequest = errors.New("invalid analysis request")
)

// Event names pushed to a user's realtime sessions.
const (
	EventReviewAnalyzed = "review.analyzed"
	EventReplyApproved  = "reply.approved"
)

// EventNotifier delivers events to every open session of one user.
type EventNotifier interface {
	NotifyUser(userID uuid.UUID, eventType string, payload interface{})
}

// PersistStatus describes what happened to the derived results.
type PersistStatus string

const (
	PersistSkipped PersistStatus = "skipped"
	PersistSaved   PersistStatus = "saved"
	PersistFailed  PersistStatus = "failed"
)

// PersistOutcome is reported next to the response and never changes it.
type PersistOutcome struct {
	Status PersistStatus
	Err    error
}

type AnalysisResult struct {
	Response *model.AnalyzeReviewResponse
	Persist  PersistOutcome
}

type AnalysisOptions struct {
	// Timeout bounds the model call. Zero means no bound beyond the provider's own.
	Timeout time.Duration
	// CountFailedCalls keeps the quota reservation when the call or parsing fails.
	CountFailedCalls bool
}

type AnalysisService interface {
	Analyze(ctx context.Context, userID uuid.UUID, req *model.AnalyzeReviewRequest) (*AnalysisResult, error)
}

type analysisService struct {
	provider     llm.Provider
	quota        QuotaService
	reviewRepo   repository.ReviewRepository
	businessRepo repository.BusinessRepository
	notifier     EventNotifier
	opts         AnalysisOptions
}

func NewAnalysisService(
	provider llm.Provider,
	quota QuotaService,
	reviewRepo repository.ReviewRepository,
	businessRepo repository.BusinessRepository,
	notifier EventNotifier,
	opts AnalysisOptions,
) AnalysisService {
	return &analysisService{
		provider:     provider,
		quota:        quota,
		reviewRepo:   reviewRepo,
		businessRepo: businessRepo,
		notifier:     notifier,
		opts:         opts,
	}
}

// analysisInput is a validated request.
type analysisInput struct {
	reviewID *uuid.UUID
	prompt   PromptInput
}

func (s *analysisService) Analyze(ctx context.Context, userID uuid.UUID, req *model.AnalyzeReviewRequest) (*AnalysisResult, error) {
	if s.provider == nil || !s.provider.Configured() {
		logger.Error("AI provider is not configured", nil)
		return nil, ErrAnalysisNotConfigured
	}

	in, err := validateAnalysisRequest(req)
	if err != nil {
		return nil, err
	}

	if in.prompt.Business == nil && in.reviewID != nil {
		in.prompt.Business = s.loadBusinessContext(userID, *in.reviewID)
	}

	reservation, err := s.quota.Reserve(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The call outlives a disconnected client but never the configured timeout.
	callCtx := context.WithoutCancel(ctx)
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, s.opts.Timeout)
		defer cancel()
	}

	answer, err := s.complete(callCtx, in.prompt)
	if err != nil {
		if !s.opts.CountFailedCalls {
			s.quota.Release(context.WithoutCancel(ctx), reservation)
		}
		return nil, err
	}

	response := buildAnalysisResponse(in.prompt, answer)

	outcome := PersistOutcome{Status: PersistSkipped}
	if in.reviewID != nil {
		outcome = s.persist(userID, *in.reviewID, in.prompt.Action, answer)
	}

	return &AnalysisResult{Response: response, Persist: outcome}, nil
}

func validateAnalysisRequest(req *model.AnalyzeReviewRequest) (*analysisInput, error) {
	if req == nil || strings.TrimSpace(req.ReviewText) == "" {
		return nil, fmt.Errorf("%w: reviewText is required", ErrInvalidAnalysisRequest)
	}

	action := req.Action
	if action == "" {
		action = model.ActionBoth
	}
	if !action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidAnalysisRequest, req.Action)
	}

	var tone model.ToneType
	if req.Tone != "" {
		t, ok := model.ParseTone(string(req.Tone))
		if !ok {
			return nil, fmt.Errorf("%w: unknown tone %q", ErrInvalidAnalysisRequest, req.Tone)
		}
		tone = t
	}

	in := &analysisInput{
		prompt: PromptInput{
			ReviewText:   req.ReviewText,
			ReviewerName: req.ReviewerName,
			Rating:       req.Rating,
			Business:     req.BusinessContext,
			Action:       action,
			Tone:         tone,
		},
	}

	if id := strings.TrimSpace(req.ReviewID); id != "" {
		reviewID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: reviewId is not a valid id", ErrInvalidAnalysisRequest)
		}
		in.reviewID = &reviewID
	}
	return in, nil
}

// loadBusinessContext returns nil when the review or its business cannot be read.
func (s *analysisService) loadBusinessContext(userID, reviewID uuid.UUID) *model.BusinessContext {
	review, err := s.reviewRepo.FindOwnedByID(userID, reviewID)
	if err != nil {
		logger.Debug("No business context for review", map[string]interface{}{
			"review_id": reviewID,
			"error":     err.Error(),
		})
		return nil
	}

	business, err := s.businessRepo.FindByID(review.BusinessID)
	if err != nil {
		logger.Warn("Failed to load business for review", map[string]interface{}{
			"review_id":   reviewID,
			"business_id": review.BusinessID,
			"error":       err.Error(),
		})
		return nil
	}
	return business.Context()
}

// complete performs the single model call and normalizes its answer.
func (s *analysisService) complete(ctx context.Context, in PromptInput) (*model.NormalizedAnswer, error) {
	prompt := BuildPrompt(in, s.provider.Structured())

	start := time.Now()
	completion, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		Capabilities: Capabilities(in.Action),
	})
	elapsed := time.Since(start)

	if err != nil {
		monitoring.ObserveAICall(s.provider.Name(), callOutcome(err), elapsed)
		logger.Error("Model call failed", err, map[string]interface{}{
			"provider":    s.provider.Name(),
			"duration_ms": elapsed.Milliseconds(),
		})
		return nil, err
	}

	answer, err := NormalizeCompletion(completion)
	if err != nil {
		monitoring.ObserveAICall(s.provider.Name(), "parse_error", elapsed)
		logger.Error("Failed to normalize model answer", err, map[string]interface{}{
			"provider": s.provider.Name(),
		})
		return nil, err
	}

	monitoring.ObserveAICall(s.provider.Name(), "ok", elapsed)
	logger.Info("Review analyzed", map[string]interface{}{
		"provider":    s.provider.Name(),
		"action":      in.Action,
		"replies":     len(answer.Replies),
		"duration_ms": elapsed.Milliseconds(),
	})
	return answer, nil
}

func callOutcome(err error) string {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, llm.ErrPaymentRequired):
		return "payment_required"
	case errors.Is(err, llm.ErrTimeout):
		return "timeout"
	case errors.Is(err, llm.ErrEmptyResponse):
		return "empty"
	default:
		return "upstream_error"
	}
}

func buildAnalysisResponse(in PromptInput, answer *model.NormalizedAnswer) *model.AnalyzeReviewResponse {
	resp := &model.AnalyzeReviewResponse{Success: true}

	if in.Action.WantsAnalysis() {
		analysis := answer.Analysis
		resp.Analysis = &analysis
	}

	if in.Action.WantsReplies() {
		resp.Replies = answer.Replies
		if resp.Replies == nil {
			resp.Replies = []model.DraftReply{}
		}

		preferred := in.Tone
		if preferred == "" && in.Business != nil {
			preferred, _ = model.ParseTone(in.Business.DefaultTone)
		}
		if draft := pickReply(answer.Replies, preferred); draft != nil {
			resp.Reply = &model.ReplySummary{ReplyText: draft.Text, Tone: draft.Tone}
		}
	}
	return resp
}

// pickReply returns the draft in tone, else the first draft.
func pickReply(drafts []model.DraftReply, tone model.ToneType) *model.DraftReply {
	if len(drafts) == 0 {
		return nil
	}
	for i := range drafts {
		if drafts[i].Tone == tone {
			return &drafts[i]
		}
	}
	return &drafts[0]
}

// persist writes the derived results to the caller's review. Failures are logged and counted only.
func (s *analysisService) persist(userID, reviewID uuid.UUID, action model.AnalysisAction, answer *model.NormalizedAnswer) PersistOutcome {
	fail := func(err error) PersistOutcome {
		monitoring.PersistFailuresTotal.Inc()
		logger.Error("Failed to persist review analysis", err, map[string]interface{}{
			"review_id": reviewID,
			"user_id":   userID,
		})
		return PersistOutcome{Status: PersistFailed, Err: err}
	}

	if _, err := s.reviewRepo.FindOwnedByID(userID, reviewID); err != nil {
		return fail(fmt.Errorf("review not accessible: %w", err))
	}

	var update *repository.AnalysisUpdate
	if action.WantsAnalysis() {
		a := answer.Analysis
		update = &repository.AnalysisUpdate{
			Sentiment:           a.Sentiment,
			Urgency:             a.Urgency,
			Category:            a.Category,
			Summary:             a.Summary,
			MissingInfoRequired: a.MissingInfoRequired,
			MissingInfoFields:   a.MissingInfoFields,
		}
	}

	var drafts []model.Reply
	if action.WantsReplies() {
		drafts = make([]model.Reply, 0, len(answer.Replies))
		for _, r := range answer.Replies {
			drafts = append(drafts, model.Reply{Text: r.Text, Tone: r.Tone})
		}
	}

	if err := s.reviewRepo.SaveAnalysis(reviewID, update, drafts); err != nil {
		return fail(err)
	}

	if s.notifier != nil {
		s.notifier.NotifyUser(userID, EventReviewAnalyzed, map[string]interface{}{
			"review_id": reviewID,
			"replies":   len(drafts),
		})
	}
	return PersistOutcome{Status: PersistSaved}
}
