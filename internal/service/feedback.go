package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/repository"
)

const (
	MaxFeedbackMessageLength = 5000
	DefaultFeedbackLimit     = 50
	MaxFeedbackLimit         = 200
)

// Classifier labels and answers feedback. *GenerationService satisfies it.
type Classifier interface {
	ClassifyFeedback(ctx context.Context, text string) model.Classification
	DraftReply(ctx context.Context, fb model.Feedback, ownerName string) string
}

// FeedbackService runs the owner's inbox: visitors submit messages, each is
// classified on arrival, and the owner can ask for a drafted reply.
type FeedbackService struct {
	repo       repository.FeedbackRepository
	classifier Classifier
	logger     *slog.Logger
}

func NewFeedbackService(repo repository.FeedbackRepository, classifier Classifier, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{repo: repo, classifier: classifier, logger: logger}
}

// Submit classifies and stores a new message. Classification never fails;
// an unreachable model labels the message Uncategorized.
func (s *FeedbackService) Submit(ctx context.Context, name, email, message string) (*model.Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.ValidationFailed("message", "message is required")
	}
	if utf8.RuneCountInString(message) > MaxFeedbackMessageLength {
		return nil, apperror.ValidationFailed("message",
			fmt.Sprintf("message must be %d characters or less", MaxFeedbackMessageLength))
	}

	labels := s.classifier.ClassifyFeedback(ctx, message)

	fb := &model.Feedback{
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Message:   message,
		Category:  labels.Category,
		Sentiment: labels.Sentiment,
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		s.logger.Error("failed to store feedback", slog.String("error", err.Error()))
		return nil, fmt.Errorf("storing feedback: %w", err)
	}

	s.logger.Info("feedback received",
		slog.String("id", fb.ID),
		slog.String("category", fb.Category),
		slog.String("sentiment", fb.Sentiment),
	)
	return fb, nil
}

// List returns the inbox newest first.
func (s *FeedbackService) List(ctx context.Context, limit, offset int) ([]model.Feedback, error) {
	if limit <= 0 {
		limit = DefaultFeedbackLimit
	}
	limit = min(limit, MaxFeedbackLimit)
	offset = max(offset, 0)

	items, err := s.repo.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list feedback", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	return items, nil
}

func (s *FeedbackService) Get(ctx context.Context, id string) (*model.Feedback, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "feedback ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// DraftReply drafts an answer to feedback id in ownerName's voice and
// attaches it to the record.
func (s *FeedbackService) DraftReply(ctx context.Context, id, ownerName string) (*model.Feedback, error) {
	fb, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	draft := s.classifier.DraftReply(ctx, *fb, ownerName)
	if err := s.repo.SetReplyDraft(ctx, fb.ID, draft); err != nil {
		s.logger.Error("failed to save reply draft",
			slog.String("id", fb.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving reply draft: %w", err)
	}

	fb.AIResponseDraft = &draft
	s.logger.Info("reply drafted", slog.String("id", fb.ID))
	return fb, nil
}
