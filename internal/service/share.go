package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/repository"
)

const (
	ShareIDLength = 8
	ShareTTL      = 30 * 24 * time.Hour

	shareAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// ShareResult is what the caller needs to hand out a share link.
type ShareResult struct {
	ShareID   string    `json:"shareId"`
	ShareURL  string    `json:"shareUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ShareService publishes profile snapshots under short opaque ids.
type ShareService struct {
	store   repository.ShareStore
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
	newID   func() (string, error)
}

// NewShareService creates a ShareService. baseURL is the public origin the
// share links point at, e.g. "https://portfolio.example.com".
func NewShareService(store repository.ShareStore, baseURL string, logger *slog.Logger) *ShareService {
	return &ShareService{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   newShareID,
	}
}

// Create stores a snapshot of profile and returns its link.
//
// Ids are not checked for collisions: a clash overwrites the older record.
// With 62^8 possible ids that is accepted.
func (s *ShareService) Create(ctx context.Context, profile model.GeneratedProfile) (*ShareResult, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generating share id: %w", err)
	}

	now := s.now()
	rec := &model.ShareRecord{
		ID:        id,
		Profile:   profile,
		CreatedAt: now,
		ExpiresAt: now.Add(ShareTTL),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		s.logger.Error("failed to store share",
			slog.String("share_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("storing share: %w", err)
	}

	s.logger.Info("profile shared",
		slog.String("share_id", id),
		slog.String("profile_id", profile.ID),
	)
	return &ShareResult{
		ShareID:   id,
		ShareURL:  s.baseURL + "/share/" + id,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Get returns the profile stored under id.
func (s *ShareService) Get(ctx context.Context, id string) (*model.GeneratedProfile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Share ID is required")
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec.Profile, nil
}

// newShareID draws ShareIDLength independent, uniform symbols from
// shareAlphabet. Bytes at or above 248 (the largest multiple of 62 that fits
// in a byte) are rejected so every symbol is equally likely.
func newShareID() (string, error) {
	const limit = 256 - 256%len(shareAlphabet)

	id := make([]byte, 0, ShareIDLength)
	buf := make([]byte, ShareIDLength*2)
	for len(id) < ShareIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			id = append(id, shareAlphabet[int(b)%len(shareAlphabet)])
			if len(id) == ShareIDLength {
				break
			}
		}
	}
	return string(id), nil
}
