package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/merge"
	"github.com/sakif/portfolio-forge/internal/model"
)

// GitHubFetcher is satisfied by *ingest.GitHub.
type GitHubFetcher interface {
	Fetch(ctx context.Context, urlOrUsername string) (*model.GitHubProfile, error)
}

// LinkedInFetcher is satisfied by *ingest.LinkedIn.
type LinkedInFetcher interface {
	Fetch(ctx context.Context, profileURL, text string) (*model.LinkedInProfile, error)
}

// UnifiedRequest carries either already-fetched source data or the URLs to
// fetch it from. Data takes precedence when both are present.
type UnifiedRequest struct {
	GitHubData   *model.GitHubProfile   `json:"githubData,omitempty"`
	LinkedInData *model.LinkedInProfile `json:"linkedinData,omitempty"`
	GitHubURL    string                 `json:"githubUrl,omitempty"`
	LinkedInURL  string                 `json:"linkedinUrl,omitempty"`
	LinkedInText string                 `json:"linkedinText,omitempty"`
}

const unifiedRequestError = "Either provide (githubData + linkedinData) or (githubUrl and/or linkedinUrl)"

// IngestService fronts the source adapters and produces unified profiles.
// Adapters are never retried here; each source gets one attempt.
type IngestService struct {
	github   GitHubFetcher
	linkedin LinkedInFetcher
	logger   *slog.Logger
}

func NewIngestService(gh GitHubFetcher, li LinkedInFetcher, logger *slog.Logger) *IngestService {
	return &IngestService{github: gh, linkedin: li, logger: logger}
}

func (s *IngestService) GitHub(ctx context.Context, urlOrUsername string) (*model.GitHubProfile, error) {
	profile, err := s.github.Fetch(ctx, urlOrUsername)
	if err != nil {
		return nil, err
	}
	s.logger.Info("github profile ingested",
		slog.String("username", profile.Username),
		slog.Int("public_repos", profile.PublicReposCount),
	)
	return profile, nil
}

func (s *IngestService) LinkedIn(ctx context.Context, profileURL, text string) (*model.LinkedInProfile, error) {
	profile, err := s.linkedin.Fetch(ctx, profileURL, text)
	if err != nil {
		return nil, err
	}
	s.logger.Info("linkedin profile ingested",
		slog.String("url", profile.URL),
		slog.Int("skills", len(profile.Skills)),
	)
	return profile, nil
}

// Unified merges the sources in req into one profile.
//
// In URL mode both sources are fetched concurrently. A source that fails is
// logged and left out; the merge still runs on whatever succeeded. The
// errors are a request naming no source at all and a caller that gave up.
func (s *IngestService) Unified(ctx context.Context, req UnifiedRequest) (model.UnifiedProfile, error) {
	if req.GitHubData != nil || req.LinkedInData != nil {
		return merge.Merge(model.NewSources(req.GitHubData, req.LinkedInData)), nil
	}

	ghURL := strings.TrimSpace(req.GitHubURL)
	liURL := strings.TrimSpace(req.LinkedInURL)
	if ghURL == "" && liURL == "" {
		return model.UnifiedProfile{}, apperror.ValidationFailed("request", unifiedRequestError)
	}

	var (
		gh *model.GitHubProfile
		li *model.LinkedInProfile
	)

	// The goroutines never return an error: a failed source must not cancel
	// the other one. A caller that cancelled is checked once both finish.
	g, gctx := errgroup.WithContext(ctx)
	if ghURL != "" {
		g.Go(func() error {
			p, err := s.github.Fetch(gctx, ghURL)
			if err != nil {
				s.logger.Warn("unified: github source omitted",
					slog.String("url", ghURL),
					slog.String("error", err.Error()),
				)
				return nil
			}
			gh = p
			return nil
		})
	}
	if liURL != "" {
		g.Go(func() error {
			p, err := s.linkedin.Fetch(gctx, liURL, req.LinkedInText)
			if err != nil {
				s.logger.Warn("unified: linkedin source omitted",
					slog.String("url", liURL),
					slog.String("error", err.Error()),
				)
				return nil
			}
			li = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.UnifiedProfile{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.UnifiedProfile{}, fmt.Errorf("unified ingestion: %w", err)
	}

	src := model.NewSources(gh, li)
	profile := merge.Merge(src)
	s.logger.Info("unified profile built",
		slog.String("id", profile.ID),
		slog.String("sources", src.Kind().String()),
		slog.Int("skills", len(profile.NormalizedSkills)),
	)
	return profile, nil
}
