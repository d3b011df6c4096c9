// Package ingest translates external profile sources into this system's
// normalized per-source shapes.
//
// ADAPTERS, NOT SCRAPERS:
// Each adapter makes the minimum number of upstream calls and surfaces any
// upstream failure immediately. There are no retries at this layer; a single
// GitHub 5xx goes straight back to the caller with its status code.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
)

const (
	DefaultGitHubAPI = "https://api.github.com"
	userAgent        = "portfolio-forge"
	reposPerPage     = 100
)

// GitHub usernames: alphanumerics and single hyphens, at most 39 chars.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

// GitHubConfig configures the GitHub adapter.
//
// Token is optional. Unauthenticated calls work but share a 60 req/hour
// limit per IP; with a personal access token the limit is 5000.
type GitHubConfig struct {
	Token   string
	BaseURL string
}

// GitHub fetches a public GitHub user and their owned repositories.
type GitHub struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewGitHub creates the adapter.
//
// OAUTH2 TOKEN SOURCE:
// oauth2.NewClient returns an *http.Client whose transport adds
// "Authorization: Bearer <token>" to every request. A StaticTokenSource is
// the right source for a personal access token: it never expires, so no
// refresh flow is involved.
func NewGitHub(cfg GitHubConfig, logger *slog.Logger) *GitHub {
	var client *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		client = oauth2.NewClient(context.Background(), ts)
	} else {
		client = &http.Client{}
	}
	client.Timeout = 30 * time.Second

	base := cfg.BaseURL
	if base == "" {
		base = DefaultGitHubAPI
	}
	return &GitHub{
		client:  client,
		baseURL: strings.TrimRight(base, "/"),
		logger:  logger,
	}
}

// NormalizeUsername accepts a profile URL or a bare username.
//
//	"https://github.com/alice/"  → "alice"
//	"github.com/alice"           → "alice"
//	"alice"                      → "alice"
func NormalizeUsername(input string) (string, error) {
	s := input
	if _, after, found := strings.Cut(s, "github.com/"); found {
		s, _, _ = strings.Cut(after, "/")
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(strings.TrimSpace(s), "/")

	if s == "" || !usernameRe.MatchString(s) {
		return "", apperror.ValidationFailed("url", "Invalid GitHub URL or username")
	}
	return s, nil
}

// GitHub REST payloads, only the fields we use.
type ghUser struct {
	Login       string  `json:"login"`
	HTMLURL     string  `json:"html_url"`
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	Blog        *string `json:"blog"`
	AvatarURL   *string `json:"avatar_url"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
	PublicRepos int     `json:"public_repos"`
}

type ghRepo struct {
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	HTMLURL         string    `json:"html_url"`
	Description     *string   `json:"description"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Language        *string   `json:"language"`
	Topics          []string  `json:"topics"`
	Fork            bool      `json:"fork"`
	PushedAt        time.Time `json:"pushed_at"`
	Size            int64     `json:"size"` // KB
}

// Fetch resolves urlOrUsername and builds the profile from two calls:
// the user lookup and one page of up to 100 owned repositories sorted by stars.
func (g *GitHub) Fetch(ctx context.Context, urlOrUsername string) (*model.GitHubProfile, error) {
	username, err := NormalizeUsername(urlOrUsername)
	if err != nil {
		return nil, err
	}

	var user ghUser
	status, err := g.getJSON(ctx, "/users/"+url.PathEscape(username), &user)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, apperror.NotFound("GitHub user", username)
	case status < 200 || status > 299:
		return nil, apperror.Upstream("github", status, "Failed to fetch GitHub user data")
	}

	var repos []ghRepo
	reposPath := fmt.Sprintf("/users/%s/repos?per_page=%d&sort=stars&type=owner", url.PathEscape(username), reposPerPage)
	status, err = g.getJSON(ctx, reposPath, &repos)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, apperror.Upstream("github", status, "Failed to fetch GitHub repositories")
	}

	profile := buildProfile(user, repos)
	g.logger.Info("github profile ingested",
		slog.String("username", profile.Username),
		slog.Int("repos", len(repos)),
		slog.Int("total_stars", profile.TotalStars),
	)
	return profile, nil
}

// getJSON decodes the body into dst only on a 2xx response; the status is
// always returned so the caller can classify failures.
func (g *GitHub) getJSON(ctx context.Context, path string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("ingest: building github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ingest: calling github %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn("github returned non-success status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("ingest: decoding github %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

// buildProfile derives every aggregate from the raw payloads. It is pure so
// the derivation rules can be tested without a server.
func buildProfile(user ghUser, repos []ghRepo) *model.GitHubProfile {
	totalStars := 0
	weights := make(map[string]int64)
	var totalWeight int64

	summaries := make([]model.RepoSummary, 0, len(repos))
	for _, r := range repos {
		totalStars += r.StargazersCount

		// Primary language only; each repo weighs its size in KB, at least 1.
		if r.Language != nil && *r.Language != "" {
			w := max(r.Size, 1)
			weights[*r.Language] += w
			totalWeight += w
		}

		topics := r.Topics
		if topics == nil {
			topics = []string{}
		}
		summaries = append(summaries, model.RepoSummary{
			Name:            r.Name,
			FullName:        r.FullName,
			HTMLURL:         r.HTMLURL,
			Description:     r.Description,
			StargazersCount: r.StargazersCount,
			ForksCount:      r.ForksCount,
			Language:        r.Language,
			Topics:          topics,
			IsFork:          r.Fork,
			LastPushAt:      r.PushedAt,
		})
	}

	languages := make(map[string]model.LanguageStat, len(weights))
	for lang, w := range weights {
		languages[lang] = model.LanguageStat{
			Bytes:   w,
			Percent: float64(w) / float64(totalWeight) * 100,
		}
	}

	byStars := slices.Clone(summaries)
	slices.SortStableFunc(byStars, func(a, b model.RepoSummary) int {
		return b.StargazersCount - a.StargazersCount
	})
	byStars = byStars[:min(len(byStars), model.MaxRepoSummaries)]

	byActivity := slices.Clone(summaries)
	slices.SortStableFunc(byActivity, func(a, b model.RepoSummary) int {
		return b.LastPushAt.Compare(a.LastPushAt)
	})
	byActivity = byActivity[:min(len(byActivity), model.MaxRepoSummaries)]

	var lastActivity *time.Time
	if len(byActivity) > 0 && !byActivity[0].LastPushAt.IsZero() {
		t := byActivity[0].LastPushAt
		lastActivity = &t
	}

	return &model.GitHubProfile{
		URL:              user.HTMLURL,
		Username:         user.Login,
		Name:             nonEmpty(user.Name),
		Bio:              nonEmpty(user.Bio),
		Location:         nonEmpty(user.Location),
		Blog:             nonEmpty(user.Blog),
		AvatarURL:        nonEmpty(user.AvatarURL),
		Followers:        user.Followers,
		Following:        user.Following,
		PublicReposCount: user.PublicRepos,
		TotalStars:       totalStars,
		Languages:        languages,
		LastActivityAt:   lastActivity,
		// No pinned signal without a GraphQL call; mirror top-by-stars.
		PinnedRepos:              slices.Clone(byStars),
		TopReposByStars:          byStars,
		TopReposByRecentActivity: byActivity,
	}
}

// nonEmpty maps "" to nil; GitHub reports unset profile fields as "".
func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
