// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
//
// NULLABLE FIELDS:
// Fields the upstream source may omit are pointers (*string, *int, *time.Time).
// A nil pointer marshals to JSON `null`, which is different from "" or 0:
//
//	Name: nil          → "name": null      (source had no name)
//	Name: ptr("")      → "name": ""        (source had an empty name)
//
// We never fill a missing value with a placeholder like "Unknown".
package model

import "time"

// MaxRepoSummaries bounds every repository list on a GitHubProfile.
const MaxRepoSummaries = 6

// LanguageStat is one bucket of the size-weighted language breakdown.
// Bytes holds the summed repository size (KB, minimum 1 per repository).
type LanguageStat struct {
	Bytes   int64   `json:"bytes"`
	Percent float64 `json:"percent"`
}

// RepoSummary is the per-repository view kept on a GitHubProfile.
type RepoSummary struct {
	Name            string    `json:"name"`
	FullName        string    `json:"fullName"`
	HTMLURL         string    `json:"htmlUrl"`
	Description     *string   `json:"description"`
	StargazersCount int       `json:"stargazersCount"`
	ForksCount      int       `json:"forksCount"`
	Language        *string   `json:"language"`
	Topics          []string  `json:"topics"`
	IsFork          bool      `json:"isFork"`
	LastPushAt      time.Time `json:"lastPushAt"`
}

// GitHubProfile is the normalized result of a GitHub ingestion.
//
// PinnedRepos is a copy of TopReposByStars: the public REST API exposes no
// pinned-repository signal without an extra privileged GraphQL call.
type GitHubProfile struct {
	URL              string  `json:"url"`
	Username         string  `json:"username"`
	Name             *string `json:"name"`
	Bio              *string `json:"bio"`
	Location         *string `json:"location"`
	Blog             *string `json:"blog"`
	AvatarURL        *string `json:"avatarUrl"`
	Followers        int     `json:"followers"`
	Following        int     `json:"following"`
	PublicReposCount int     `json:"publicReposCount"`
	TotalStars       int     `json:"totalStars"`

	Languages      map[string]LanguageStat `json:"languages"`
	LastActivityAt *time.Time              `json:"lastActivityAt"`

	PinnedRepos              []RepoSummary `json:"pinnedRepos"`
	TopReposByStars          []RepoSummary `json:"topReposByStars"`
	TopReposByRecentActivity []RepoSummary `json:"topReposByRecentActivity"`
}
