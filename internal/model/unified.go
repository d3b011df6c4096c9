package model

import "time"

// SourceKind enumerates which external sources contributed to a merge.
type SourceKind int

const (
	SourcesNone SourceKind = iota
	SourcesGitHubOnly
	SourcesLinkedInOnly
	SourcesBoth
)

func (k SourceKind) String() string {
	switch k {
	case SourcesGitHubOnly:
		return "github"
	case SourcesLinkedInOnly:
		return "linkedin"
	case SourcesBoth:
		return "github+linkedin"
	default:
		return "none"
	}
}

// Sources carries the optional per-source profiles into the merge engine.
//
// The fields are unexported so a Sources value can only be built through the
// constructors below; Kind() then tells the merge engine exactly which of the
// four presence cases it is handling, and a switch over Kind() covers them all.
type Sources struct {
	github   *GitHubProfile
	linkedin *LinkedInProfile
}

// NewSources builds a Sources value; either argument may be nil.
func NewSources(gh *GitHubProfile, li *LinkedInProfile) Sources {
	return Sources{github: gh, linkedin: li}
}

func (s Sources) Kind() SourceKind {
	switch {
	case s.github != nil && s.linkedin != nil:
		return SourcesBoth
	case s.github != nil:
		return SourcesGitHubOnly
	case s.linkedin != nil:
		return SourcesLinkedInOnly
	default:
		return SourcesNone
	}
}

// GitHub returns the GitHub profile and whether it is present.
func (s Sources) GitHub() (*GitHubProfile, bool) { return s.github, s.github != nil }

// LinkedIn returns the LinkedIn profile and whether it is present.
func (s Sources) LinkedIn() (*LinkedInProfile, bool) { return s.linkedin, s.linkedin != nil }

// UnifiedProfile is the merge of the available source profiles.
type UnifiedProfile struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	GitHub   *GitHubProfile   `json:"github,omitempty"`
	LinkedIn *LinkedInProfile `json:"linkedin,omitempty"`

	PrimaryName      *string  `json:"primaryName"`
	PrimaryLocation  *string  `json:"primaryLocation"`
	PrimaryTitle     *string  `json:"primaryTitle"`
	PrimaryCompany   *string  `json:"primaryCompany"`
	NormalizedSkills []string `json:"normalizedSkills"`
}
