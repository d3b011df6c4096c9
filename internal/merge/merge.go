// Package merge combines the per-source profiles into one UnifiedProfile.
//
// FIELD PRIORITY:
//
//	name, location → LinkedIn, else GitHub
//	title          → LinkedIn currentRole, else LinkedIn headline
//	company        → LinkedIn only
//
// GitHub has no title or company concept, so it never fills those.
package merge

import (
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sakif/portfolio-forge/internal/model"
)

// Merge builds a UnifiedProfile from src. Content depends only on src; every
// call gets a fresh id and a fresh createdAt/updatedAt pair.
func Merge(src model.Sources) model.UnifiedProfile {
	return merge(src, uuid.NewString(), time.Now().UTC())
}

func merge(src model.Sources, id string, now time.Time) model.UnifiedProfile {
	u := model.UnifiedProfile{
		ID:               id,
		CreatedAt:        now,
		UpdatedAt:        now,
		NormalizedSkills: NormalizeSkills(src),
	}

	gh, _ := src.GitHub()
	li, _ := src.LinkedIn()

	switch src.Kind() {
	case model.SourcesBoth:
		u.GitHub, u.LinkedIn = gh, li
		u.PrimaryName = firstNonEmpty(li.Name, gh.Name)
		u.PrimaryLocation = firstNonEmpty(li.Location, gh.Location)
		u.PrimaryTitle = firstNonEmpty(li.CurrentRole, li.Headline)
		u.PrimaryCompany = firstNonEmpty(li.CurrentCompany)
	case model.SourcesLinkedInOnly:
		u.LinkedIn = li
		u.PrimaryName = firstNonEmpty(li.Name)
		u.PrimaryLocation = firstNonEmpty(li.Location)
		u.PrimaryTitle = firstNonEmpty(li.CurrentRole, li.Headline)
		u.PrimaryCompany = firstNonEmpty(li.CurrentCompany)
	case model.SourcesGitHubOnly:
		u.GitHub = gh
		u.PrimaryName = firstNonEmpty(gh.Name)
		u.PrimaryLocation = firstNonEmpty(gh.Location)
	case model.SourcesNone:
		// nothing to resolve
	}
	return u
}

// NormalizeSkills unions LinkedIn skills, GitHub language keys and the
// topics of the top-starred repositories, case-folds and trims them, title
// cases each word and returns the distinct results sorted.
//
//	["Rust", "rust ", "RUST"]  → ["Rust"]
//	["machine-learning"]       → ["Machine Learning"]
func NormalizeSkills(src model.Sources) []string {
	var raw []string
	if li, ok := src.LinkedIn(); ok {
		raw = append(raw, li.Skills...)
	}
	if gh, ok := src.GitHub(); ok {
		for lang := range gh.Languages {
			raw = append(raw, lang)
		}
		for _, r := range gh.TopReposByStars {
			raw = append(raw, r.Topics...)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	skills := make([]string, 0, len(raw))
	for _, s := range raw {
		// Delimiter-only input such as "-" title-cases to "".
		titled := titleCase(strings.ToLower(s))
		if titled == "" {
			continue
		}
		if _, dup := seen[titled]; dup {
			continue
		}
		seen[titled] = struct{}{}
		skills = append(skills, titled)
	}
	slices.Sort(skills)
	return skills
}

// titleCase upper-cases the first letter of every space- or hyphen-delimited
// word and joins the words with a single space.
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func firstNonEmpty(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil && strings.TrimSpace(*c) != "" {
			v := *c
			return &v
		}
	}
	return nil
}
