package ingest

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
)

// LinkedInParser turns unstructured profile text into a LinkedInProfile.
// service.GenerationService satisfies it.
type LinkedInParser interface {
	ParseLinkedIn(ctx context.Context, profileURL, text string) (*model.LinkedInProfile, error)
}

// htmlTagRe detects pasted page markup (as opposed to copied plain text).
var htmlTagRe = regexp.MustCompile(`(?i)<(html|body|div|section|span|p|ul|li|h[1-6]|br)[\s>/]`)

// LinkedIn is the LinkedIn adapter. There is no LinkedIn API call: the
// profile is extracted by the AI model from text the user pasted.
type LinkedIn struct {
	parser LinkedInParser
	logger *slog.Logger
}

func NewLinkedIn(parser LinkedInParser, logger *slog.Logger) *LinkedIn {
	return &LinkedIn{parser: parser, logger: logger}
}

// Fetch parses text for the profile at profileURL.
//
// An empty text means "not provided" and the model works from the URL alone;
// text that is present but only whitespace is rejected. Pasted HTML is
// converted to Markdown first so the model sees the content, not the markup.
func (l *LinkedIn) Fetch(ctx context.Context, profileURL, text string) (*model.LinkedInProfile, error) {
	profileURL = strings.TrimSpace(profileURL)
	if profileURL == "" {
		return nil, apperror.ValidationFailed("url", "LinkedIn URL is required")
	}
	if text != "" && strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed("text", "LinkedIn text content is required")
	}

	source := text
	if htmlTagRe.MatchString(text) {
		md, err := htmltomarkdown.ConvertString(text)
		if err != nil {
			l.logger.Warn("html to markdown conversion failed, using raw text",
				slog.String("error", err.Error()),
			)
		} else {
			source = md
		}
	}

	profile, err := l.parser.ParseLinkedIn(ctx, profileURL, source)
	if err != nil {
		return nil, err
	}

	profile.URL = profileURL
	profile.RawSource = &model.RawSource{Text: truncateRunes(text, model.RawSourceLimit)}
	return profile, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
