// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Adapters / Repository    → the AI model, GitHub, the share store, SQLite
//
// Services accept plain Go values and return domain errors (apperror), never
// HTTP status codes. The handler package translates one into the other.
//
// DEPENDENCY INJECTION:
// Every service takes its collaborators as interfaces (ai.Model,
// repository.ShareStore, ...). main.go decides which implementation to use;
// the tests pass scripted fakes.
//
// AI CALLS:
// Every call to a generative model goes through the same pipeline:
//
//	validate input → credential check → truncated prompt with the output
//	schema → retry.Do (per-operation timeout tier) → extract.Validated →
//	post-processing (trim, drop malformed entries, cap lengths, coerce enums)
//
// A response that does not parse or does not match the schema counts as a
// failed attempt and is retried like a network error.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sakif/portfolio-forge/internal/ai"
	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/extract"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/retry"
)

// Limits applied to model input and output.
const (
	MaxKeywords      = 10
	MaxKeywordLength = 50
	MaxSkills        = 12
	MaxProjects      = 5
	MaxTechnologies  = 10
	MaxReplyWords    = 100
	MaxReplyChars    = 1000

	tagInputLimit      = 5000
	profileInputLimit  = 10000
	classifyInputLimit = 2000
	linkedInInputLimit = 15000
)

// FallbackTags is returned by AnalyzeTags when the model cannot be reached.
var FallbackTags = []string{"Strategy", "Leadership", "Development"}

// Canned reply drafts.
const (
	replyEmptyMessage = "Thank you for reaching out. I appreciate your interest."
	replyUnavailable  = "Thank you for your message. I appreciate your feedback and will get back to you soon."
	replyFailed       = "Thank you for reaching out. I appreciate your feedback and will get back to you soon."
)

// errUnusable marks a model response that parsed as nothing useful. It is
// not an apperror sentinel, so retry treats it as transient.
var errUnusable = errors.New("model response was empty or did not match the expected shape")

// aiService names the credential in configuration errors.
const aiService = "AI service"

// GenerationService wraps every structured call to the generative model.
//
// A nil model means no credential is configured: operations with a safe
// default return it, the others fail with apperror.ErrConfiguration.
type GenerationService struct {
	model  ai.Model
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	// tune adjusts each call's policy; tests use it to shorten backoff.
	tune func(retry.Policy) retry.Policy
}

func NewGenerationService(m ai.Model, logger *slog.Logger) *GenerationService {
	return &GenerationService{
		model:  m,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		tune:   func(p retry.Policy) retry.Policy { return p },
	}
}

// generateJSON runs one model request under policy p and decodes the reply
// into a T that conforms to schema.
func generateJSON[T any](ctx context.Context, s *GenerationService, op string, p retry.Policy, req ai.Request, schema *extract.Schema) (*T, error) {
	return retry.Do(ctx, s.logger, op, s.tune(p), func(ctx context.Context) (*T, error) {
		text, err := s.model.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		out := extract.Validated[*T](s.logger, text, schema, nil)
		if out == nil {
			return nil, errUnusable
		}
		return out, nil
	})
}

// =========================================================================
// TAGS
// =========================================================================

// TagResult is the keyword list for a block of text. Fallback is set when
// the list is the canned default rather than model output.
type TagResult struct {
	Tags     []string `json:"tags"`
	Fallback bool     `json:"fallback,omitempty"`
}

var tagsSchema = extract.MustSchema(`{
  "type": "object",
  "properties": {
    "keywords": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["keywords"]
}`)

type tagsPayload struct {
	Keywords []string `json:"keywords"`
}

// AnalyzeTags extracts up to MaxKeywords technical keywords from text.
// It never fails: a missing credential or exhausted retries yield
// FallbackTags.
func (s *GenerationService) AnalyzeTags(ctx context.Context, text string) TagResult {
	if strings.TrimSpace(text) == "" {
		return TagResult{Tags: []string{}}
	}
	if s.model == nil {
		s.logger.Warn("AI credential missing, returning fallback tags")
		return TagResult{Tags: slices.Clone(FallbackTags), Fallback: true}
	}

	prompt := fmt.Sprintf(`Extract the top %d technical skills, tools, or frameworks from this text.

Prioritize:
1. Specific, modern, hard skills (e.g. "Next.js", "Kubernetes", "Figma", "Rust")
2. Technical frameworks and libraries
3. Programming languages
4. Professional tools and platforms

Avoid generic terms (e.g. "Development", "Leadership", "Teamwork"), soft skills and vague descriptions.

Return ONLY valid JSON matching this schema:
%s

Text:
"""%s"""`, MaxKeywords, tagsSchema, truncate(text, tagInputLimit))

	out, err := generateJSON[tagsPayload](ctx, s, "Fast keyword analysis", retry.Fast(),
		ai.Request{Prompt: prompt, MaxTokens: 256}, tagsSchema)
	if err != nil {
		s.logger.Error("keyword analysis failed, returning fallback tags", slog.String("error", err.Error()))
		return TagResult{Tags: slices.Clone(FallbackTags), Fallback: true}
	}

	tags := make([]string, 0, MaxKeywords)
	for _, k := range out.Keywords {
		k = strings.TrimSpace(k)
		if n := utf8.RuneCountInString(k); n == 0 || n >= MaxKeywordLength {
			continue
		}
		tags = append(tags, k)
		if len(tags) == MaxKeywords {
			break
		}
	}
	return TagResult{Tags: tags}
}

// =========================================================================
// FULL PROFILE
// =========================================================================

var profileSchema = extract.MustSchema(`{
  "type": "object",
  "properties": {
    "bio": {"type": "string", "description": "2-3 sentence professional bio"},
    "skills": {"type": "array", "items": {"type": "string"}, "description": "8-12 technical skills and tools"},
    "projects": {
      "type": "array",
      "description": "3-5 notable projects",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string", "description": "2-3 sentences focusing on impact and results"},
          "technologies": {"type": "array", "items": {"type": "string"}},
          "link": {"type": "string", "description": "placeholder link such as #project-name"}
        }
      }
    }
  },
  "required": ["bio", "skills", "projects"]
}`)

type profilePayload struct {
	Bio      string   `json:"bio"`
	Skills   []string `json:"skills"`
	Projects []struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Technologies []string `json:"technologies"`
		Link         string   `json:"link"`
	} `json:"projects"`
}

const profileSystem = `You are a professional luxury brand copywriter specializing in portfolio content.

Brand voice:
- Minimalist, confident, sophisticated
- Strong action verbs, concrete achievements
- Clear and direct language
- Avoid "passionate", "ninja", "guru", "rockstar" and other buzzwords
- Focus on impact and results

Create authentic, compelling content that showcases expertise without overselling.`

// GenerateProfile writes a full portfolio for in.
//
// Name, role and background text are required. A response without a bio,
// skills or at least one complete project fails with
// apperror.ErrIncomplete; that check runs after the retry loop, so an
// incomplete answer is not retried.
func (s *GenerationService) GenerateProfile(ctx context.Context, in model.GenerateInput) (*model.GeneratedProfile, error) {
	name := strings.TrimSpace(in.Name)
	role := strings.TrimSpace(in.Role)
	if name == "" || role == "" || strings.TrimSpace(in.RawText) == "" {
		return nil, apperror.ValidationFailed("input", "Name, role, and background text are required")
	}
	if s.model == nil {
		return nil, apperror.MissingCredential(aiService)
	}

	linkedInURL := strings.TrimSpace(in.LinkedInURL)
	gitHubURL := strings.TrimSpace(in.GitHubURL)

	prompt := fmt.Sprintf(`Create a structured portfolio for:

Name: %s
Role: %s

Background information:
"""%s"""

The user has provided these links (context only, do not scrape):
LinkedIn: %s
GitHub: %s

Generate:
1. A concise bio (2-3 sentences) highlighting key expertise and unique value
2. Top 8-12 relevant skills (specific technologies, tools, methodologies)
3. 3-5 notable projects with clear descriptions and tech stacks, inferred from the background information

Return ONLY valid JSON matching this schema:
%s`, name, role, truncate(in.RawText, profileInputLimit),
		orDefault(linkedInURL, "Not provided"), orDefault(gitHubURL, "Not provided"), profileSchema)

	out, err := generateJSON[profilePayload](ctx, s, "Profile generation", retry.Extended(),
		ai.Request{System: profileSystem, Prompt: prompt}, profileSchema)
	if err != nil {
		return nil, fmt.Errorf("generating profile: %w", err)
	}

	bio := strings.TrimSpace(out.Bio)
	skills := cleanList(out.Skills, MaxSkills)
	if bio == "" || len(skills) == 0 || out.Projects == nil {
		return nil, apperror.Incomplete("Incomplete profile data received from AI")
	}

	projects := make([]model.Project, 0, MaxProjects)
	for _, p := range out.Projects {
		title, desc := strings.TrimSpace(p.Title), strings.TrimSpace(p.Description)
		if title == "" || desc == "" {
			continue
		}
		projects = append(projects, model.Project{
			Title:        title,
			Description:  desc,
			Technologies: cleanList(p.Technologies, MaxTechnologies),
			Link:         orDefault(strings.TrimSpace(p.Link), "#"),
		})
		if len(projects) == MaxProjects {
			break
		}
	}
	if len(projects) == 0 {
		return nil, apperror.Incomplete("No valid projects generated")
	}

	profile := &model.GeneratedProfile{
		ID:          s.newID(),
		Name:        name,
		Title:       role,
		Bio:         bio,
		Skills:      skills,
		Projects:    projects,
		GitHubURL:   gitHubURL,
		LinkedInURL: linkedInURL,
		GeneratedAt: s.now(),
	}

	s.logger.Info("profile generated",
		slog.String("id", profile.ID),
		slog.Int("skills", len(profile.Skills)),
		slog.Int("projects", len(profile.Projects)),
	)
	return profile, nil
}

// =========================================================================
// FEEDBACK
// =========================================================================

var validCategories = []string{
	model.CategoryWorkOpportunity,
	model.CategoryPraise,
	model.CategoryQuestion,
	model.CategoryBugReport,
	model.CategoryOther,
}

var validSentiments = []string{model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative}

var classificationSchema = extract.MustSchema(`{
  "type": "object",
  "properties": {
    "category": {"type": "string", "enum": ["Work Opportunity", "Praise", "Question", "Bug Report", "Other"]},
    "sentiment": {"type": "string", "enum": ["Positive", "Neutral", "Negative"]}
  }
}`)

// ClassifyFeedback labels a visitor message. It never fails; see the
// Category and Sentiment constants in package model for the value sets.
func (s *GenerationService) ClassifyFeedback(ctx context.Context, text string) model.Classification {
	if strings.TrimSpace(text) == "" {
		return model.Classification{Category: model.CategoryOther, Sentiment: model.SentimentNeutral}
	}
	unavailable := model.Classification{Category: model.CategoryUncategorized, Sentiment: model.SentimentNeutral}
	if s.model == nil {
		return unavailable
	}

	prompt := fmt.Sprintf(`Analyze the following feedback message for a professional portfolio.

Classify it into ONE category:
- "Work Opportunity": job offers, collaboration requests, project proposals
- "Praise": compliments, positive feedback, appreciation
- "Question": inquiries about experience, skills, or availability
- "Bug Report": technical issues, errors, or problems with the site
- "Other": anything else

Determine sentiment:
- "Positive": encouraging, complimentary, enthusiastic
- "Neutral": factual, informational, neither positive nor negative
- "Negative": critical, complaining, disappointed

Return ONLY valid JSON matching this schema:
%s

Message:
"""%s"""`, classificationSchema, truncate(text, classifyInputLimit))

	// The enum is advisory: a loose match is still coerced below, so the
	// reply is only checked for being a JSON object.
	out, err := retry.Do(ctx, s.logger, "Feedback analysis", s.tune(retry.Fast()), func(ctx context.Context) (*model.Classification, error) {
		reply, err := s.model.Generate(ctx, ai.Request{Prompt: prompt, MaxTokens: 128})
		if err != nil {
			return nil, err
		}
		c := extract.JSON[*model.Classification](s.logger, reply, nil)
		if c == nil {
			return nil, errUnusable
		}
		return c, nil
	})
	if err != nil {
		s.logger.Error("feedback analysis failed", slog.String("error", err.Error()))
		return unavailable
	}

	return model.Classification{
		Category:  coerce(out.Category, validCategories, model.CategoryOther),
		Sentiment: coerce(out.Sentiment, validSentiments, model.SentimentNeutral),
	}
}

// DraftReply writes an email reply to fb in ownerName's voice. It never
// fails; the canned drafts cover an empty message, a missing credential and
// exhausted retries.
func (s *GenerationService) DraftReply(ctx context.Context, fb model.Feedback, ownerName string) string {
	if strings.TrimSpace(fb.Message) == "" {
		return replyEmptyMessage
	}
	if s.model == nil {
		return replyUnavailable
	}

	prompt := fmt.Sprintf(`You are %s, responding to feedback on your professional portfolio.

Sender: %s
Email: %s
Category: %s
Sentiment: %s

Message:
"""%s"""

Draft a professional, concise, and warm email reply.

Guidelines:
- Be authentic and personable, not robotic
- Keep it under %d words
- Match the tone to the sentiment (enthusiastic for positive, professional for neutral)
- Include a clear next step or call to action if appropriate
- Sign off naturally

Write ONLY the email body, no subject line.`,
		orDefault(strings.TrimSpace(ownerName), "the portfolio owner"),
		orDefault(fb.Name, "Unknown"),
		orDefault(fb.Email, "Not provided"),
		orDefault(fb.Category, "General"),
		orDefault(fb.Sentiment, model.SentimentNeutral),
		fb.Message, MaxReplyWords)

	reply, err := retry.Do(ctx, s.logger, "Reply draft generation", s.tune(retry.Standard()), func(ctx context.Context) (string, error) {
		return s.model.Generate(ctx, ai.Request{Prompt: prompt, MaxTokens: 512})
	})
	if err != nil {
		s.logger.Error("reply drafting failed", slog.String("error", err.Error()))
		return replyFailed
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return replyUnavailable
	}
	return capAtWord(reply, MaxReplyChars)
}

// =========================================================================
// LINKEDIN
// =========================================================================

var linkedInSchema = extract.MustSchema(`{
  "type": "object",
  "properties": {
    "name": {"type": ["string", "null"]},
    "headline": {"type": ["string", "null"]},
    "currentRole": {"type": ["string", "null"]},
    "currentCompany": {"type": ["string", "null"]},
    "location": {"type": ["string", "null"]},
    "education": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "institution": {"type": ["string", "null"]},
          "degree": {"type": ["string", "null"]},
          "fieldOfStudy": {"type": ["string", "null"]},
          "startYear": {"type": ["integer", "null"]},
          "endYear": {"type": ["integer", "null"]}
        }
      }
    },
    "skills": {"type": ["array", "null"], "items": {"type": "string"}},
    "posts": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": ["string", "null"]},
          "contentSnippet": {"type": ["string", "null"]},
          "url": {"type": ["string", "null"]},
          "createdAt": {"type": ["string", "null"], "description": "ISO date if available"}
        }
      }
    }
  }
}`)

type linkedInPayload struct {
	Name           *string `json:"name"`
	Headline       *string `json:"headline"`
	CurrentRole    *string `json:"currentRole"`
	CurrentCompany *string `json:"currentCompany"`
	Location       *string `json:"location"`
	Education      []struct {
		Institution  *string `json:"institution"`
		Degree       *string `json:"degree"`
		FieldOfStudy *string `json:"fieldOfStudy"`
		StartYear    *int    `json:"startYear"`
		EndYear      *int    `json:"endYear"`
	} `json:"education"`
	Skills []string `json:"skills"`
	Posts  []struct {
		Title          *string `json:"title"`
		ContentSnippet *string `json:"contentSnippet"`
		URL            *string `json:"url"`
		CreatedAt      *string `json:"createdAt"`
	} `json:"posts"`
}

const linkedInSystem = `You are a professional data extraction assistant specializing in parsing LinkedIn profile content.

Extract structured information from copy-pasted LinkedIn profile text.
Be precise and only extract information that is explicitly present.
If a field is not found, use null or an empty array as appropriate.`

// ParseLinkedIn extracts a LinkedInProfile from pasted profile text. An
// empty text asks the model to work from the URL alone. Fields the text
// does not state stay nil.
func (s *GenerationService) ParseLinkedIn(ctx context.Context, profileURL, text string) (*model.LinkedInProfile, error) {
	if text != "" && strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed("text", "LinkedIn text content is required")
	}
	if s.model == nil {
		return nil, apperror.MissingCredential(aiService)
	}

	source := "No profile text provided - extract information from the URL context only."
	if text != "" {
		source = fmt.Sprintf("Profile text:\n\"\"\"%s\"\"\"", truncate(text, linkedInInputLimit))
	}

	prompt := fmt.Sprintf(`Parse the following LinkedIn profile information and extract structured data.

LinkedIn URL: %s

%s

Extract:
1. Basic info: name, headline, current role/company, location
2. Education: institution, degree, field of study, years (if available)
3. Skills: list of professional skills mentioned
4. Recent posts: any post content snippets with dates (if present)

Be accurate and only include information explicitly stated in the available text.

Return ONLY valid JSON matching this schema:
%s`, profileURL, source, linkedInSchema)

	out, err := generateJSON[linkedInPayload](ctx, s, "LinkedIn profile parsing", retry.Extended(),
		ai.Request{System: linkedInSystem, Prompt: prompt}, linkedInSchema)
	if err != nil {
		return nil, fmt.Errorf("parsing LinkedIn profile: %w", err)
	}

	profile := &model.LinkedInProfile{
		URL:            profileURL,
		Name:           nullable(out.Name),
		Headline:       nullable(out.Headline),
		CurrentRole:    nullable(out.CurrentRole),
		CurrentCompany: nullable(out.CurrentCompany),
		Location:       nullable(out.Location),
		Education:      []model.Education{},
		Skills:         cleanList(out.Skills, 0),
		Posts:          []model.Post{},
	}
	for _, e := range out.Education {
		inst := nullable(e.Institution)
		if inst == nil {
			continue
		}
		profile.Education = append(profile.Education, model.Education{
			Institution:  *inst,
			Degree:       nullable(e.Degree),
			FieldOfStudy: nullable(e.FieldOfStudy),
			StartYear:    e.StartYear,
			EndYear:      e.EndYear,
		})
	}
	for _, p := range out.Posts {
		snippet := nullable(p.ContentSnippet)
		if snippet == nil {
			continue
		}
		profile.Posts = append(profile.Posts, model.Post{
			Title:          nullable(p.Title),
			ContentSnippet: *snippet,
			URL:            nullable(p.URL),
			CreatedAt:      nullable(p.CreatedAt),
		})
	}
	return profile, nil
}

// =========================================================================
// HELPERS
// =========================================================================

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// cleanList trims items, drops empties and keeps at most limit (0 = all).
// The result is never nil.
func cleanList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// nullable trims *s and maps blank to nil.
func nullable(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// coerce returns the member of allowed equal (ignoring case) to v, or def.
func coerce(v string, allowed []string, def string) string {
	v = strings.TrimSpace(v)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	return def
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// capAtWord shortens s to at most n bytes, cutting at the last space.
func capAtWord(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	if i := strings.LastIndexAny(cut, " \n\t"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
