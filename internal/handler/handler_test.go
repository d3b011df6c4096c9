package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/handler"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/service"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func post(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

// =========================================================================
// GENERATE
// =========================================================================

type mockGenerator struct {
	tags       service.TagResult
	profile    *model.GeneratedProfile
	err        error
	capturedIn model.GenerateInput
}

func (m *mockGenerator) AnalyzeTags(_ context.Context, _ string) service.TagResult {
	return m.tags
}

func (m *mockGenerator) GenerateProfile(_ context.Context, in model.GenerateInput) (*model.GeneratedProfile, error) {
	m.capturedIn = in
	return m.profile, m.err
}

func TestGenerateHandler_HandleAnalyze(t *testing.T) {
	t.Run("returns tags", func(t *testing.T) {
		h := handler.NewGenerateHandler(&mockGenerator{tags: service.TagResult{Tags: []string{"Go"}}}, logger)
		rr := httptest.NewRecorder()

		h.HandleAnalyze(rr, post("/api/analyze", `{"text":"Go"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"tags":["Go"]}`, rr.Body.String())
	})

	t.Run("labels fallback", func(t *testing.T) {
		h := handler.NewGenerateHandler(&mockGenerator{tags: service.TagResult{Tags: service.FallbackTags, Fallback: true}}, logger)
		rr := httptest.NewRecorder()

		h.HandleAnalyze(rr, post("/api/analyze", `{"text":"x"}`))

		assert.JSONEq(t, `{"tags":["Strategy","Leadership","Development"],"fallback":true}`, rr.Body.String())
	})

	t.Run("missing text", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"text":""}`, `{"text":"  \n "}`} {
			gen := &mockGenerator{}
			h := handler.NewGenerateHandler(gen, logger)
			rr := httptest.NewRecorder()

			h.HandleAnalyze(rr, post("/api/analyze", body))

			assert.Equal(t, http.StatusBadRequest, rr.Code, body)
			assert.JSONEq(t, `{"error":"validation_error","message":"Text content is required"}`, rr.Body.String())
		}
	})

	t.Run("invalid request body", func(t *testing.T) {
		h := handler.NewGenerateHandler(&mockGenerator{}, logger)
		rr := httptest.NewRecorder()

		h.HandleAnalyze(rr, post("/api/analyze", `{"text":`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_request", decode[handler.ErrorResponse](t, rr).Error)
	})
}

func TestGenerateHandler_HandleGenerate(t *testing.T) {
	profile := &model.GeneratedProfile{ID: "p1", Name: "Jane", Skills: []string{"Go"}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"success", nil, http.StatusOK, ""},
		{"validation", apperror.ValidationFailed("input", "Name, role, and background text are required"), http.StatusBadRequest, "validation_error"},
		{"no credential", apperror.MissingCredential("AI service"), http.StatusServiceUnavailable, "configuration_error"},
		{"incomplete", apperror.Incomplete("No valid projects generated"), http.StatusInternalServerError, "incomplete_content"},
		{"exhausted", apperror.Exhausted("Profile generation", 3, errors.New("boom")), http.StatusInternalServerError, "ai_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{profile: profile, err: tt.err}
			h := handler.NewGenerateHandler(gen, logger)
			rr := httptest.NewRecorder()

			h.HandleGenerate(rr, post("/api/generate", `{"name":"Jane","role":"SRE","rawText":"...","githubUrl":"jane"}`))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "jane", gen.capturedIn.GitHubURL)
			if tt.err == nil {
				assert.Equal(t, "p1", decode[model.GeneratedProfile](t, rr).ID)
				return
			}
			assert.Equal(t, tt.wantType, decode[handler.ErrorResponse](t, rr).Error)
		})
	}
}

func TestWriteError_HidesUnknownErrors(t *testing.T) {
	gen := &mockGenerator{err: errors.New("sql: database is locked at /var/lib/x.db")}
	h := handler.NewGenerateHandler(gen, logger)
	rr := httptest.NewRecorder()

	h.HandleGenerate(rr, post("/api/generate", `{}`))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "database is locked")
	assert.Equal(t, "An internal error occurred", decode[handler.ErrorResponse](t, rr).Message)
}

// =========================================================================
// INGEST
// =========================================================================

type mockIngester struct {
	github   *model.GitHubProfile
	linkedin *model.LinkedInProfile
	unified  model.UnifiedProfile
	err      error

	gotURL  string
	gotText string
	gotReq  service.UnifiedRequest
}

func (m *mockIngester) GitHub(_ context.Context, url string) (*model.GitHubProfile, error) {
	m.gotURL = url
	return m.github, m.err
}

func (m *mockIngester) LinkedIn(_ context.Context, url, text string) (*model.LinkedInProfile, error) {
	m.gotURL, m.gotText = url, text
	return m.linkedin, m.err
}

func (m *mockIngester) Unified(_ context.Context, req service.UnifiedRequest) (model.UnifiedProfile, error) {
	m.gotReq = req
	return m.unified, m.err
}

func TestIngestHandler_HandleGitHub(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ing := &mockIngester{github: &model.GitHubProfile{Username: "alice", Languages: map[string]model.LanguageStat{}}}
		h := handler.NewIngestHandler(ing, logger)
		rr := httptest.NewRecorder()

		h.HandleGitHub(rr, post("/api/ingest/github", `{"url":"https://github.com/alice"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "https://github.com/alice", ing.gotURL)
		assert.Equal(t, "alice", decode[model.GitHubProfile](t, rr).Username)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"bad username", apperror.ValidationFailed("url", "Invalid GitHub URL or username"), http.StatusBadRequest},
		{"unknown user", apperror.NotFound("GitHub user", "ghost"), http.StatusNotFound},
		{"rate limited upstream", apperror.Upstream("github", http.StatusForbidden, "Failed to fetch GitHub user data"), http.StatusForbidden},
		{"upstream without status", apperror.Upstream("github", 0, "Failed to fetch GitHub repositories"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewIngestHandler(&mockIngester{err: tt.err}, logger)
			rr := httptest.NewRecorder()

			h.HandleGitHub(rr, post("/api/ingest/github", `{"url":"x"}`))

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestIngestHandler_HandleLinkedIn(t *testing.T) {
	ing := &mockIngester{linkedin: &model.LinkedInProfile{URL: "https://linkedin.com/in/jane"}}
	h := handler.NewIngestHandler(ing, logger)
	rr := httptest.NewRecorder()

	h.HandleLinkedIn(rr, post("/api/ingest/linkedin", `{"url":"https://linkedin.com/in/jane","text":"Jane Doe"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Jane Doe", ing.gotText)
	assert.JSONEq(t, `{
		"url": "https://linkedin.com/in/jane",
		"name": null, "headline": null, "currentRole": null, "currentCompany": null, "location": null,
		"education": null, "skills": null, "posts": null
	}`, rr.Body.String())
}

func TestIngestHandler_HandleUnified(t *testing.T) {
	t.Run("passes data through", func(t *testing.T) {
		ing := &mockIngester{unified: model.UnifiedProfile{ID: "u1", NormalizedSkills: []string{"Go"}}}
		h := handler.NewIngestHandler(ing, logger)
		rr := httptest.NewRecorder()

		h.HandleUnified(rr, post("/api/ingest/unified", `{"githubData":{"username":"alice"},"linkedinUrl":"https://linkedin.com/in/a"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, ing.gotReq.GitHubData)
		assert.Equal(t, "alice", ing.gotReq.GitHubData.Username)
		assert.Nil(t, ing.gotReq.LinkedInData)
		assert.Equal(t, "https://linkedin.com/in/a", ing.gotReq.LinkedInURL)
		assert.Equal(t, "u1", decode[model.UnifiedProfile](t, rr).ID)
	})

	t.Run("nothing provided", func(t *testing.T) {
		err := apperror.ValidationFailed("request", "Either provide (githubData + linkedinData) or (githubUrl and/or linkedinUrl)")
		h := handler.NewIngestHandler(&mockIngester{err: err}, logger)
		rr := httptest.NewRecorder()

		h.HandleUnified(rr, post("/api/ingest/unified", `{}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decode[handler.ErrorResponse](t, rr).Message, "Either provide")
	})
}

// =========================================================================
// SHARE
// =========================================================================

type mockSharer struct {
	result  *service.ShareResult
	profile *model.GeneratedProfile
	err     error
	gotID   string
	created model.GeneratedProfile
}

func (m *mockSharer) Create(_ context.Context, p model.GeneratedProfile) (*service.ShareResult, error) {
	m.created = p
	return m.result, m.err
}

func (m *mockSharer) Get(_ context.Context, id string) (*model.GeneratedProfile, error) {
	m.gotID = id
	return m.profile, m.err
}

func TestShareHandler_HandleCreate(t *testing.T) {
	expires := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		sh := &mockSharer{result: &service.ShareResult{ShareID: "aB3dE5fG", ShareURL: "http://localhost:8080/share/aB3dE5fG", ExpiresAt: expires}}
		h := handler.NewShareHandler(sh, logger)
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, post("/api/share", `{"id":"p1","name":"Jane"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Jane", sh.created.Name)
		assert.JSONEq(t, `{
			"success": true,
			"shareId": "aB3dE5fG",
			"shareUrl": "http://localhost:8080/share/aB3dE5fG",
			"expiresAt": "2025-07-01T00:00:00Z"
		}`, rr.Body.String())
	})

	t.Run("bad body", func(t *testing.T) {
		h := handler.NewShareHandler(&mockSharer{}, logger)
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, post("/api/share", `not json`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid portfolio data"}`, rr.Body.String())
	})

	t.Run("store failure hides detail", func(t *testing.T) {
		h := handler.NewShareHandler(&mockSharer{err: errors.New("redis: connection refused")}, logger)
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, post("/api/share", `{}`))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"success":false,"error":"Failed to share portfolio"}`, rr.Body.String())
	})
}

func TestShareHandler_HandleGet(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		sharer     *mockSharer
		wantStatus int
		wantBody   string
	}{
		{
			name:       "found",
			query:      "?id=aB3dE5fG",
			sharer:     &mockSharer{profile: &model.GeneratedProfile{ID: "p1", Name: "Jane"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing id",
			query:      "",
			sharer:     &mockSharer{err: apperror.ValidationFailed("id", "Share ID is required")},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"error":"Share ID is required"}`,
		},
		{
			name:       "unknown id",
			query:      "?id=zzzzzzzz",
			sharer:     &mockSharer{err: apperror.NotFound("share", "zzzzzzzz")},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"success":false,"error":"Portfolio not found"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewShareHandler(tt.sharer, logger)
			rr := httptest.NewRecorder()

			h.HandleGet(rr, httptest.NewRequest(http.MethodGet, "/api/share"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
				return
			}
			assert.Equal(t, "aB3dE5fG", tt.sharer.gotID)
			body := decode[struct {
				Success bool                   `json:"success"`
				Profile model.GeneratedProfile `json:"profile"`
			}](t, rr)
			assert.True(t, body.Success)
			assert.Equal(t, "Jane", body.Profile.Name)
		})
	}
}

// =========================================================================
// CHAT
// =========================================================================

type mockReplier struct {
	history []model.ChatMessage
	message string
}

func (m *mockReplier) Reply(_ context.Context, _ model.GeneratedProfile, history []model.ChatMessage, message string) string {
	m.history, m.message = history, message
	return "Happy to help."
}

func TestChatHandler_HandleChat(t *testing.T) {
	rep := &mockReplier{}
	h := handler.NewChatHandler(rep, logger)
	rr := httptest.NewRecorder()

	h.HandleChat(rr, post("/api/chat", `{
		"profile": {"name": "Jane"},
		"history": [{"role": "user", "text": "hi"}, {"role": "model", "text": "hello"}],
		"message": "What does Jane do?"
	}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"reply":"Happy to help."}`, rr.Body.String())
	assert.Equal(t, "What does Jane do?", rep.message)
	assert.Equal(t, []model.ChatMessage{{Role: "user", Text: "hi"}, {Role: "model", Text: "hello"}}, rep.history)

	rr = httptest.NewRecorder()
	h.HandleChat(rr, post("/api/chat", `[`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =========================================================================
// FEEDBACK
// =========================================================================

type mockInbox struct {
	fb        *model.Feedback
	items     []model.Feedback
	err       error
	gotLimit  int
	gotOffset int
	gotID     string
	gotOwner  string
}

func (m *mockInbox) Submit(_ context.Context, name, email, message string) (*model.Feedback, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &model.Feedback{ID: "f1", Name: name, Email: email, Message: message, Category: "Praise", Sentiment: "Positive"}, nil
}

func (m *mockInbox) List(_ context.Context, limit, offset int) ([]model.Feedback, error) {
	m.gotLimit, m.gotOffset = limit, offset
	return m.items, m.err
}

func (m *mockInbox) Get(_ context.Context, id string) (*model.Feedback, error) {
	m.gotID = id
	return m.fb, m.err
}

func (m *mockInbox) DraftReply(_ context.Context, id, ownerName string) (*model.Feedback, error) {
	m.gotID, m.gotOwner = id, ownerName
	return m.fb, m.err
}

func TestFeedbackHandler_HandleSubmit(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h := handler.NewFeedbackHandler(&mockInbox{}, logger)
		rr := httptest.NewRecorder()

		h.HandleSubmit(rr, post("/api/feedback", `{"name":"Sam","email":"s@example.com","message":"Great work"}`))

		assert.Equal(t, http.StatusCreated, rr.Code)
		got := decode[model.Feedback](t, rr)
		assert.Equal(t, "f1", got.ID)
		assert.Equal(t, "Great work", got.Message)
		assert.NotContains(t, rr.Body.String(), "aiResponseDraft", "no draft yet")
	})

	t.Run("validation", func(t *testing.T) {
		h := handler.NewFeedbackHandler(&mockInbox{err: apperror.ValidationFailed("message", "message is required")}, logger)
		rr := httptest.NewRecorder()

		h.HandleSubmit(rr, post("/api/feedback", `{"message":""}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFeedbackHandler_HandleList(t *testing.T) {
	inbox := &mockInbox{items: []model.Feedback{{ID: "b"}, {ID: "a"}}}
	h := handler.NewFeedbackHandler(inbox, logger)
	rr := httptest.NewRecorder()

	h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/feedback?limit=5&offset=abc", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, inbox.gotLimit)
	assert.Equal(t, 0, inbox.gotOffset, "garbage offset falls back to 0")
	assert.Len(t, decode[[]model.Feedback](t, rr), 2)
}

func TestFeedbackHandler_HandleGet(t *testing.T) {
	h := handler.NewFeedbackHandler(&mockInbox{err: apperror.NotFound("feedback", "nope")}, logger)
	rr := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/nope", nil)
	req.SetPathValue("id", "nope")
	h.HandleGet(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rr).Error)
}

func TestFeedbackHandler_HandleDraftReply(t *testing.T) {
	draft := "Thanks Sam!"

	t.Run("with owner name", func(t *testing.T) {
		inbox := &mockInbox{fb: &model.Feedback{ID: "f1", AIResponseDraft: &draft}}
		h := handler.NewFeedbackHandler(inbox, logger)
		rr := httptest.NewRecorder()

		req := post("/api/feedback/f1/reply", `{"ownerName":"Jane"}`)
		req.SetPathValue("id", "f1")
		h.HandleDraftReply(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "f1", inbox.gotID)
		assert.Equal(t, "Jane", inbox.gotOwner)
		assert.Equal(t, "Thanks Sam!", *decode[model.Feedback](t, rr).AIResponseDraft)
	})

	t.Run("empty body", func(t *testing.T) {
		inbox := &mockInbox{fb: &model.Feedback{ID: "f1"}}
		h := handler.NewFeedbackHandler(inbox, logger)
		rr := httptest.NewRecorder()

		req := httptest.NewRequest(http.MethodPost, "/api/feedback/f1/reply", nil)
		req.SetPathValue("id", "f1")
		h.HandleDraftReply(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, inbox.gotOwner)
	})
}

// =========================================================================
// HEALTH
// =========================================================================

type pinger struct{ err error }

func (p pinger) Ping() error { return p.err }

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	handler.NewHealthHandler(pinger{}, logger).HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	handler.NewHealthHandler(pinger{err: errors.New("disk I/O error")}, logger).HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	h := handler.NewGenerateHandler(&mockGenerator{}, logger)
	rr := httptest.NewRecorder()

	huge := `{"text":"` + strings.Repeat("a", 3<<20) + `"}`
	h.HandleAnalyze(rr, post("/api/analyze", huge))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
