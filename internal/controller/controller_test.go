package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/internal/pkg/serverutils"
	"marketing-assistant-be/internal/service"
	"marketing-assistant-be/pkg/apperror"
	"marketing-assistant-be/pkg/scraper"
	"marketing-assistant-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	res *dto.ChatResponse
	err error
	got *dto.ChatRequest
}

func (f *fakeChatService) Chat(_ context.Context, _ string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	f.got = req
	return f.res, f.err
}

type fakeScrapeService struct {
	res *dto.ScrapeResponse
	err error
}

func (f *fakeScrapeService) Scrape(context.Context, *dto.ScrapeRequest) (*dto.ScrapeResponse, error) {
	return f.res, f.err
}

type fakeDocumentService struct {
	created *dto.CreateDocumentRequest
}

func (f *fakeDocumentService) Create(_ context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	f.created = req
	return &dto.CreateDocumentResponse{Id: "doc-1", Queued: req.Async}, nil
}

func (f *fakeDocumentService) Ingest(context.Context, dto.PublishIngestDocumentMessage) (*store.Document, error) {
	return nil, nil
}

func (f *fakeDocumentService) Search(context.Context, *dto.SearchDocumentsRequest) ([]*dto.DocumentResponse, error) {
	return []*dto.DocumentResponse{{Id: "doc-1", Content: "pricing"}}, nil
}

type fakeConversationService struct {
	service.IConversationService
	turns   *dto.SessionTurnsResponse
	deleted []uuid.UUID
}

func (f *fakeConversationService) GetTurns(context.Context, uuid.UUID, int) (*dto.SessionTurnsResponse, error) {
	return f.turns, nil
}

func (f *fakeConversationService) DeleteSession(_ context.Context, id uuid.UUID) (bool, error) {
	if f.turns == nil || f.turns.SessionId != id.String() {
		return false, nil
	}
	f.deleted = append(f.deleted, id)
	return true, nil
}

func newTestApp(controllers ...interface{ RegisterRoutes(r fiber.Router) }) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	for _, c := range controllers {
		c.RegisterRoutes(app)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestChatController(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *fakeChatService
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			body:       `{"message":"pricing?"}`,
			svc:        &fakeChatService{res: &dto.ChatResponse{Content: "From $450", Sources: []string{"Database documents"}}},
			wantStatus: 200,
			wantBody:   `"content":"From $450"`,
		},
		{
			name:       "orchestration error still 200",
			body:       `{"message":"pricing?"}`,
			svc:        &fakeChatService{res: &dto.ChatResponse{Content: "sorry", Error: "Orchestration error"}},
			wantStatus: 200,
			wantBody:   `"error":"Orchestration error"`,
		},
		{
			name:       "missing message",
			body:       `{}`,
			svc:        &fakeChatService{},
			wantStatus: 400,
			wantBody:   "message is required",
		},
		{
			name:       "malformed body",
			body:       `{"message":`,
			svc:        &fakeChatService{},
			wantStatus: 400,
		},
		{
			name:       "invalid session id",
			body:       `{"message":"hi","sessionId":"nope"}`,
			svc:        &fakeChatService{err: apperror.NewInputError("sessionId", "must be a valid UUID")},
			wantStatus: 400,
		},
		{
			name:       "unhandled failure",
			body:       `{"message":"hi"}`,
			svc:        &fakeChatService{err: errors.New("db down")},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(NewChatController(tt.svc))
			status, body := doJSON(t, app, "POST", "/chat", tt.body, nil)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantBody != "" {
				assert.Contains(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestScrapeController(t *testing.T) {
	page := &dto.ScrapeResponse{
		Url:      "https://example.com",
		Title:    "Example",
		Metadata: dto.ScrapeMetadata{ScrapeTimestamp: time.Now(), SourceType: "web_scrape"},
	}

	tests := []struct {
		name       string
		body       string
		svc        *fakeScrapeService
		wantStatus int
	}{
		{"success", `{"url":"example.com"}`, &fakeScrapeService{res: page}, 200},
		{"missing url", `{}`, &fakeScrapeService{}, 400},
		{"invalid url", `{"url":"nope"}`, &fakeScrapeService{err: apperror.NewInputError("url", "must be a valid URL")}, 400},
		{"nothing scraped", `{"url":"example.com"}`, &fakeScrapeService{err: service.ErrNothingScraped}, 422},
		{"scraper disabled", `{"url":"example.com"}`, &fakeScrapeService{err: scraper.ErrScraperDisabled}, 422},
		{"scrape failure", `{"url":"example.com"}`, &fakeScrapeService{err: errors.New("timeout")}, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(NewScrapeController(tt.svc))
			status, body := doJSON(t, app, "POST", "/webhook/scrape", tt.body, nil)
			assert.Equal(t, tt.wantStatus, status)

			if tt.wantStatus == 200 {
				var res map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &res))
				assert.Equal(t, "Example", res["title"])
				metadata := res["metadata"].(map[string]interface{})
				assert.Equal(t, "web_scrape", metadata["sourceType"])
			}
		})
	}
}

func TestDocumentController(t *testing.T) {
	const secret = "test-secret"
	svc := &fakeDocumentService{}
	app := newTestApp(NewDocumentController(svc, secret))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	auth := map[string]string{"Authorization": "Bearer " + token}

	status, _ := doJSON(t, app, "POST", "/documents", `{"content":"x"}`, nil)
	assert.Equal(t, 401, status)

	status, _ = doJSON(t, app, "POST", "/documents", `{"content":"pricing sheet"}`, auth)
	assert.Equal(t, 201, status)
	assert.Equal(t, "pricing sheet", svc.created.Content)

	status, _ = doJSON(t, app, "POST", "/documents", `{"content":"later","async":true}`, auth)
	assert.Equal(t, 202, status)

	status, _ = doJSON(t, app, "POST", "/documents", `{}`, auth)
	assert.Equal(t, 400, status)

	status, body := doJSON(t, app, "POST", "/documents/search", `{"query":"pricing"}`, auth)
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), `"doc-1"`)
}

func TestSessionController(t *testing.T) {
	id := uuid.New()
	found := &fakeConversationService{turns: &dto.SessionTurnsResponse{
		SessionId: id.String(),
		Turns:     []*dto.SessionTurnResponse{{Role: "user", Content: "hi"}},
	}}

	app := newTestApp(NewSessionController(found, 50, "test-secret"))
	status, body := doJSON(t, app, "GET", "/sessions/"+id.String()+"/turns", "", nil)
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), `"content":"hi"`)

	status, _ = doJSON(t, app, "GET", "/sessions/not-a-uuid/turns", "", nil)
	assert.Equal(t, 400, status)

	missing := newTestApp(NewSessionController(&fakeConversationService{}, 50, "test-secret"))
	status, _ = doJSON(t, missing, "GET", "/sessions/"+id.String()+"/turns", "", nil)
	assert.Equal(t, 404, status)
}

func TestSessionControllerDelete(t *testing.T) {
	const secret = "test-secret"
	id := uuid.New()
	svc := &fakeConversationService{turns: &dto.SessionTurnsResponse{SessionId: id.String()}}
	app := newTestApp(NewSessionController(svc, 50, secret))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	auth := map[string]string{"Authorization": "Bearer " + token}

	status, _ := doJSON(t, app, "DELETE", "/sessions/"+id.String(), "", nil)
	assert.Equal(t, 401, status)

	status, _ = doJSON(t, app, "DELETE", "/sessions/"+id.String(), "", auth)
	assert.Equal(t, 200, status)
	assert.Equal(t, []uuid.UUID{id}, svc.deleted)

	status, _ = doJSON(t, app, "DELETE", "/sessions/"+uuid.NewString(), "", auth)
	assert.Equal(t, 404, status)

	status, _ = doJSON(t, app, "DELETE", "/sessions/not-a-uuid", "", auth)
	assert.Equal(t, 400, status)
}

func TestHealthController(t *testing.T) {
	healthy := newTestApp(NewHealthController(map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	}))
	status, _ := doJSON(t, healthy, "GET", "/healthz", "", nil)
	assert.Equal(t, 200, status)

	unhealthy := newTestApp(NewHealthController(map[string]HealthCheck{
		"database": func(context.Context) error { return errors.New("connection refused") },
	}))
	status, body := doJSON(t, unhealthy, "GET", "/healthz", "", nil)
	assert.Equal(t, 503, status)
	assert.Contains(t, string(body), "connection refused")
}
