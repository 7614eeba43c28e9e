package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/pkg/events"
	"marketing-assistant-be/pkg/store"

	"github.com/google/uuid"
)

type fakeConversation struct {
	mu        sync.Mutex
	sessions  map[string]string // session id -> external user id
	turns     []store.Turn
	appendErr error
}

func newFakeConversation() *fakeConversation {
	return &fakeConversation{sessions: map[string]string{}}
}

func (f *fakeConversation) CreateSession(_ context.Context, externalUserID string) (*store.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	f.sessions[id] = externalUserID
	return &store.Session{ID: id, ExternalUserID: externalUserID, CreatedAt: time.Now()}, nil
}

func (f *fakeConversation) SessionExists(_ context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[sessionID]
	return ok, nil
}

func (f *fakeConversation) LatestSession(_ context.Context, externalUserID string) (*store.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, user := range f.sessions {
		if user == externalUserID {
			return &store.Session{ID: id, ExternalUserID: user}, nil
		}
	}
	return nil, nil
}

func (f *fakeConversation) History(_ context.Context, sessionID string, limit int) ([]store.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Turn
	for _, t := range f.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeConversation) AppendTurn(_ context.Context, turn store.Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeConversation) GetTurns(context.Context, uuid.UUID, int) (*dto.SessionTurnsResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConversation) DeleteSession(_ context.Context, sessionID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[sessionID.String()]
	delete(f.sessions, sessionID.String())
	return ok, nil
}

type fakeProcessor struct {
	result     store.Result
	gotQuery   string
	gotHistory []store.Turn
}

func (f *fakeProcessor) Process(_ context.Context, query string, priorTurns []store.Turn) store.Result {
	f.gotQuery = query
	f.gotHistory = priorTurns
	return f.result
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	stored  []store.Document
	results []store.Document
	err     error
	// failures makes the next n Store calls fail with a retriable error.
	failures int
	calls    int
}

func (f *fakeIndex) Store(_ context.Context, doc store.Document) (*store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("embedding provider unavailable")
	}
	if f.err != nil {
		return nil, f.err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	f.stored = append(f.stored, doc)
	return &doc, nil
}

func (f *fakeIndex) Query(context.Context, string, int, map[string]interface{}) []store.Document {
	return f.results
}

func (f *fakeIndex) storeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeIndex) storedDocs() []store.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.Document(nil), f.stored...)
}

type recordingQueue struct {
	payloads [][]byte
	err      error
}

func (q *recordingQueue) Publish(_ context.Context, payload []byte) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, payload)
	return nil
}

type fakeScraper struct {
	page   *store.ScrapedPage
	err    error
	gotURL string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (*store.ScrapedPage, error) {
	f.gotURL = url
	return f.page, f.err
}
