package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/minigame"
	"github.com/shouni/go-picture-book/pkg/session"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGenerator struct {
	mu       sync.Mutex
	pages    int
	storyErr error
	editErr  error
}

func (f *fakeGenerator) GenerateStory(ctx context.Context, topic string) (*domain.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storyErr != nil {
		return nil, f.storyErr
	}
	s := &domain.Story{ID: fmt.Sprintf("story-%d", time.Now().UnixNano()), Title: "About " + topic}
	for i := 0; i < f.pages; i++ {
		s.Pages = append(s.Pages, domain.Page{Text: fmt.Sprintf("Sentence %d.", i), ImageDescription: fmt.Sprintf("desc-%d", i)})
	}
	return s, nil
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, prompt string) domain.Image {
	return domain.NewDataURI("image/png", []byte(prompt))
}

func (f *fakeGenerator) EditImage(ctx context.Context, current domain.Image, instruction string) (domain.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return "", f.editErr
	}
	return domain.NewDataURI("image/png", []byte("edited:"+instruction)), nil
}

// testClient は Cookie を引き継ぎながらリクエストを送ります。
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (tc *testClient) do(method, path string, body any) (int, map[string]any) {
	tc.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			tc.t.Fatalf("encode body: %v", err)
		}
	}
	return tc.doRaw(method, path, buf.Bytes())
}

// doRaw は本文をそのまま送ります。
func (tc *testClient) doRaw(method, path string, body []byte) (int, map[string]any) {
	tc.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	tc.handler.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		tc.cookies = cookies
	}

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			tc.t.Fatalf("%s %s: invalid JSON %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func (tc *testClient) waitFor(cond func(view map[string]any) bool) map[string]any {
	tc.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, view := tc.do(http.MethodGet, "/api/session", nil)
		if cond(view) {
			return view
		}
		if time.Now().After(deadline) {
			tc.t.Fatalf("condition not met, last view: %v", view)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newTestServer(t *testing.T, gen *fakeGenerator) (*Server, *testClient) {
	t.Helper()
	factory := func() (*session.Session, error) {
		return session.New(gen, session.Options{
			RequestTimeout: time.Second,
			Game:           minigame.Config{SpawnInterval: time.Millisecond},
		})
	}
	srv, err := New(Config{
		SessionSecret:   "test-secret",
		SessionTTL:      time.Minute,
		CORSOrigins:     []string{"http://localhost:3000"},
		GenerateTimeout: time.Second,
	}, factory)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, &testClient{t: t, handler: srv.Handler()}
}

func phaseIs(phase domain.Phase) func(map[string]any) bool {
	return func(v map[string]any) bool { return v["phase"] == string(phase) }
}

func startReading(t *testing.T, tc *testClient) map[string]any {
	t.Helper()
	code, _ := tc.do(http.MethodPost, "/api/session/topic", map[string]string{"topic": "a brave dog"})
	if code != http.StatusAccepted {
		t.Fatalf("POST topic status = %d, want 202", code)
	}
	return tc.waitFor(func(v map[string]any) bool {
		return v["phase"] == string(domain.PhaseReading) && v["loading"] == false
	})
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{SessionSecret: "x"}, nil); err == nil {
		t.Error("nil factory should fail")
	}
	factory := func() (*session.Session, error) { return nil, nil }
	if _, err := New(Config{}, factory); err == nil {
		t.Error("empty secret should fail")
	}
}

func TestHealthz(t *testing.T) {
	_, tc := newTestServer(t, &fakeGenerator{pages: 3})
	code, body := tc.do(http.MethodGet, "/healthz", nil)
	if code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("GET /healthz = %d %v", code, body)
	}
}

func TestSession_InitialView(t *testing.T) {
	srv, tc := newTestServer(t, &fakeGenerator{pages: 3})
	code, view := tc.do(http.MethodGet, "/api/session", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if view["phase"] != string(domain.PhaseSetup) {
		t.Errorf("phase = %v, want SETUP", view["phase"])
	}
	if len(tc.cookies) == 0 {
		t.Error("session cookie should be issued")
	}

	// 同じ Cookie なら同じセッションを使い続けるのだ
	tc.do(http.MethodGet, "/api/session", nil)
	if n := srv.registry.Len(); n != 1 {
		t.Errorf("registry size = %d, want 1", n)
	}
}

func TestSession_ReadingFlow(t *testing.T) {
	_, tc := newTestServer(t, &fakeGenerator{pages: 2})
	view := startReading(t, tc)
	if view["pageIndex"] != float64(0) || view["title"] != "About a brave dog" {
		t.Errorf("unexpected view %v", view)
	}

	code, view := tc.do(http.MethodPost, "/api/session/next", nil)
	if code != http.StatusOK || view["pageIndex"] != float64(1) {
		t.Fatalf("POST next = %d %v", code, view)
	}
	code, view = tc.do(http.MethodPost, "/api/session/prev", nil)
	if code != http.StatusOK || view["pageIndex"] != float64(0) {
		t.Fatalf("POST prev = %d %v", code, view)
	}

	code, view = tc.do(http.MethodPut, "/api/session/draft", map[string]string{"instruction": "add a hat"})
	if code != http.StatusOK || view["draft"] != "add a hat" {
		t.Fatalf("PUT draft = %d %v", code, view)
	}

	code, view = tc.do(http.MethodPost, "/api/session/edit", nil)
	if code != http.StatusOK {
		t.Fatalf("POST edit = %d %v", code, view)
	}
	if want := string(domain.NewDataURI("image/png", []byte("edited:add a hat"))); view["image"] != want {
		t.Errorf("image = %v, want edited", view["image"])
	}

	tc.do(http.MethodPost, "/api/session/next", nil)
	code, view = tc.do(http.MethodPost, "/api/session/next", nil)
	if code != http.StatusOK || view["phase"] != string(domain.PhaseFinished) {
		t.Fatalf("finish = %d %v", code, view)
	}

	code, view = tc.do(http.MethodPost, "/api/session/restart", nil)
	if code != http.StatusOK || view["phase"] != string(domain.PhaseSetup) {
		t.Fatalf("POST restart = %d %v", code, view)
	}
}

func TestSession_GuardErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"blank topic", http.MethodPost, "/api/session/topic", map[string]string{"topic": "  "}, http.StatusBadRequest},
		{"bad body", http.MethodPost, "/api/session/topic", "not an object", http.StatusBadRequest},
		{"next in setup", http.MethodPost, "/api/session/next", nil, http.StatusConflict},
		{"draft in setup", http.MethodPut, "/api/session/draft", map[string]string{"instruction": "x"}, http.StatusConflict},
		{"edit in setup", http.MethodPost, "/api/session/edit", map[string]string{"instruction": "x"}, http.StatusConflict},
		{"game in setup", http.MethodGet, "/api/session/game", nil, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tc := newTestServer(t, &fakeGenerator{pages: 2})
			code, body := tc.do(tt.method, tt.path, tt.body)
			if code != tt.want {
				t.Errorf("%s %s = %d, want %d (%v)", tt.method, tt.path, code, tt.want, body)
			}
		})
	}
}

func TestSession_StoryFailureSurfacesError(t *testing.T) {
	_, tc := newTestServer(t, &fakeGenerator{storyErr: fmt.Errorf("%w: dial tcp", domain.ErrStoryFailed)})

	code, _ := tc.do(http.MethodPost, "/api/session/topic", map[string]string{"topic": "a brave dog"})
	if code != http.StatusAccepted {
		t.Fatalf("POST topic = %d", code)
	}
	view := tc.waitFor(func(v map[string]any) bool {
		return v["phase"] == string(domain.PhaseSetup) && v["lastError"] != nil
	})
	if view["lastError"] != session.FriendlyMessage(domain.ErrStoryFailed) {
		t.Errorf("lastError = %v", view["lastError"])
	}

	_, view = tc.do(http.MethodPost, "/api/session/dismiss", nil)
	if _, ok := view["lastError"]; ok {
		t.Errorf("lastError should be dismissed: %v", view)
	}
}

func TestSession_EditFailure(t *testing.T) {
	gen := &fakeGenerator{pages: 2, editErr: domain.ErrNoImageInEdit}
	_, tc := newTestServer(t, gen)
	before := startReading(t, tc)

	code, body := tc.do(http.MethodPost, "/api/session/edit", map[string]string{"instruction": "add a hat"})
	if code != http.StatusBadGateway {
		t.Fatalf("POST edit = %d, want 502", code)
	}
	sess, _ := body["session"].(map[string]any)
	if sess["image"] != before["image"] {
		t.Error("image changed after failed edit")
	}
	if body["error"] != session.FriendlyMessage(domain.ErrNoImageInEdit) {
		t.Errorf("error = %v", body["error"])
	}
}

func TestSession_EditBody(t *testing.T) {
	gen := &fakeGenerator{pages: 2}
	_, tc := newTestServer(t, gen)
	startReading(t, tc)

	code, _ := tc.doRaw(http.MethodPost, "/api/session/edit", []byte(`{"instruction": `))
	if code != http.StatusBadRequest {
		t.Errorf("malformed edit body = %d, want 400", code)
	}

	if code, view := tc.do(http.MethodPut, "/api/session/draft", map[string]string{"instruction": "add a hat"}); code != http.StatusOK {
		t.Fatalf("PUT draft = %d %v", code, view)
	}
	code, view := tc.doRaw(http.MethodPost, "/api/session/edit", nil)
	if code != http.StatusOK {
		t.Fatalf("empty edit body = %d %v, want 200", code, view)
	}
	if view["image"] != string(domain.NewDataURI("image/png", []byte("edited:add a hat"))) {
		t.Errorf("edit should use the saved draft, image = %v", view["image"])
	}
}

func TestSession_Game(t *testing.T) {
	_, tc := newTestServer(t, &fakeGenerator{pages: 1})
	startReading(t, tc)
	tc.do(http.MethodPost, "/api/session/next", nil)

	code, game := tc.do(http.MethodGet, "/api/session/game", nil)
	if code != http.StatusOK {
		t.Fatalf("GET game = %d %v", code, game)
	}
	balloons, _ := game["balloons"].([]any)
	if len(balloons) == 0 {
		t.Fatalf("expected a balloon, got %v", game)
	}
	first, _ := balloons[0].(map[string]any)
	id := int(first["id"].(float64))

	code, game = tc.do(http.MethodPost, fmt.Sprintf("/api/session/game/pop/%d", id), nil)
	if code != http.StatusOK || game["score"] != float64(1) {
		t.Errorf("pop = %d %v", code, game)
	}
	code, _ = tc.do(http.MethodPost, fmt.Sprintf("/api/session/game/pop/%d", id), nil)
	if code != http.StatusNotFound {
		t.Errorf("second pop = %d, want 404", code)
	}
	code, _ = tc.do(http.MethodPost, "/api/session/game/pop/abc", nil)
	if code != http.StatusBadRequest {
		t.Errorf("bad id pop = %d, want 400", code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrEmptyTopic, http.StatusBadRequest},
		{session.ErrEmptyInstruction, http.StatusBadRequest},
		{session.ErrInvalidPhase, http.StatusConflict},
		{session.ErrEditInProgress, http.StatusConflict},
		{session.ErrImageNotReady, http.StatusConflict},
		{fmt.Errorf("x: %w", domain.ErrEditFailed), http.StatusBadGateway},
		{domain.ErrInvalidImageFormat, http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRegistry_ReusesSessions(t *testing.T) {
	created := 0
	r := NewRegistry(time.Minute, func() (*session.Session, error) {
		created++
		return session.New(&fakeGenerator{}, session.Options{})
	})

	a, _ := r.Get("a")
	a2, _ := r.Get("a")
	b, _ := r.Get("b")
	if a != a2 || a == b {
		t.Error("Get() should return the same session per id")
	}
	if created != 2 || r.Len() != 2 {
		t.Errorf("created = %d, Len() = %d, want 2", created, r.Len())
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	r := NewRegistry(time.Minute, func() (*session.Session, error) {
		return nil, fmt.Errorf("boom")
	})
	if _, err := r.Get("a"); err == nil {
		t.Error("factory error should propagate")
	}
}
