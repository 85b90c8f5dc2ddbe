package workspaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/aloks98/workspaces/store"
	"github.com/aloks98/workspaces/store/memory"
)

const testSecret = "this-is-a-32-character-secret!!!"

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	base := []Option{
		WithSecret(testSecret),
		WithBcryptCost(bcrypt.MinCost),
		WithLogger(&recordingLogger{}),
	}
	app, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

type gqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func post(t *testing.T, h http.Handler, auth, query string, vars map[string]any) gqlResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"query": query, "variables": vars})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /graphql status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp gqlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestNew_Defaults(t *testing.T) {
	logs := &recordingLogger{}
	app, err := New(WithLogger(logs), WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Config().Token.Secret != InsecureDefaultSecret {
		t.Errorf("Secret = %q, want the insecure default", app.Config().Token.Secret)
	}
	if _, ok := app.Store().(*memory.Store); !ok {
		t.Errorf("Store() = %T, want *memory.Store", app.Store())
	}
	if !logs.contains("insecure default") {
		t.Error("New() should warn about the insecure default secret")
	}
}

func TestNew_ShortSecretWarns(t *testing.T) {
	logs := &recordingLogger{}
	app, err := New(WithSecret("short"), WithLogger(logs), WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if !logs.contains("shorter than") {
		t.Error("New() should warn about a short secret")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"empty secret", []Option{WithSecret("")}, ErrSecretRequired},
		{"zero ttl", []Option{WithTokenTTL(0)}, ErrConfigInvalid},
		{"bad bcrypt cost", []Option{WithBcryptCost(99)}, ErrConfigInvalid},
		{"unknown store", []Option{WithStoreKind("sqlite")}, ErrStoreUnsupported},
		{"postgres without dsn", []Option{WithStoreKind(StorePostgres)}, ErrConfigInvalid},
		{"unknown router", []Option{WithRouter("martini")}, ErrConfigInvalid},
		{"empty header", []Option{WithHeaderName("")}, ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_InjectedStoreNotClosed(t *testing.T) {
	s := memory.New()
	defer s.Close()

	app, err := New(WithSecret(testSecret), WithStore(s), WithLogger(&recordingLogger{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if app.Store() != s {
		t.Error("Store() should return the injected store")
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("injected store was closed by App.Close: %v", err)
	}
}

func TestNew_FileStore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Kind = StoreFile
	cfg.Store.File = filepath.Join(t.TempDir(), "data.json")
	cfg.Store.AutoMigrate = true

	app, err := NewWithConfig(context.Background(), cfg, WithSecret(testSecret), WithLogger(&recordingLogger{}))
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}
	if err := app.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestApp_Close(t *testing.T) {
	app, err := New(WithSecret(testSecret), WithLogger(&recordingLogger{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := app.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := app.Ping(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() after Close error = %v, want ErrClosed", err)
	}
	if err := app.Store().Ping(context.Background()); !errors.Is(err, store.ErrClosed) {
		t.Errorf("owned store Ping() after Close error = %v, want store.ErrClosed", err)
	}
}

func TestApp_HealthHandler(t *testing.T) {
	app := newTestApp(t)
	h := app.HealthHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("healthy: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	app.Close()
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("closed: status = %d, want 503", rec.Code)
	}
}

func TestApp_Endpoints(t *testing.T) {
	ep := newTestApp(t).Endpoints()
	if ep.GraphQLPath != "/graphql" || ep.HealthPath != "/healthz" {
		t.Errorf("Endpoints() paths = %q, %q", ep.GraphQLPath, ep.HealthPath)
	}
	if ep.GraphQL == nil || ep.Health == nil {
		t.Error("Endpoints() handlers must be set")
	}
}

func TestApp_Handler_SignupLoginFlow(t *testing.T) {
	app := newTestApp(t, WithDefaultWorkspace("Inbox", "#000000"))
	h := app.Handler()

	signup := post(t, h, "", `mutation($data: UserCreateInput!) {
		signupUser(data: $data) { id email owned { title color } }
	}`, map[string]any{"data": map[string]any{"email": "Flow@Example.com", "password": "secret", "name": "Flow"}})
	if len(signup.Errors) > 0 {
		t.Fatalf("signupUser errors = %+v", signup.Errors)
	}
	user := signup.Data["signupUser"].(map[string]any)
	if user["email"] != "flow@example.com" {
		t.Errorf("email = %v, want normalized", user["email"])
	}
	owned := user["owned"].([]any)
	if len(owned) != 1 || owned[0].(map[string]any)["title"] != "Inbox" {
		t.Errorf("owned = %v, want the configured default workspace", owned)
	}

	login := post(t, h, "", `mutation { login(email: "flow@example.com", password: "secret") { message token } }`, nil)
	payload := login.Data["login"].(map[string]any)
	tok, _ := payload["token"].(string)
	if tok == "" {
		t.Fatalf("login payload = %v, want a token", payload)
	}

	me := post(t, h, "Bearer "+tok, `{ userDetails { id email } }`, nil)
	details, _ := me.Data["userDetails"].(map[string]any)
	if details == nil || details["id"] != user["id"] {
		t.Errorf("userDetails = %v, want user %v", me.Data["userDetails"], user["id"])
	}

	anon := post(t, h, "", `{ userDetails { id } }`, nil)
	if len(anon.Errors) == 0 || anon.Errors[0].Extensions["code"] != "UNAUTHENTICATED" {
		t.Errorf("anonymous userDetails errors = %+v, want UNAUTHENTICATED", anon.Errors)
	}
}

func TestApp_Handler_CustomHeader(t *testing.T) {
	app := newTestApp(t, WithHeaderName("X-Auth"))
	h := app.Handler()

	post(t, h, "", `mutation { signupUser(data: {email: "hdr@example.com", password: "pw"}) { id } }`, nil)
	tok, err := app.Tokens().Sign(mustUserID(t, app, "hdr@example.com"))
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	body, _ := json.Marshal(map[string]any{"query": `{ userDetails { email } }`})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("X-Auth", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "hdr@example.com") {
		t.Errorf("custom header not honored: %s", rec.Body.String())
	}
}

func mustUserID(t *testing.T, app *App, email string) string {
	t.Helper()
	u, err := app.Store().GetUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	return u.ID
}
