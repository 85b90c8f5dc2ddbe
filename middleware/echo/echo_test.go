package echo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aloks98/workspaces/middleware"
)

type mockVerifier struct{}

func (mockVerifier) Verify(header string) (string, bool) {
	if header == "Bearer good" {
		return "user-1", true
	}
	return "", false
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("user=" + middleware.GetUserID(r.Context())))
	})
}

func TestSession(t *testing.T) {
	b := middleware.NewBuilder(mockVerifier{}, nil, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(b, nil)(func(c echo.Context) error {
		if got := middleware.GetUserID(c.Request().Context()); got != "user-1" {
			t.Errorf("request context user = %q, want user-1", got)
		}
		return c.String(http.StatusOK, UserID(c))
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if rec.Body.String() != "user-1" {
		t.Errorf("UserID() = %q, want user-1", rec.Body.String())
	}
}

func TestNewServer(t *testing.T) {
	b := middleware.NewBuilder(mockVerifier{}, nil, nil)
	e := NewServer(b, middleware.Endpoints{GraphQL: echoUser()}, nil, false)

	tests := []struct {
		name     string
		method   string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{"post authenticated", http.MethodPost, "/graphql", "Bearer good", http.StatusOK, "user=user-1"},
		{"post anonymous", http.MethodPost, "/graphql", "", http.StatusOK, "user="},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
