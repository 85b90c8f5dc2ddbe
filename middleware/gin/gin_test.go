package gin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aloks98/workspaces/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

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

	r := gin.New()
	r.Use(Session(b, nil))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Body.String() != "user-1" {
		t.Errorf("UserID() = %q, want user-1", rec.Body.String())
	}
}

func TestNewEngine(t *testing.T) {
	b := middleware.NewBuilder(mockVerifier{}, nil, nil)
	r := NewEngine(b, middleware.Endpoints{GraphQL: echoUser()}, nil, false)

	tests := []struct {
		name     string
		method   string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{"post authenticated", http.MethodPost, "/graphql", "Bearer good", http.StatusOK, "user=user-1"},
		{"post invalid token", http.MethodPost, "/graphql", "Bearer bad", http.StatusOK, "user="},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK, ""},
		{"unknown", http.MethodGet, "/nope", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
