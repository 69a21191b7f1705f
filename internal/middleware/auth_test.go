package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newBearerTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", BearerToken(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxTokenKey))
	})
	return r
}

func TestBearerTokenExtractsToken(t *testing.T) {
	r := newBearerTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "abc123" {
		t.Fatalf("expected token abc123, got %q", w.Body.String())
	}
}

func TestBearerTokenRejectsMissingHeader(t *testing.T) {
	r := newBearerTestRouter()

	cases := map[string]string{
		"no header":    "",
		"wrong scheme": "Basic abc123",
		"empty token":  "Bearer    ",
	}

	for name, header := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Fatalf("%s: expected WWW-Authenticate challenge, got %q", name, got)
		}
	}
}
