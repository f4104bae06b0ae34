package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func originRouter(allowed []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Origin(allowed))
	r.GET("/ws", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestOrigin(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    int
	}{
		{"empty allow list passes anything", nil, "http://evil.test", http.StatusOK},
		{"allowed origin passes", []string{"http://app.test"}, "http://app.test", http.StatusOK},
		{"unknown origin rejected", []string{"http://app.test"}, "http://evil.test", http.StatusForbidden},
		{"no origin header passes", []string{"http://app.test"}, "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			w := httptest.NewRecorder()
			originRouter(tc.allowed).ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
