package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveWith(opt SecurityOptions, mutate func(*http.Request)) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(SecurityHeaders(opt))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	if mutate != nil {
		mutate(req)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	w := serveWith(SecurityOptions{EnablePolicy: true}, nil)

	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %v", h)
	}
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("policy headers missing: %v", h)
	}
	if h.Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS must not be set for plain HTTP")
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	opt := SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour}

	w := serveWith(opt, func(req *http.Request) {
		req.Header.Set("X-Forwarded-Proto", "https")
	})
	sts := w.Header().Get("Strict-Transport-Security")
	if !strings.HasPrefix(sts, "max-age=86400") {
		t.Fatalf("STS = %q; want max-age=86400 prefix", sts)
	}

	if w := serveWith(opt, nil); w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS set for plain HTTP")
	}
}

func TestSecurityHeaders_NoStore(t *testing.T) {
	w := serveWith(SecurityOptions{NoStore: true}, nil)
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
}
