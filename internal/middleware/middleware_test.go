package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("mints when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Body.String() == "" {
			t.Error("no request id minted")
		}
		if w.Header().Get("X-Request-ID") != w.Body.String() {
			t.Error("response header does not echo the request id")
		}
	})

	t.Run("honors incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "caller-id-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Body.String() != "caller-id-123" {
			t.Errorf("request id = %q, want caller-id-123", w.Body.String())
		}
	})
}

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(remoteAddr string, headers map[string]string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = remoteAddr
		for k, v := range headers {
			c.Request.Header.Set(k, v)
		}
		return c
	}

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trust      bool
		want       string
	}{
		{"remote addr only", "10.0.0.1:1234", nil, false, "10.0.0.1"},
		{
			"forwarded ignored when untrusted",
			"10.0.0.1:1234",
			map[string]string{"X-Forwarded-For": "203.0.113.7"},
			false,
			"10.0.0.1",
		},
		{
			"forwarded honored when trusted",
			"10.0.0.1:1234",
			map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			true,
			"203.0.113.7",
		},
		{
			"real ip honored when trusted",
			"10.0.0.1:1234",
			map[string]string{"X-Real-IP": "203.0.113.9"},
			true,
			"203.0.113.9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clientIP(newCtx(tt.remoteAddr, tt.headers), tt.trust)
			if got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
