package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newRequestIDRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		*seen = GetRequestIDFromGinContext(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	var seen string
	router := newRequestIDRouter(&seen)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	header := rr.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("expected generated uuid, got %q", header)
	}
	if seen != header {
		t.Fatalf("context id %q does not match header %q", seen, header)
	}
}

func TestRequestIDKeepsIncomingValue(t *testing.T) {
	var seen string
	router := newRequestIDRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "sensor-gateway-7")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "sensor-gateway-7" {
		t.Fatalf("expected incoming id to be echoed, got %q", got)
	}
	if seen != "sensor-gateway-7" {
		t.Fatalf("expected incoming id in context, got %q", seen)
	}
}
