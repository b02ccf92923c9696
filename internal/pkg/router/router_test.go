package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/uid"
)

func TestBuiltinEndpoints(t *testing.T) {
	ro := NewRouter(Config{
		UUID:       uid.NewUUID(),
		Instrument: instrument.NewNoop(),
	})

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		ro.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Welcome", func(t *testing.T) {
		rec := do("/")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("Health", func(t *testing.T) {
		rec := do("/health")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		rec := do("/nope")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
