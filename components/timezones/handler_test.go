package timezones

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formruntime/pkg/dataview"
)

func decodeItems(t *testing.T, rec *httptest.ResponseRecorder) []optionItem {
	t.Helper()
	var envelope itemsEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Items
}

func TestHandlerSearch(t *testing.T) {
	handler := HandlerWithOptions(NewOptions(WithZones([]string{
		"America/New_York", "Europe/Paris", "UTC",
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timezones?q=paris", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := []optionItem{{Label: "Europe/Paris", Value: "Europe/Paris"}}
	if diff := cmp.Diff(want, decodeItems(t, rec)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerLimit(t *testing.T) {
	handler := HandlerWithOptions(NewOptions(WithZones([]string{"A", "B", "C"})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timezones?limit=2", nil))
	if got := decodeItems(t, rec); len(got) != 2 {
		t.Errorf("items = %v, want the limit applied", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timezones?limit=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a bad limit", rec.Code)
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/timezones", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandlerDefaultsToEmbeddedList(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timezones?q=utc", nil))
	items := decodeItems(t, rec)
	if len(items) == 0 || items[0].Value != "UTC" {
		t.Errorf("items = %v, want UTC from the embedded list", items)
	}
}

func TestComponentServesDataviewLoader(t *testing.T) {
	component := New(WithZones([]string{"Asia/Tokyo", "Europe/Berlin"}))

	mux := http.NewServeMux()
	path, err := component.RegisterRoutes(mux)
	if err != nil {
		t.Fatalf("RegisterRoutes() error = %v", err)
	}
	if path != "/timezones" {
		t.Errorf("path = %q, want the default mount", path)
	}

	server := httptest.NewServer(mux)
	defer server.Close()

	loader := &dataview.HTTPLoader{Client: server.Client()}
	src := component.Source(server.URL).WithParams(map[string]any{"q": "tokyo"})
	rows, err := loader.LoadArray(context.Background(), src)
	if err != nil {
		t.Fatalf("LoadArray() error = %v", err)
	}
	want := []any{map[string]any{"label": "Asia/Tokyo", "value": "Asia/Tokyo"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterRoutesNilMux(t *testing.T) {
	if _, err := RegisterRoutes(nil); err == nil {
		t.Error("RegisterRoutes(nil) expected an error")
	}
}
