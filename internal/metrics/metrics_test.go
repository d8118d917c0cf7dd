package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				total += c.GetValue()
			}
		}
	}
	return total
}

// ドメインイベントのカウンタが加算されることを検証
func TestCollector_RecordsDomainEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration()
	c.RecordLogin()
	c.RecordLogin()
	c.RecordFeedbackCreated()

	if got := gatherValue(t, reg, "feedbackboard_registrations_total"); got != 1 {
		t.Errorf("registrations = %v, want 1", got)
	}
	if got := gatherValue(t, reg, "feedbackboard_logins_total"); got != 2 {
		t.Errorf("logins = %v, want 2", got)
	}
	if got := gatherValue(t, reg, "feedbackboard_feedback_created_total"); got != 1 {
		t.Errorf("feedback created = %v, want 1", got)
	}
}

// HTTPリクエストがメソッド・ステータス別に記録されることを検証
func TestCollector_RecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodPost, http.StatusSeeOther, 5*time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, http.StatusOK, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}

	var found bool
	for _, mf := range families {
		if mf.GetName() != "feedbackboard_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["method"] == "POST" && labels["status_code"] == "303" {
				found = true
				if m.GetCounter().GetValue() != 1 {
					t.Errorf("POST/303 count = %v, want 1", m.GetCounter().GetValue())
				}
			}
		}
	}
	if !found {
		t.Error("POST/303 metric should be recorded")
	}
}

// ミドルウェアがレスポンスのステータスコードを記録することを検証
func TestCollector_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	handler := c.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}

	var counted bool
	for _, mf := range families {
		if mf.GetName() != "feedbackboard_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status_code" && lp.GetValue() == "404" {
					counted = true
				}
			}
		}
	}
	if !counted {
		t.Error("middleware should record the 404 response")
	}
}

// スクレイプエンドポイントがメトリクスを公開することを検証
func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRegistration()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "feedbackboard_registrations_total 1") {
		t.Errorf("scrape output should contain the registration counter:\n%s", rec.Body.String())
	}
}
