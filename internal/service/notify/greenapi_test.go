package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SwingRank/internal/domain/models"
)

var runDate = time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

func TestFormatDailySummaryEmpty(t *testing.T) {
	got := FormatDailySummary(&models.RankingRun{Date: runDate})
	if got != "SwingRank (2024-05-02):\nNo valid setups found today." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDailySummaryLimitsRows(t *testing.T) {
	run := &models.RankingRun{Date: runDate}
	for i := 1; i <= 7; i++ {
		run.Rows = append(run.Rows, models.RankedRow{Rank: i, Symbol: "S" + string(rune('A'+i)), Confidence: 0.801, TP1: 102.4, SL: 98, FinancialLabel: "Neutral"})
	}
	got := FormatDailySummary(run)
	if !strings.HasPrefix(got, "*SwingRank - Top Picks (2024-05-02)*\n\n1. *SB* (80%)\n   TP1: 102.4 | SL: 98 | Fin: Neutral\n") {
		t.Fatalf("unexpected summary:\n%s", got)
	}
	if strings.Contains(got, "6. ") {
		t.Fatalf("summary should list at most %d picks", SummaryLimit)
	}
}

func TestNotifySkipsWithoutCredentials(t *testing.T) {
	n := NewWhatsAppNotifier(GreenAPIConfig{Host: "http://127.0.0.1:1"}, nil)
	if err := n.Notify(context.Background(), &models.RankingRun{Date: runDate}); err != nil {
		t.Fatalf("expected skip, got %v", err)
	}
}

func TestNotifySendsMessage(t *testing.T) {
	var got sendMessageRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"idMessage":"abc"}`))
	}))
	defer srv.Close()

	n := NewWhatsAppNotifier(GreenAPIConfig{Host: srv.URL, InstanceID: "42", APIToken: "tok", TargetPhone: "919999"}, nil)
	if err := n.Notify(context.Background(), &models.RankingRun{Date: runDate}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if path != "/waInstance42/SendMessage/tok" {
		t.Fatalf("path=%s", path)
	}
	if got.ChatID != "919999@c.us" || !strings.Contains(got.Message, "No valid setups") {
		t.Fatalf("payload=%+v", got)
	}
}

func TestNotifyReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()
	n := NewWhatsAppNotifier(GreenAPIConfig{Host: srv.URL, InstanceID: "1", APIToken: "t", TargetPhone: "2"}, nil)
	if err := n.Send(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error")
	}
}
