package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	dservice "SwingRank/internal/domain/service"
	xhttp "SwingRank/pkg/http"
	"SwingRank/pkg/logger"
	"SwingRank/pkg/util"
)

// SummaryLimit is the number of picks listed in a summary.
const SummaryLimit = 5

type GreenAPIConfig struct {
	Host        string
	InstanceID  string
	APIToken    string
	TargetPhone string
	Timeout     time.Duration
}

// Configured reports whether every credential is present.
func (c GreenAPIConfig) Configured() bool {
	return c.InstanceID != "" && c.APIToken != "" && c.TargetPhone != ""
}

// WhatsAppNotifier sends the daily summary through GreenAPI.
type WhatsAppNotifier struct {
	cfg    GreenAPIConfig
	client *xhttp.Client
	log    *logger.Logger
}

func NewWhatsAppNotifier(cfg GreenAPIConfig, log *logger.Logger) *WhatsAppNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &WhatsAppNotifier{cfg: cfg, client: xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)), log: log}
}

func (n *WhatsAppNotifier) Name() string { return "whatsapp" }

// Publish lets the notifier be used as a ranking sink.
func (n *WhatsAppNotifier) Publish(ctx context.Context, run *models.RankingRun) error {
	return n.Notify(ctx, run)
}

// Notify sends the summary of run. Missing credentials skip the send.
func (n *WhatsAppNotifier) Notify(ctx context.Context, run *models.RankingRun) error {
	if !n.cfg.Configured() {
		n.log.Warn("greenapi credentials missing, skipping whatsapp summary")
		return nil
	}
	return n.Send(ctx, FormatDailySummary(run))
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	IDMessage string `json:"idMessage"`
}

// Send posts one text message to the configured phone.
func (n *WhatsAppNotifier) Send(ctx context.Context, message string) error {
	var resp sendMessageResponse
	err := n.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     n.endpoint(),
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    sendMessageRequest{ChatID: n.cfg.TargetPhone + "@c.us", Message: message},
	}, &resp)
	if err != nil {
		return fmt.Errorf("greenapi send: %w", err)
	}
	n.log.Info("whatsapp summary sent", logger.String("message_id", resp.IDMessage))
	return nil
}

func (n *WhatsAppNotifier) endpoint() string {
	host := strings.TrimSuffix(n.cfg.Host, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return fmt.Sprintf("%s/waInstance%s/SendMessage/%s", host, n.cfg.InstanceID, n.cfg.APIToken)
}

// FormatDailySummary renders up to SummaryLimit picks as a WhatsApp message.
func FormatDailySummary(run *models.RankingRun) string {
	day := util.FormatDay(run.Date)
	if len(run.Rows) == 0 {
		return fmt.Sprintf("SwingRank (%s):\nNo valid setups found today.", day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*SwingRank - Top Picks (%s)*\n\n", day)
	for i, r := range run.Rows {
		if i == SummaryLimit {
			break
		}
		fmt.Fprintf(&b, "%d. *%s* (%.0f%%)\n", r.Rank, r.Symbol, r.Confidence*100)
		fmt.Fprintf(&b, "   TP1: %s | SL: %s | Fin: %s\n", price(r.TP1), price(r.SL), r.FinancialLabel)
	}
	b.WriteString("\n_Full report in the daily CSV._")
	return b.String()
}

func price(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var (
	_ dservice.Notifier   = (*WhatsAppNotifier)(nil)
	_ domrepo.RankingSink = (*WhatsAppNotifier)(nil)
)
