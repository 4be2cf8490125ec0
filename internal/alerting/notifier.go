package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PayoutNotification 封装一次新出块收益的告警上下文。
type PayoutNotification struct {
	Account     string
	Time        string
	Block       string
	ShareLogPct string
	ShareCount  uint64
	EarningsBTC decimal.Decimal
	PoolFeesBTC decimal.Decimal
	ObservedAt  time.Time
	Note        string
}

// Notifier 定义告警输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification PayoutNotification) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 告警器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, note PayoutNotification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    RenderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false")
		}
	}

	n.logger.Info().
		Str("account", note.Account).
		Str("block", note.Block).
		Msg("告警已发送 (Telegram)")
	return nil
}

// RenderMessage formats a payout notification as plain text.
func RenderMessage(note PayoutNotification) string {
	net := note.EarningsBTC.Sub(note.PoolFeesBTC)

	builder := strings.Builder{}
	builder.WriteString("[OCEAN Payout]\n")
	builder.WriteString(fmt.Sprintf("Account: %s\n", note.Account))
	builder.WriteString(fmt.Sprintf("Time: %s\n", note.Time))
	builder.WriteString(fmt.Sprintf("Block: %s\n", note.Block))
	builder.WriteString(fmt.Sprintf("Share Log: %s (%d shares)\n", note.ShareLogPct, note.ShareCount))
	builder.WriteString(fmt.Sprintf("Earnings: %s BTC\n", note.EarningsBTC.StringFixed(8)))
	builder.WriteString(fmt.Sprintf("Pool Fees: %s BTC\n", note.PoolFeesBTC.StringFixed(8)))
	builder.WriteString(fmt.Sprintf("Net: %s BTC\n", net.StringFixed(8)))
	if !note.ObservedAt.IsZero() {
		builder.WriteString(fmt.Sprintf("Observed: %s UTC\n", note.ObservedAt.UTC().Format(time.RFC3339)))
	}
	if note.Note != "" {
		builder.WriteString(note.Note)
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
