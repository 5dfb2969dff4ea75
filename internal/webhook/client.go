package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

// Config настройки доставки.
type Config struct {
	// Timeout == 0: таймаут не задаётся, действует поведение транспорта.
	Timeout time.Duration
	// Opaque: ответ не читается, любой завершённый запрос считается неподтверждённым.
	Opaque bool
}

// Client отправляет payload в webhook одной попыткой, без повторов.
type Client struct {
	httpClient *http.Client
	opaque     bool
}

func NewClient(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		opaque:     cfg.Opaque,
	}
}

// NewClientWithHTTP нужен тестам и для собственного транспорта.
func NewClientWithHTTP(httpClient *http.Client, opaque bool) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, opaque: opaque}
}

// Deliver делает POST с JSON телом и переводит результат в DeliveryOutcome.
// Ошибка транспорта даёт Failed, ответ 2xx в прозрачном режиме даёт Sent,
// всё остальное Unconfirmed.
func (c *Client) Deliver(ctx context.Context, url string, body []byte) valueobject.DeliveryOutcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return valueobject.Failed(fmt.Sprintf("webhook: не удалось создать запрос: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return valueobject.Failed(fmt.Sprintf("webhook: %v", err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if c.opaque {
		return valueobject.Unconfirmed("ответ webhook не проверяется")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return valueobject.Sent()
	}
	return valueobject.Unconfirmed(fmt.Sprintf("webhook: код ответа %d", resp.StatusCode))
}
