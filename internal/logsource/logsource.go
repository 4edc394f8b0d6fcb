package logsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ricardonunez-io/logsleuth/internal/identifier"
	"github.com/rs/zerolog/log"
)

const (
	payloadPrefix = "var log_result="
	userAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	excerptBytes  = 500
)

// loginMarkers appear in the login redirect page served instead of the log.
var loginMarkers = []string{"未找到登录", "urlJump"}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Referer == "" {
		cfg.Referer = DefaultReferer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch returns the log text for id. Transport failures, timeouts and login
// pages are described in the returned text rather than returned as errors.
func (c *Client) Fetch(ctx context.Context, id identifier.Identifier) string {
	log.Info().
		Str("url", c.cfg.URL).
		Stringer("eventId", id).
		Str("platform", id.PlatformTag).
		Msg("Requesting log service")

	body, err := c.get(ctx, id)
	if err != nil {
		log.Err(err).Stringer("eventId", id).Msg("Failed to fetch log")
		return fmt.Sprintf("[ERROR] failed to fetch log: %v", err)
	}

	return Decode(body)
}

func (c *Client) get(ctx context.Context, id identifier.Identifier) (string, error) {
	inner := url.Values{}
	inner.Set("plat_name", id.PlatformTag)
	inner.Set("serial_num", id.Raw)
	inner.Set("source_charset", "utf8")

	query := url.Values{}
	query.Set("url", inner.Encode())
	query.Set("set", "")
	query.Set("referer", c.cfg.Referer)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.cfg.Referer)
	if c.cfg.Cookie != "" {
		req.Header.Set("Cookie", c.cfg.Cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("log service returned status %d", resp.StatusCode)
	}

	return string(data), nil
}

const emptyResponse = "[ERROR] log service returned an empty response"

// Decode turns a log service response body into log text. It never returns an
// empty string.
func Decode(body string) string {
	if strings.TrimSpace(body) == "" {
		return emptyResponse
	}
	for _, marker := range loginMarkers {
		if strings.Contains(body, marker) {
			return fmt.Sprintf("[ERROR] authentication required. Set LOG_SERVICE_COOKIE to the session cookie of a logged-in browser.\nraw response: %s", excerpt(body))
		}
	}

	payload, found := strings.CutPrefix(body, payloadPrefix)
	if !found {
		return body
	}
	payload = strings.TrimSuffix(strings.TrimSpace(payload), ";")

	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		log.Debug().Err(err).Msg("Log payload is not JSON, returning raw body")
		return body
	}

	if items, ok := data["result"].([]any); ok {
		var lines []string
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if content, ok := entry["content"]; ok {
				lines = append(lines, fmt.Sprint(content))
			} else if _, ok := entry["jsonHeader"]; ok {
				lines = append(lines, compact(entry))
			}
		}
		if joined := strings.Join(lines, "\n"); strings.TrimSpace(joined) != "" {
			return joined
		}
		if len(items) == 0 || len(lines) > 0 {
			return emptyResponse
		}
	}

	return pretty(data)
}

func compact(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func pretty(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func excerpt(s string) string {
	if len(s) <= excerptBytes {
		return s
	}
	return strings.ToValidUTF8(s[:excerptBytes], "")
}
