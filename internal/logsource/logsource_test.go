package logsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ricardonunez-io/logsleuth/internal/identifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server, cookie string) *Client {
	cfg := DefaultConfig(cookie)
	cfg.URL = server.URL
	return New(cfg)
}

func TestClient_Fetch(t *testing.T) {
	t.Run("request carries platform serial and cookie", func(t *testing.T) {
		var gotQuery url.Values
		var gotCookie, gotReferer string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			gotCookie = r.Header.Get("Cookie")
			gotReferer = r.Header.Get("Referer")
			_, _ = w.Write([]byte("plain log text"))
		}))
		defer server.Close()

		client := newTestClient(server, "session=abc")
		id := identifier.Parse("DJC-CF-1211212348-8RJKIC-529-425718", "")

		out := client.Fetch(context.Background(), id)
		assert.Equal(t, "plain log text", out)

		inner, err := url.ParseQuery(gotQuery.Get("url"))
		require.NoError(t, err)
		assert.Equal(t, "DJC", inner.Get("plat_name"))
		assert.Equal(t, "DJC-CF-1211212348-8RJKIC-529-425718", inner.Get("serial_num"))
		assert.Equal(t, "utf8", inner.Get("source_charset"))
		assert.True(t, gotQuery.Has("set"))
		assert.Equal(t, DefaultReferer, gotQuery.Get("referer"))
		assert.Equal(t, "session=abc", gotCookie)
		assert.Equal(t, DefaultReferer, gotReferer)
	})

	t.Run("no cookie header when not configured", func(t *testing.T) {
		var gotCookie string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCookie = r.Header.Get("Cookie")
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		newTestClient(server, "").Fetch(context.Background(), identifier.Parse("X-Y-Z", ""))
		assert.Empty(t, gotCookie)
	})

	t.Run("server error becomes error text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		out := newTestClient(server, "").Fetch(context.Background(), identifier.Parse("X-Y-Z", ""))
		assert.True(t, strings.HasPrefix(out, "[ERROR] failed to fetch log"))
		assert.Contains(t, out, "500")
	})

	t.Run("timeout becomes error text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		cfg := DefaultConfig("")
		cfg.URL = server.URL
		cfg.Timeout = 50 * time.Millisecond

		out := New(cfg).Fetch(context.Background(), identifier.Parse("X-Y-Z", ""))
		assert.True(t, strings.HasPrefix(out, "[ERROR] failed to fetch log"))
	})

	t.Run("login page becomes remediation text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<script>urlJump("/login")</script>`))
		}))
		defer server.Close()

		out := newTestClient(server, "").Fetch(context.Background(), identifier.Parse("X-Y-Z", ""))
		assert.Contains(t, out, "authentication required")
		assert.Contains(t, out, "LOG_SERVICE_COOKIE")
	})
}

func TestDecode(t *testing.T) {
	t.Run("prefixed payload with content items", func(t *testing.T) {
		body := `var log_result={"result":[{"content":"line one"},{"content":"line two"}]}`
		assert.Equal(t, "line one\nline two", Decode(body))
	})

	t.Run("jsonHeader items are serialised", func(t *testing.T) {
		body := `var log_result={"result":[{"jsonHeader":{"cmd":1}},{"content":"tail"}]}`
		assert.Equal(t, "{\"jsonHeader\":{\"cmd\":1}}\ntail", Decode(body))
	})

	t.Run("payload without result list is pretty printed", func(t *testing.T) {
		body := `var log_result={"ret":0}`
		assert.Equal(t, "{\n  \"ret\": 0\n}", Decode(body))
	})

	t.Run("malformed payload returns raw body", func(t *testing.T) {
		body := `var log_result={broken`
		assert.Equal(t, body, Decode(body))
	})

	t.Run("unprefixed body returned as is", func(t *testing.T) {
		assert.Equal(t, "raw text", Decode("raw text"))
	})

	t.Run("empty body is described", func(t *testing.T) {
		assert.Equal(t, "[ERROR] log service returned an empty response", Decode(""))
		assert.Equal(t, "[ERROR] log service returned an empty response", Decode(" \n\t"))
	})

	t.Run("empty result list is described", func(t *testing.T) {
		assert.Equal(t, "[ERROR] log service returned an empty response", Decode(`var log_result={"result":[]};`))
		assert.Equal(t, "[ERROR] log service returned an empty response", Decode(`var log_result={"result":[{"content":""}]}`))
	})

	t.Run("login marker wins", func(t *testing.T) {
		out := Decode("var log_result=" + `{"msg":"未找到登录态"}`)
		assert.Contains(t, out, "authentication required")
	})

	t.Run("long login page is excerpted", func(t *testing.T) {
		out := Decode("urlJump" + strings.Repeat("x", 2000))
		assert.Less(t, len(out), 700)
	})
}
