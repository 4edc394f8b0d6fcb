package status

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"github.com/ricardonunez-io/logsleuth/internal/fuzzy"
	"github.com/rs/zerolog/log"
)

const (
	DefaultWindow = time.Hour
	maxPatterns   = 5
	maxPages      = 20

	downErrorRatio     = 0.25
	degradedErrorRatio = 0.02
)

type DatadogConfig struct {
	APIKey string
	AppKey string
	// Site such as datadoghq.eu; empty keeps the client default.
	Site   string
	Window time.Duration
}

// Datadog builds a health report from the service's recent logs.
type Datadog struct {
	cfg    DatadogConfig
	client *datadog.APIClient
	now    func() time.Time
}

func NewDatadog(cfg DatadogConfig) *Datadog {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	configuration := datadog.NewConfiguration()
	return &Datadog{
		cfg:    cfg,
		client: datadog.NewAPIClient(configuration),
		now:    time.Now,
	}
}

func (d *Datadog) Fetch(ctx context.Context, service string) string {
	to := d.now()
	from := to.Add(-d.cfg.Window)

	logs, err := d.ingest(d.authContext(ctx), service, from, to)
	if err != nil {
		log.Err(err).Str("service", service).Msg("Failed to query Datadog logs")
		return fmt.Sprintf("[ERROR] failed to query monitoring data for %s: %v", service, err)
	}

	return buildReport(service, d.cfg.Window, logs, to)
}

func (d *Datadog) authContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: d.cfg.APIKey},
		"appKeyAuth": {Key: d.cfg.AppKey},
	})
	if d.cfg.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{
			"site": d.cfg.Site,
		})
	}
	return ctx
}

func (d *Datadog) ingest(ctx context.Context, service string, from, to time.Time) ([]datadogV2.Log, error) {
	api := datadogV2.NewLogsApi(d.client)
	query := fmt.Sprintf("service:%s", service)

	var allLogs []datadogV2.Log
	var cursor *string

	for page := 0; page < maxPages; page++ {
		params := datadogV2.NewListLogsGetOptionalParameters()
		order := datadogV2.LOGSSORT_TIMESTAMP_DESCENDING
		params.Sort = &order
		params.FilterFrom = &from
		params.FilterTo = &to
		params.FilterQuery = &query
		if cursor != nil {
			params.PageCursor = cursor
		}

		resp, _, err := api.ListLogsGet(ctx, *params)
		if err != nil {
			return allLogs, err
		}

		allLogs = append(allLogs, resp.Data...)

		if resp.Meta == nil || resp.Meta.Page == nil || resp.Meta.Page.After == nil {
			break
		}
		after := *resp.Meta.Page.After
		if after == "" {
			break
		}
		cursor = &after
	}

	log.Info().
		Str("service", service).
		Int("logCount", len(allLogs)).
		Msg("Retrieved service logs from Datadog")

	return allLogs, nil
}

func buildReport(service string, window time.Duration, logs []datadogV2.Log, now time.Time) string {
	generated := now.Format(timeLayout)
	if len(logs) == 0 {
		return fmt.Sprintf(unknownReport, service, generated)
	}

	counts := make(map[string]int)
	hosts := make(map[string]struct{})
	var errorMessages []string

	for _, l := range logs {
		if l.Attributes == nil {
			continue
		}
		status := "info"
		if l.Attributes.Status != nil {
			status = normalizeStatus(*l.Attributes.Status)
		}
		counts[status]++
		if l.Attributes.Host != nil {
			hosts[*l.Attributes.Host] = struct{}{}
		}
		if isError(status) && l.Attributes.Message != nil {
			errorMessages = append(errorMessages, *l.Attributes.Message)
		}
	}

	total := 0
	errorCount := 0
	for status, n := range counts {
		total += n
		if isError(status) {
			errorCount += n
		}
	}
	ratio := 0.0
	if total > 0 {
		ratio = float64(errorCount) / float64(total)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Service Health Report: %s ===\n", service)
	fmt.Fprintf(&b, "Generated at: %s\n\n", generated)
	fmt.Fprintf(&b, "[Current Status: %s]\n", classify(ratio))
	fmt.Fprintf(&b, "- Log volume: %d (last %s)\n", total, window)
	fmt.Fprintf(&b, "- Current error rate: %.1f%%\n", ratio*100)
	fmt.Fprintf(&b, "- Hosts reporting: %d\n\n", len(hosts))

	b.WriteString("[Logs by Status]\n")
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(&b, "- %s: %d\n", s, counts[s])
	}

	if errorCount > 0 {
		trend := errorTrend(logs, now.Add(-window), now)
		b.WriteString("\n[Error Trend]\n")
		fmt.Fprintf(&b, "- Errors per %s: mean %.1f, median %.1f, stddev %.1f\n",
			trend.BucketWidth, trend.Mean, trend.Median, trend.StdDev)
		for _, spike := range trend.Spikes {
			fmt.Fprintf(&b, "- %s - error spike\n", spike.Format("15:04"))
		}
	}

	groups := fuzzy.Group(errorMessages)
	if len(groups) > 0 {
		b.WriteString("\n[Top Error Patterns]\n")
		for i, g := range groups {
			if i == maxPatterns {
				break
			}
			fmt.Fprintf(&b, "- (%d) %s\n", g.Count, g.Template)
		}
	}

	return b.String()
}

func classify(errorRatio float64) string {
	switch {
	case errorRatio >= downErrorRatio:
		return "DOWN - CRITICAL"
	case errorRatio >= degradedErrorRatio:
		return "DEGRADED"
	default:
		return "HEALTHY"
	}
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func isError(status string) bool {
	switch status {
	case "error", "critical", "alert", "emergency", "err", "fatal":
		return true
	}
	return false
}
