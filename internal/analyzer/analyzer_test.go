package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ricardonunez-io/logsleuth/internal/conversation"
	"github.com/ricardonunez-io/logsleuth/internal/identifier"
	"github.com/ricardonunez-io/logsleuth/internal/report"
	"github.com/ricardonunez-io/logsleuth/internal/status"
	"github.com/ricardonunez-io/logsleuth/internal/tools"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const couponSerial = "DJC-CF-1211212348-8RJKIC-529-425718"

const couponLog = `[F:10.12.1.8|QQ:10001]2025-12-18 10:30:00|INF||[coupon.cpp:88][DJC-CF-1211212348-8RJKIC-529-425718][app.coupon.available][OPENID:]request start
[F:10.12.1.8|QQ:10001]2025-12-18 10:30:02|ER||[coupon.cpp:120][DJC-CF-1211212348-8RJKIC-529-425718][app.coupon.available][OPENID:oXyz]call coupon svr failed, ret=-6712, msg=system busy`

// scriptedModel replays fixed turns and records what it was shown.
type scriptedModel struct {
	mu     sync.Mutex
	script []conversation.Turn
	err    error
	seen   [][]conversation.Turn
}

func (m *scriptedModel) Next(_ context.Context, turns []conversation.Turn, _ []tools.Descriptor) (conversation.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, turns)
	if m.err != nil {
		return conversation.Turn{}, m.err
	}
	if len(m.seen) > len(m.script) {
		return m.script[len(m.script)-1], nil
	}
	return m.script[len(m.seen)-1], nil
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

func (m *scriptedModel) lastSeen() []conversation.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[len(m.seen)-1]
}

type recordingLogs struct {
	content string
	fetched []identifier.Identifier
}

func (r *recordingLogs) Fetch(_ context.Context, id identifier.Identifier) string {
	r.fetched = append(r.fetched, id)
	return r.content
}

func call(id string, name tools.Name, args string) conversation.ToolCall {
	return conversation.ToolCall{ID: id, Name: string(name), Arguments: json.RawMessage(args)}
}

func final(body string) conversation.Turn {
	return conversation.Assistant("Here is the report.\n```json\n" + body + "\n```")
}

func newAgent(model Model, logs tools.LogSource) *Agent {
	registry := tools.NewRegistry(logs, status.NewMock(), identifier.DefaultPlatform)
	return New(model, registry, DefaultConfig())
}

func TestAnalyze_CouponFailure(t *testing.T) {
	logs := &recordingLogs{content: couponLog}
	model := &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("", call("c1", tools.FetchErrorLog, `{"event_id":"`+couponSerial+`"}`)),
		final(`{"event_id":"` + couponSerial + `","error_code":"-6712","error_summary":"coupon backend rejected the query","server_status":"degraded","risk_level":"high","recommendation":"check coupon svr load"}`),
	}}

	got, err := newAgent(model, logs).Analyze(context.Background(), "My coupon will not load, serial "+couponSerial)
	require.NoError(t, err)

	require.Len(t, logs.fetched, 1)
	assert.Equal(t, couponSerial, logs.fetched[0].Raw)
	assert.Equal(t, "DJC", logs.fetched[0].PlatformTag)

	assert.Equal(t, couponSerial, got.EventID)
	assert.Equal(t, "-6712", got.ErrorCode)
	assert.Equal(t, report.RiskHigh, got.RiskLevel)
	assert.Equal(t, "app.coupon.available", got.AffectedModule)
	assert.Equal(t, "QQ:10001", got.UserInfo)
	assert.Contains(t, got.RawErrorLogs, "ret=-6712")
	assert.NotContains(t, got.RawErrorLogs, "request start")
	assert.Equal(t, 2, model.calls())
}

func TestAnalyze_DoesNotOverwriteModelFields(t *testing.T) {
	logs := &recordingLogs{content: couponLog}
	model := &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("", call("c1", tools.FetchErrorLog, `{"event_id":"`+couponSerial+`"}`)),
		final(`{"event_id":"` + couponSerial + `","error_code":"-6712","error_summary":"s","server_status":"up","affected_module":"svr.coupon","risk_level":"high","recommendation":"r"}`),
	}}

	got, err := newAgent(model, logs).Analyze(context.Background(), couponSerial)
	require.NoError(t, err)
	assert.Equal(t, "svr.coupon", got.AffectedModule)
}

func TestAnalyze_PaymentServiceDown(t *testing.T) {
	model := &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("", call("s1", tools.CheckServerStatus, `{"service_name":"payment-service"}`)),
		final(`{"event_id":"AMS-PAY-1-2","error_code":"-1","error_summary":"payment service is down","server_status":"DOWN","risk_level":"critical","recommendation":"fail over"}`),
	}}

	got, err := newAgent(model, &recordingLogs{}).Analyze(context.Background(), "payments fail for AMS-PAY-1-2")
	require.NoError(t, err)
	assert.Equal(t, report.RiskCritical, got.RiskLevel)

	seen := model.lastSeen()
	last := seen[len(seen)-1]
	assert.Equal(t, conversation.RoleToolResult, last.Role)
	assert.Equal(t, "s1", last.ToolCallID)
	assert.Contains(t, last.Content, "DOWN")
}

func TestAnalyze_ProseDegradesToParseError(t *testing.T) {
	prose := "I could not find anything wrong with this event."
	model := &scriptedModel{script: []conversation.Turn{conversation.Assistant(prose)}}

	got, err := newAgent(model, &recordingLogs{}).Analyze(context.Background(), "look at "+couponSerial)
	require.NoError(t, err)
	assert.Equal(t, report.CodeParseError, got.ErrorCode)
	assert.Equal(t, prose, got.ErrorSummary)
	assert.Equal(t, couponSerial, got.EventID)
	assert.Empty(t, got.AffectedModule)
}

func TestAnalyze_BudgetExceeded(t *testing.T) {
	model := &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("", call("s", tools.CheckServerStatus, `{"service_name":"order-service"}`)),
	}}
	agent := New(model, tools.NewRegistry(&recordingLogs{}, status.NewMock(), "AMS"), Config{MaxIterations: 3})

	_, err := agent.Analyze(context.Background(), "loop forever")
	require.ErrorIs(t, err, ErrIterationBudgetExceeded)
	assert.Equal(t, 3, model.calls())
}

func TestAnalyze_FinalAnswerOnLastIteration(t *testing.T) {
	model := &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("", call("s1", tools.CheckServerStatus, `{"service_name":"order-service"}`)),
		conversation.Assistant("", call("s2", tools.CheckServerStatus, `{"service_name":"auth-service"}`)),
		final(`{"event_id":"AMS-ORD-1-2","error_code":"-1","error_summary":"pool exhausted","risk_level":"medium","recommendation":"raise pool size"}`),
	}}
	agent := New(model, tools.NewRegistry(&recordingLogs{}, status.NewMock(), "AMS"), Config{MaxIterations: 3})

	got, err := agent.Analyze(context.Background(), "orders are slow for AMS-ORD-1-2")
	require.NoError(t, err)
	assert.Equal(t, "-1", got.ErrorCode)
	assert.Equal(t, report.RiskMedium, got.RiskLevel)
	assert.Equal(t, 3, model.calls())
}

const mixedCodeLog = `[F:10.12.1.8|QQ:10001]2025-12-18 10:30:01|ER||[db.cpp:40][DJC-CF-1211212348-8RJKIC-529-425718][app.user.profile][OPENID:]mysql read timeout, ret=-1001
[F:10.12.1.8|QQ:10001]2025-12-18 10:30:02|ER||[coupon.cpp:120][DJC-CF-1211212348-8RJKIC-529-425718][app.coupon.available][OPENID:oXyz]call coupon svr failed, ret=-6712, msg=system busy`

func TestAnalyze_ExcerptLeadsWithReportedCode(t *testing.T) {
	model := &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("", call("c1", tools.FetchErrorLog, `{"event_id":"`+couponSerial+`"}`)),
		final(`{"event_id":"` + couponSerial + `","error_code":"-6712","error_summary":"s","risk_level":"high","recommendation":"r"}`),
	}}

	got, err := newAgent(model, &recordingLogs{content: mixedCodeLog}).Analyze(context.Background(), couponSerial)
	require.NoError(t, err)

	lines := strings.Split(got.RawErrorLogs, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "ret=-6712")
	assert.NotContains(t, lines[0], "ret=-1001")
}

func TestAnalyze_WarnsOnCodeMissingFromLogs(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	model := &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("", call("c1", tools.FetchErrorLog, `{"event_id":"`+couponSerial+`"}`)),
		final(`{"event_id":"` + couponSerial + `","error_code":"-9999","error_summary":"s","risk_level":"high","recommendation":"r"}`),
	}}

	got, err := newAgent(model, &recordingLogs{content: couponLog}).Analyze(context.Background(), couponSerial)
	require.NoError(t, err)
	assert.Equal(t, "-9999", got.ErrorCode)
	assert.Contains(t, buf.String(), "Reported error code does not appear in the fetched ER lines")
	assert.Contains(t, buf.String(), `"errorCode":"-9999"`)

	buf.Reset()
	model = &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("", call("c1", tools.FetchErrorLog, `{"event_id":"`+couponSerial+`"}`)),
		final(`{"event_id":"` + couponSerial + `","error_code":"-6712","error_summary":"s","risk_level":"high","recommendation":"r"}`),
	}}
	_, err = newAgent(model, &recordingLogs{content: couponLog}).Analyze(context.Background(), couponSerial)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "does not appear")
}

func TestAnalyze_DispatchPreservesOrder(t *testing.T) {
	model := &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("",
			call("a", tools.CheckServerStatus, `{"service_name":"order-service"}`),
			call("b", tools.FetchErrorLog, `{"event_id":"`+couponSerial+`"}`),
		),
		final(`{"error_code":"-6712","error_summary":"s","risk_level":"low","recommendation":"r"}`),
	}}

	_, err := newAgent(model, &recordingLogs{content: couponLog}).Analyze(context.Background(), couponSerial)
	require.NoError(t, err)

	seen := model.lastSeen()
	require.GreaterOrEqual(t, len(seen), 5)
	tail := seen[len(seen)-2:]
	assert.Equal(t, "a", tail[0].ToolCallID)
	assert.Equal(t, "b", tail[1].ToolCallID)
	assert.Contains(t, tail[0].Content, "order-service")
	assert.Contains(t, tail[1].Content, "ret=-6712")
}

func TestAnalyze_UnknownToolContinues(t *testing.T) {
	model := &scriptedModel{script: []conversation.Turn{
		conversation.Assistant("", call("x", "restart_server", `{}`)),
		final(`{"error_code":"0","error_summary":"s","risk_level":"low","recommendation":"r"}`),
	}}

	got, err := newAgent(model, &recordingLogs{}).Analyze(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "0", got.ErrorCode)
	assert.Equal(t, report.UnknownEventID, got.EventID)

	seen := model.lastSeen()
	result := seen[len(seen)-1]
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: Unknown tool 'restart_server'", result.Content)
}

func TestAnalyze_ModelErrorDegrades(t *testing.T) {
	model := &scriptedModel{err: errors.New("connection refused")}

	got, err := newAgent(model, &recordingLogs{}).Analyze(context.Background(), couponSerial)
	require.NoError(t, err)
	assert.Equal(t, report.CodeModelError, got.ErrorCode)
	assert.Equal(t, couponSerial, got.EventID)
	assert.Contains(t, got.ErrorSummary, "connection refused")
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	model := &scriptedModel{script: []conversation.Turn{final(`{}`)}}

	_, err := newAgent(model, &recordingLogs{}).Analyze(ctx, couponSerial)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, model.calls())
}

func TestAnalyze_SeedsSystemPromptAndInput(t *testing.T) {
	model := &scriptedModel{script: []conversation.Turn{conversation.Assistant("no")}}

	_, err := newAgent(model, &recordingLogs{}).Analyze(context.Background(), "check "+couponSerial)
	require.NoError(t, err)

	first := model.seen[0]
	require.Len(t, first, 2)
	assert.Equal(t, conversation.RoleSystem, first[0].Role)
	assert.True(t, strings.Contains(first[0].Content, `"risk_level"`))
	assert.Equal(t, conversation.User("check "+couponSerial), first[1])
}
