package analyzer

import (
	"sort"
	"strings"

	"github.com/ricardonunez-io/logsleuth/internal/conversation"
	"github.com/ricardonunez-io/logsleuth/internal/fuzzy"
	"github.com/ricardonunez-io/logsleuth/internal/logline"
	"github.com/ricardonunez-io/logsleuth/internal/report"
	"github.com/ricardonunez-io/logsleuth/internal/tools"
	"github.com/rs/zerolog/log"
)

// enrich fills optional fields the model left empty from the ER lines of the
// fetched logs. Fields the model set are never overwritten.
func enrich(r report.Report, conv *conversation.Conversation) report.Report {
	errorLines := fetchedErrors(conv)
	if len(errorLines) == 0 {
		return r
	}

	code := strings.TrimSpace(r.ErrorCode)
	logCodes := make(map[string]bool)
	for _, e := range errorLines {
		if c := logline.ErrorCode(e.Message); c != "" {
			logCodes[c] = true
		}
	}
	if len(logCodes) > 0 && !logCodes[code] {
		log.Warn().
			Str("eventId", r.EventID).
			Str("errorCode", r.ErrorCode).
			Int("logCodes", len(logCodes)).
			Msg("Reported error code does not appear in the fetched ER lines")
	}

	if r.AffectedModule == "" {
		for _, e := range errorLines {
			if e.Module != "" {
				r.AffectedModule = e.Module
				break
			}
		}
	}

	if r.UserInfo == "" {
		for _, e := range errorLines {
			if e.QQ != "" {
				r.UserInfo = "QQ:" + e.QQ
				break
			}
		}
	}

	if r.RawErrorLogs == "" {
		raw := make([]string, len(errorLines))
		for i, e := range errorLines {
			raw[i] = e.Raw
		}
		var distinct []string
		for _, g := range fuzzy.Group(raw) {
			distinct = append(distinct, g.Samples[0])
		}
		// Lines carrying the reported code lead the excerpt.
		sort.SliceStable(distinct, func(i, j int) bool {
			return carriesCode(distinct[i], code) && !carriesCode(distinct[j], code)
		})
		r.RawErrorLogs = report.Truncate(strings.Join(distinct, "\n"), report.SummaryLimit)
	}

	return r
}

func carriesCode(line, code string) bool {
	if code == "" {
		return false
	}
	e, ok := logline.Parse(line)
	return ok && logline.ErrorCode(e.Message) == code
}

// fetchedErrors returns the ER entries of every fetch_error_log result, in
// call order.
func fetchedErrors(conv *conversation.Conversation) []logline.Entry {
	var out []logline.Entry
	for _, t := range conv.Turns() {
		for _, call := range t.ToolCalls {
			if call.Name != string(tools.FetchErrorLog) {
				continue
			}
			result, ok := conv.ToolResultFor(call.ID)
			if !ok || result.IsError {
				continue
			}
			out = append(out, logline.Filter(logline.ParseAll(result.Content), logline.ERROR)...)
		}
	}
	return out
}
