package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ricardonunez-io/logsleuth/internal/report"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

var ErrNotConfigured = errors.New("SLACK_BOT_TOKEN and SLACK_CHANNEL_ID are required")

type Config struct {
	BotToken  string
	ChannelID string
	// APIURL overrides the Slack Web API base; empty uses the default.
	APIURL string
}

func (c Config) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// SendReport posts the report to the configured channel.
func SendReport(ctx context.Context, r report.Report, config Config) error {
	if !config.Enabled() {
		return ErrNotConfigured
	}

	var opts []slack.Option
	if config.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(config.APIURL))
	}
	api := slack.New(config.BotToken, opts...)

	_, msgTimestamp, err := api.PostMessageContext(ctx,
		config.ChannelID,
		slack.MsgOptionText(fallbackText(r), false),
		slack.MsgOptionBlocks(Blocks(r, time.Now())...),
	)
	if err != nil {
		log.Err(err).Str("channel", config.ChannelID).Msg("Failed to post Slack message")
		return err
	}

	log.Info().
		Str("channel", config.ChannelID).
		Str("timestamp", msgTimestamp).
		Str("eventId", r.EventID).
		Msg("Report posted to Slack")
	return nil
}

// Blocks renders the report as Block Kit blocks.
func Blocks(r report.Report, analyzedAt time.Time) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(
			"plain_text",
			fmt.Sprintf("%s Error Analysis: %s", riskToEmoji(r.RiskLevel), strings.ToUpper(string(r.RiskLevel))),
			false, false,
		)),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("*Event:* `%s`\n*Error Code:* `%s`\n*Server Status:* %s",
					r.EventID, r.ErrorCode, r.ServerStatus),
				false, false),
			nil, nil,
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("*Summary:*\n%s", r.ErrorSummary),
				false, false),
			nil, nil,
		),
	}

	var details []string
	if r.AffectedModule != "" {
		details = append(details, fmt.Sprintf("• Module: `%s`", r.AffectedModule))
	}
	if r.UserInfo != "" {
		details = append(details, fmt.Sprintf("• User: %s", r.UserInfo))
	}
	if len(details) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("*Details:*\n%s", strings.Join(details, "\n")),
				false, false),
			nil, nil,
		))
	}

	if r.RawErrorLogs != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("*Error Logs:*\n```%s```", r.RawErrorLogs),
				false, false),
			nil, nil,
		))
	}

	blocks = append(blocks,
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("*Recommendation:*\n%s", r.Recommendation),
				false, false),
			nil, nil,
		),
		slack.NewContextBlock("",
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("Analyzed at: %s", analyzedAt.Format(time.RFC1123)),
				false, false),
		),
	)

	return blocks
}

func fallbackText(r report.Report) string {
	return fmt.Sprintf("%s %s: %s", strings.ToUpper(string(r.RiskLevel)), r.EventID, r.ErrorCode)
}

func riskToEmoji(level report.RiskLevel) string {
	switch level {
	case report.RiskCritical:
		return "🔴"
	case report.RiskHigh:
		return "🟠"
	case report.RiskMedium:
		return "🟡"
	default:
		return "🟢"
	}
}
