package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ricardonunez-io/logsleuth/internal/analyzer"
	"github.com/ricardonunez-io/logsleuth/internal/identifier"
	"github.com/ricardonunez-io/logsleuth/internal/llm"
	"github.com/ricardonunez-io/logsleuth/internal/logsource"
	slackpkg "github.com/ricardonunez-io/logsleuth/internal/slack"
	"github.com/ricardonunez-io/logsleuth/internal/status"
	"github.com/ricardonunez-io/logsleuth/internal/tools"
	"github.com/rs/zerolog/log"
)

const (
	StatusSourceMock    = "mock"
	StatusSourceDatadog = "datadog"
)

// Settings is everything read from the environment, resolved once per process.
type Settings struct {
	LLM          llm.Config
	Analyzer     analyzer.Config
	LogSource    logsource.Config
	StatusSource string
	Datadog      status.DatadogConfig
	Slack        slackpkg.Config
	ListenAddr   string
}

func LoadSettings() Settings {
	llmCfg := llm.DefaultConfig(os.Getenv("ANTHROPIC_API_KEY"))
	if model := os.Getenv("ANTHROPIC_MODEL"); model != "" {
		llmCfg.Model = model
	}
	llmCfg.BaseURL = os.Getenv("ANTHROPIC_BASE_URL")
	llmCfg.MaxTokens = int64(envInt("ANTHROPIC_MAX_TOKENS", int(llmCfg.MaxTokens)))

	analyzerCfg := analyzer.DefaultConfig()
	analyzerCfg.MaxIterations = envInt("MAX_ITERATIONS", analyzerCfg.MaxIterations)
	if platform := strings.TrimSpace(os.Getenv("DEFAULT_PLATFORM")); platform != "" {
		analyzerCfg.DefaultPlatform = platform
	}

	logCfg := logsource.DefaultConfig(os.Getenv("LOG_SERVICE_COOKIE"))
	if url := os.Getenv("LOG_SERVICE_URL"); url != "" {
		logCfg.URL = url
	}
	logCfg.Timeout = envDuration("LOG_SERVICE_TIMEOUT", logCfg.Timeout)

	source := strings.ToLower(strings.TrimSpace(os.Getenv("STATUS_SOURCE")))
	if source != StatusSourceMock && source != StatusSourceDatadog {
		if source != "" {
			log.Warn().Str("value", source).Msg("Invalid STATUS_SOURCE, defaulting to mock")
		}
		source = StatusSourceMock
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	s := Settings{
		LLM:          llmCfg,
		Analyzer:     analyzerCfg,
		LogSource:    logCfg,
		StatusSource: source,
		Datadog: status.DatadogConfig{
			APIKey: os.Getenv("DD_API_KEY"),
			AppKey: os.Getenv("DD_APPLICATION_KEY"),
			Site:   os.Getenv("DD_SITE"),
			Window: statusWindow(),
		},
		Slack: slackpkg.Config{
			BotToken:  os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
		},
		ListenAddr: listenAddr,
	}

	log.Debug().
		Str("model", s.LLM.Model).
		Int("maxIterations", s.Analyzer.MaxIterations).
		Str("defaultPlatform", s.Analyzer.DefaultPlatform).
		Str("statusSource", s.StatusSource).
		Bool("logCookie", s.LogSource.Cookie != "").
		Bool("slack", s.Slack.Enabled()).
		Msg("Configuration loaded")

	return s
}

// NewStatusSource returns the configured StatusSource.
func (s Settings) NewStatusSource() (tools.StatusSource, error) {
	if s.StatusSource == StatusSourceDatadog {
		if s.Datadog.APIKey == "" || s.Datadog.AppKey == "" {
			return nil, fmt.Errorf("DD_API_KEY and DD_APPLICATION_KEY are required when STATUS_SOURCE=datadog")
		}
		return status.NewDatadog(s.Datadog), nil
	}
	return status.NewMock(), nil
}

// NewAgent wires the model, the tools and their collaborators.
func (s Settings) NewAgent() (*analyzer.Agent, error) {
	model, err := llm.NewAnthropic(s.LLM)
	if err != nil {
		return nil, err
	}
	statusSource, err := s.NewStatusSource()
	if err != nil {
		return nil, err
	}
	if s.LogSource.Cookie == "" {
		log.Warn().Msg("LOG_SERVICE_COOKIE is not set, log fetches will ask for a login")
	}

	registry := tools.NewRegistry(logsource.New(s.LogSource), statusSource, s.platform())
	return analyzer.New(model, registry, s.Analyzer), nil
}

func (s Settings) platform() string {
	if s.Analyzer.DefaultPlatform == "" {
		return identifier.DefaultPlatform
	}
	return s.Analyzer.DefaultPlatform
}

func statusWindow() time.Duration {
	raw := os.Getenv("STATUS_WINDOW")
	if strings.TrimSpace(raw) == "" {
		return status.DefaultWindow
	}
	w, ok := status.ParseWindow(raw)
	if !ok {
		log.Warn().Str("value", raw).Msg("Invalid STATUS_WINDOW, defaulting to ONE_HOUR")
		return status.DefaultWindow
	}
	return w
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Warn().Str("value", raw).Int("default", fallback).Msgf("Invalid %s, using default", key)
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Warn().Str("value", raw).Dur("default", fallback).Msgf("Invalid %s, using default", key)
		return fallback
	}
	return v
}
