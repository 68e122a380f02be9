// Package config provides the configuration structure for the bulletin service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/pelletier/go-toml/v2"
)

// Speech backends.
const (
	BackendGoogle  = "google"
	BackendCommand = "command"
)

// Environment overrides.
const (
	EnvTelegramBotToken  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID    = "TELEGRAM_CHAT_ID"
	EnvGoogleAPIKey      = "GOOGLE_TTS_API_KEY"
	EnvGoogleCredentials = "GOOGLE_APPLICATION_CREDENTIALS_JSON"
	EnvTranslateAPIKey   = "TRANSLATE_API_KEY"
)

// Defaults.
const (
	DefaultLimitPerSource      = 8
	DefaultMinCharsToSummarize = 700
	DefaultSentencesPerItem    = 4
	DefaultMaxItemsPerTopic    = 4
	DefaultTargetMinutes       = 6.0
	DefaultWordsPerMinute      = 160
	DefaultHTTPTimeoutSeconds  = 12
	DefaultTargetLanguage      = "pt"
	DefaultSourcesFile         = "sources.yaml"
	DefaultStateFile           = "state.json"
	DefaultLanguageCode        = "pt-BR"
	DefaultForeignLanguage     = "en-US"
	DefaultRate                = 1.02
	DefaultPitch               = 0.1
	DefaultMaxTextBytes        = 4300
	DefaultMaxSSMLBytes        = 4800
	DefaultTTSTimeoutSeconds   = 60
	DefaultAudioFormat         = "mp3"
	DefaultCacheSize           = 512
	DefaultNATSURL             = "nats://127.0.0.1:4222"
	DefaultAudioBucket         = "BULLETIN_AUDIO"
	DefaultAudioSubject        = "bulletin.audio.created"
	DefaultRunSubject          = "bulletin.run.requested"
	DefaultLogsDir             = "logs"
)

// Static errors.
var (
	// ErrMissingCredentials is fatal: an enabled integration lacks its credentials.
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// DefaultVoices is the male voice preference order.
func DefaultVoices() []string {
	return []string{"pt-BR-Neural2-B", "pt-BR-Wavenet-B", "pt-BR-Wavenet-D"}
}

// RunConfig holds the collection and script settings.
type RunConfig struct {
	LimitPerSource      int     `toml:"limit_per_source"`
	MinCharsToSummarize int     `toml:"min_chars_to_summarize"`
	SentencesPerItem    int     `toml:"sentences_per_item"`
	MaxItemsPerTopic    int     `toml:"max_items_per_topic"`
	TargetMinutes       float64 `toml:"target_minutes"`
	WordsPerMinute      int     `toml:"words_per_minute"`
	SourcesFile         string  `toml:"sources_file"`
	StateFile           string  `toml:"state_file"`
	HTTPTimeoutSeconds  int     `toml:"http_timeout_seconds"`
	TargetLanguage      string  `toml:"target_language"`
}

// TTSConfig holds the speech synthesis settings.
type TTSConfig struct {
	Backend         string   `toml:"backend"`
	Dialect         string   `toml:"dialect"`
	LanguageCode    string   `toml:"language_code"`
	Voices          []string `toml:"voices"`
	Rate            float64  `toml:"rate"`
	Pitch           float64  `toml:"pitch"`
	Style           string   `toml:"style"`
	ForeignLanguage string   `toml:"foreign_language"`
	MaxTextBytes    int      `toml:"max_text_bytes"`
	MaxSSMLBytes    int      `toml:"max_ssml_bytes"`
	TimeoutSeconds  int      `toml:"timeout_seconds"`
	AudioFormat     string   `toml:"audio_format"`
	Endpoint        string   `toml:"endpoint"`
	APIKey          string   `toml:"api_key"`
	CredentialsJSON string   `toml:"credentials_json"`
	Command         string   `toml:"command"`
	CommandArgs     []string `toml:"command_args"`
}

// TranslateConfig holds the translation service settings. An empty URL disables
// translation.
type TranslateConfig struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	CacheSize      int    `toml:"cache_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TelegramConfig holds the chat delivery settings.
type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
	APIURL   string `toml:"api_url"`
}

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	Enabled                bool   `toml:"enabled"`
	URL                    string `toml:"url"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
	AudioCreatedSubject    string `toml:"audio_created_subject"`
	DigestSubject          string `toml:"digest_subject"`
	// RunSubject is where `bulletin serve` listens for run requests.
	RunSubject string `toml:"run_subject"`
}

// OutputConfig holds the local file sink settings. An empty Dir disables the sink.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	Run       RunConfig       `toml:"run"`
	TTS       TTSConfig       `toml:"tts"`
	Translate TranslateConfig `toml:"translate"`
	Telegram  TelegramConfig  `toml:"telegram"`
	NATS      NATSConfig      `toml:"nats"`
	Output    OutputConfig    `toml:"output"`
	Paths     PathsConfig     `toml:"paths"`
}

// Load loads the configuration through the central configurator, then applies
// environment overrides, defaults and validation.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return finish(&cfg)
}

// LoadFile loads the configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes TOML data, then applies environment overrides, defaults and validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	err := toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides credentials from the environment when the variables are set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	override := func(target *string, key string) {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			*target = value
		}
	}

	override(&c.Telegram.BotToken, EnvTelegramBotToken)
	override(&c.Telegram.ChatID, EnvTelegramChatID)
	override(&c.TTS.APIKey, EnvGoogleAPIKey)
	override(&c.TTS.CredentialsJSON, EnvGoogleCredentials)
	override(&c.Translate.APIKey, EnvTranslateAPIKey)
}

// ApplyDefaults fills every unset value.
func (c *Config) ApplyDefaults() {
	defaultInt(&c.Run.LimitPerSource, DefaultLimitPerSource)
	defaultInt(&c.Run.MinCharsToSummarize, DefaultMinCharsToSummarize)
	defaultInt(&c.Run.SentencesPerItem, DefaultSentencesPerItem)
	defaultInt(&c.Run.MaxItemsPerTopic, DefaultMaxItemsPerTopic)
	defaultInt(&c.Run.WordsPerMinute, DefaultWordsPerMinute)
	defaultInt(&c.Run.HTTPTimeoutSeconds, DefaultHTTPTimeoutSeconds)
	defaultString(&c.Run.SourcesFile, DefaultSourcesFile)
	defaultString(&c.Run.StateFile, DefaultStateFile)
	defaultString(&c.Run.TargetLanguage, DefaultTargetLanguage)

	if c.Run.TargetMinutes <= 0 {
		c.Run.TargetMinutes = DefaultTargetMinutes
	}

	defaultString(&c.TTS.Backend, BackendGoogle)
	defaultString(&c.TTS.LanguageCode, DefaultLanguageCode)
	defaultString(&c.TTS.ForeignLanguage, DefaultForeignLanguage)
	defaultString(&c.TTS.AudioFormat, DefaultAudioFormat)
	defaultInt(&c.TTS.MaxTextBytes, DefaultMaxTextBytes)
	defaultInt(&c.TTS.MaxSSMLBytes, DefaultMaxSSMLBytes)
	defaultInt(&c.TTS.TimeoutSeconds, DefaultTTSTimeoutSeconds)

	if len(c.TTS.Voices) == 0 {
		c.TTS.Voices = DefaultVoices()
	}

	if c.TTS.Rate <= 0 {
		c.TTS.Rate = DefaultRate
	}

	if c.TTS.Pitch == 0 {
		c.TTS.Pitch = DefaultPitch
	}

	defaultInt(&c.Translate.CacheSize, DefaultCacheSize)
	defaultInt(&c.Translate.TimeoutSeconds, c.Run.HTTPTimeoutSeconds)

	defaultString(&c.NATS.URL, DefaultNATSURL)
	defaultString(&c.NATS.AudioObjectStoreBucket, DefaultAudioBucket)
	defaultString(&c.NATS.AudioCreatedSubject, DefaultAudioSubject)
	defaultString(&c.NATS.RunSubject, DefaultRunSubject)

	defaultString(&c.Paths.BaseLogsDir, DefaultLogsDir)
}

// Validate reports missing credentials and inconsistent settings.
func (c *Config) Validate() error {
	var errs []error

	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		errs = append(errs, fmt.Errorf("%w: telegram requires %s and %s",
			ErrMissingCredentials, EnvTelegramBotToken, EnvTelegramChatID))
	}

	switch c.TTS.Backend {
	case BackendGoogle:
		if c.TTS.APIKey == "" && c.TTS.CredentialsJSON == "" {
			errs = append(errs, fmt.Errorf("%w: google speech backend requires %s or %s",
				ErrMissingCredentials, EnvGoogleAPIKey, EnvGoogleCredentials))
		}
	case BackendCommand:
		if strings.TrimSpace(c.TTS.Command) == "" {
			errs = append(errs, fmt.Errorf("%w: tts.command is required for the command backend", ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown tts.backend %q", ErrInvalidConfig, c.TTS.Backend))
	}

	if c.TTS.MaxSSMLBytes < c.TTS.MaxTextBytes {
		errs = append(errs, fmt.Errorf("%w: tts.max_ssml_bytes (%d) is below tts.max_text_bytes (%d)",
			ErrInvalidConfig, c.TTS.MaxSSMLBytes, c.TTS.MaxTextBytes))
	}

	return errors.Join(errs...)
}

// HTTPTimeout returns the per-request timeout for feed and page fetches.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Run.HTTPTimeoutSeconds) * time.Second
}

// TTSTimeout returns the per-call synthesis timeout.
func (c *Config) TTSTimeout() time.Duration {
	return time.Duration(c.TTS.TimeoutSeconds) * time.Second
}

// TranslateTimeout returns the per-call translation timeout.
func (c *Config) TranslateTimeout() time.Duration {
	return time.Duration(c.Translate.TimeoutSeconds) * time.Second
}

func defaultInt(target *int, value int) {
	if *target <= 0 {
		*target = value
	}
}

func defaultString(target *string, value string) {
	if strings.TrimSpace(*target) == "" {
		*target = value
	}
}
