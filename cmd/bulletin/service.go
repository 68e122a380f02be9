package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/book-expert/bulletin-service/internal/chunk"
	"github.com/book-expert/bulletin-service/internal/config"
	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/bulletin-service/internal/delivery"
	"github.com/book-expert/bulletin-service/internal/feed"
	"github.com/book-expert/bulletin-service/internal/ledger"
	"github.com/book-expert/bulletin-service/internal/objectstore"
	"github.com/book-expert/bulletin-service/internal/pipeline"
	"github.com/book-expert/bulletin-service/internal/script"
	"github.com/book-expert/bulletin-service/internal/topic"
	"github.com/book-expert/bulletin-service/internal/translate"
	"github.com/book-expert/bulletin-service/internal/tts"
	"github.com/book-expert/bulletin-service/internal/tts/audio"
	"github.com/book-expert/bulletin-service/internal/tts/ssml"
	"github.com/book-expert/bulletin-service/internal/tts/text"
	"github.com/book-expert/bulletin-service/internal/tts/ttsutils"
	"github.com/book-expert/bulletin-service/internal/worker"
	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// service holds the wired pipeline and the connections it owns.
type service struct {
	cfg            *config.Config
	sources        []core.Source
	pipeline       *pipeline.Pipeline
	natsConnection *nats.Conn
	log            *logger.Logger
}

func newService(ctx context.Context, cfg *config.Config, log *logger.Logger) (*service, error) {
	catalog, err := config.LoadSources(cfg.Run.SourcesFile)
	if err != nil {
		return nil, err
	}

	catalog.Apply(&cfg.Run)

	svc := &service{cfg: cfg, sources: catalog.Feeds, log: log}

	if cfg.NATS.Enabled {
		svc.natsConnection, err = nats.Connect(cfg.NATS.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
		}
	}

	svc.pipeline, err = svc.buildPipeline(ctx)
	if err != nil {
		svc.Close()

		return nil, err
	}

	return svc, nil
}

// Close releases the NATS connection.
func (s *service) Close() {
	if s.natsConnection != nil {
		s.natsConnection.Close()
	}
}

func (s *service) worker() (*worker.NatsWorker, error) {
	if s.natsConnection == nil {
		return nil, ErrNATSDisabled
	}

	return worker.NewNatsWorker(s.natsConnection, s.cfg.NATS.RunSubject, s.pipeline, s.sources, 0, s.log)
}

func (s *service) buildPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	cfg := s.cfg

	translator, err := buildTranslator(cfg)
	if err != nil {
		return nil, err
	}

	seen, err := ledger.New(afero.NewOsFs(), cfg.Run.StateFile, s.log)
	if err != nil {
		return nil, err
	}

	err = seen.Load()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}

	collector, err := feed.NewCollector(feed.Collaborators{
		Reader:     feed.NewReader(httpClient),
		Extractor:  feed.NewPageExtractor(httpClient),
		Summarizer: feed.NewTextRankSummarizer(cfg.Run.MinCharsToSummarize, cfg.Run.SentencesPerItem),
		Translator: translator,
		Seen:       seen,
	}, cfg.Run.LimitPerSource, s.log)
	if err != nil {
		return nil, err
	}

	grouper, err := topic.NewGrouper(topic.NewPortugueseClassifier(), cfg.Run.MaxItemsPerTopic, topic.DefaultOrder())
	if err != nil {
		return nil, err
	}

	composer := script.NewComposer(translator, script.Options{
		TargetMinutes:  cfg.Run.TargetMinutes,
		WordsPerMinute: cfg.Run.WordsPerMinute,
	}, s.log)

	engine, err := buildEngine(ctx, cfg, s.log)
	if err != nil {
		return nil, err
	}

	deliverer, err := s.buildDeliverer()
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Stages{
		Collector: collector,
		Grouper:   grouper,
		Composer:  composer,
		Renderer:  engine,
		Deliverer: deliverer,
		Ledger:    seen,
	}, s.log)
}

// buildTranslator returns nil when no translation service is configured.
func buildTranslator(cfg *config.Config) (core.Translator, error) {
	if cfg.Translate.URL == "" {
		return nil, nil
	}

	client, err := translate.NewClient(translate.Options{
		BaseURL: cfg.Translate.URL,
		APIKey:  cfg.Translate.APIKey,
		Target:  cfg.Run.TargetLanguage,
		Timeout: cfg.TranslateTimeout(),
	})
	if err != nil {
		return nil, err
	}

	cached, err := translate.NewCached(client, cfg.Translate.CacheSize)
	if err != nil {
		return nil, err
	}

	return cached, nil
}

// newBuilder creates the markup builder; it does not need credentials.
func newBuilder(cfg *config.Config) (*ssml.Builder, error) {
	dialect, err := ssml.DialectByName(cfg.TTS.Dialect)
	if err != nil {
		return nil, err
	}

	return ssml.NewBuilder(text.NewSanitizer("", ""), ssml.Options{
		Budget:  cfg.TTS.MaxSSMLBytes,
		Dialect: dialect,
		Prosody: ssml.Prosody{
			Rate:     cfg.TTS.Rate,
			Pitch:    cfg.TTS.Pitch,
			Style:    cfg.TTS.Style,
			Language: cfg.TTS.LanguageCode,
		},
		ForeignLanguage: cfg.TTS.ForeignLanguage,
	})
}

func buildEngine(ctx context.Context, cfg *config.Config, log *logger.Logger) (*tts.Engine, error) {
	backend, err := buildSpeechBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	format, err := audio.ParseFormat(cfg.TTS.AudioFormat)
	if err != nil {
		return nil, err
	}

	chunker, err := chunk.NewChunker(cfg.TTS.MaxTextBytes)
	if err != nil {
		return nil, err
	}

	builder, err := newBuilder(cfg)
	if err != nil {
		return nil, err
	}

	dispatcher, err := tts.NewDispatcher(backend, cfg.TTS.Voices, log)
	if err != nil {
		return nil, err
	}

	return tts.NewEngine(chunker, builder, dispatcher, format, log)
}

func buildSpeechBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (core.SpeechBackend, error) {
	if cfg.TTS.Backend == config.BackendCommand {
		return tts.NewCommandBackend(cfg.TTS.Command, cfg.TTS.CommandArgs, log)
	}

	opts := tts.GoogleOptions{
		Endpoint:     cfg.TTS.Endpoint,
		APIKey:       cfg.TTS.APIKey,
		LanguageCode: cfg.TTS.LanguageCode,
		Timeout:      cfg.TTSTimeout(),
	}

	if cfg.TTS.CredentialsJSON != "" {
		return tts.NewGoogleClientFromCredentials(ctx, opts, []byte(cfg.TTS.CredentialsJSON))
	}

	return tts.NewGoogleClient(opts), nil
}

// buildDeliverer fans out to every enabled sink.
func (s *service) buildDeliverer() (*delivery.Fanout, error) {
	cfg := s.cfg

	var sinks []delivery.Sink

	if cfg.Telegram.Enabled {
		telegram, err := delivery.NewTelegram(delivery.TelegramOptions{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			APIURL:   cfg.Telegram.APIURL,
		}, s.log)
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, telegram)
	}

	if s.natsConnection != nil {
		publisher, err := s.buildPublisher()
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, publisher)
	}

	if cfg.Output.Dir != "" {
		dir := filepath.Clean(cfg.Output.Dir)

		err := ttsutils.EnsureDir(dir)
		if err != nil {
			return nil, err
		}

		fileSink, err := delivery.NewFileSink(afero.NewOsFs(), dir)
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, fileSink)
	}

	fanout, err := delivery.NewFanout(s.log, sinks...)
	if err != nil {
		return nil, fmt.Errorf("%w: enable [telegram], [nats] or set [output] dir", err)
	}

	s.log.Info("Delivering to %v", fanout.Names())

	return fanout, nil
}

func (s *service) buildPublisher() (*delivery.NatsPublisher, error) {
	jetstreamContext, err := s.natsConnection.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, s.cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		return nil, err
	}

	return delivery.NewNatsPublisher(s.natsConnection, store, delivery.NatsOptions{
		AudioSubject:  s.cfg.NATS.AudioCreatedSubject,
		DigestSubject: s.cfg.NATS.DigestSubject,
	}, s.log)
}

func printReport(cmd *cobra.Command, report pipeline.Report) {
	for _, source := range report.Sources {
		status := "skipped"

		switch {
		case source.Delivered:
			status = fmt.Sprintf("delivered (%s, voz %s)", ttsutils.FormatDuration(source.Duration), source.Voice)
		case source.Error != "":
			status = "failed: " + source.Error
		}

		cmd.Printf("%-20s %d item(s) %s\n", source.Source, source.Items, status)
	}

	cmd.Printf("%d bulletin(s) delivered\n", report.Delivered)
}
