package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/bulletin-service/internal/objectstore"
	"github.com/book-expert/bulletin-service/internal/tts/ttsutils"
	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	contentTypeMP3 = "audio/mpeg"
	audioExtension = ".mp3"
)

// ErrNatsMisconfigured indicates a publisher without a connection, archive or subject.
var ErrNatsMisconfigured = errors.New("nats publisher requires a connection, an archive and an audio subject")

// Archive stores bulletin audio with its metadata.
type Archive interface {
	Put(ctx context.Context, obj objectstore.Object, data []byte) error
}

// DigestEvent is published on the digest subject for every text digest.
type DigestEvent struct {
	Header events.EventHeader `json:"header"`
	Text   string             `json:"text"`
}

// NatsOptions configures a NatsPublisher.
type NatsOptions struct {
	AudioSubject  string
	DigestSubject string
	// WorkflowID correlates every event of one run.
	WorkflowID string
	TenantID   string
	UserID     string
}

// NatsPublisher archives bulletins in the object store and announces them with
// AudioChunkCreatedEvent messages. Digests are published only when a digest subject is set.
type NatsPublisher struct {
	natsConnection *nats.Conn
	archive        Archive
	opts           NatsOptions
	log            *logger.Logger
}

// NewNatsPublisher creates a publisher. An empty workflow id gets a fresh UUID.
func NewNatsPublisher(
	natsConnection *nats.Conn,
	archive Archive,
	opts NatsOptions,
	log *logger.Logger,
) (*NatsPublisher, error) {
	if natsConnection == nil || archive == nil || opts.AudioSubject == "" {
		return nil, ErrNatsMisconfigured
	}

	if opts.WorkflowID == "" {
		opts.WorkflowID = uuid.NewString()
	}

	return &NatsPublisher{natsConnection: natsConnection, archive: archive, opts: opts, log: log}, nil
}

// Name implements Sink.
func (p *NatsPublisher) Name() string {
	return "nats"
}

// SendText publishes a DigestEvent.
func (p *NatsPublisher) SendText(ctx context.Context, text string) error {
	if p.opts.DigestSubject == "" {
		return nil
	}

	return p.publish(ctx, p.opts.DigestSubject, &DigestEvent{Header: p.header(), Text: text})
}

// SendAudio uploads the bulletin and publishes an AudioChunkCreatedEvent pointing at it.
func (p *NatsPublisher) SendAudio(ctx context.Context, bulletin core.Bulletin) error {
	audioKey := ttsutils.SourceSlug(bulletin.Source) + "/" + uuid.NewString() + audioExtension

	err := p.archive.Put(ctx, objectstore.Object{
		Key:         audioKey,
		ContentType: contentTypeMP3,
		Source:      bulletin.Source,
		Voice:       bulletin.Voice,
	}, bulletin.Audio)
	if err != nil {
		return fmt.Errorf("failed to upload bulletin for %s: %w", bulletin.Source, err)
	}

	event := &events.AudioChunkCreatedEvent{
		Header:     p.header(),
		AudioKey:   audioKey,
		PageNumber: 1,
		TotalPages: 1,
	}

	err = p.publish(ctx, p.opts.AudioSubject, event)
	if err != nil {
		return err
	}

	p.log.Info("Published bulletin %s for %s on %s", audioKey, bulletin.Source, p.opts.AudioSubject)

	return nil
}

func (p *NatsPublisher) header() events.EventHeader {
	return events.EventHeader{
		Timestamp:  time.Now(),
		WorkflowID: p.opts.WorkflowID,
		EventID:    uuid.NewString(),
		UserID:     p.opts.UserID,
		TenantID:   p.opts.TenantID,
	}
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.natsConnection.Publish(subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish on %s: %w", subject, err)
	}

	flushErr := p.natsConnection.FlushWithContext(ctx)
	if flushErr != nil {
		return fmt.Errorf("failed to flush publish on %s: %w", subject, flushErr)
	}

	return nil
}
