// Package worker provides a NATS worker that runs the bulletin pipeline on request.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/book-expert/bulletin-service/internal/config"
	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/bulletin-service/internal/pipeline"
	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const defaultRunTimeout = 30 * time.Minute

var (
	// ErrSubjectEmpty indicates that the run subject is empty.
	ErrSubjectEmpty = errors.New("run subject cannot be empty")
	// ErrRunnerNil indicates a worker without a pipeline.
	ErrRunnerNil = errors.New("runner cannot be nil")
)

// Runner executes one pipeline run over the given sources.
type Runner interface {
	Run(ctx context.Context, sources []core.Source) (pipeline.Report, error)
}

// RunRequestedEvent asks for a run. An empty source list runs the whole catalog.
type RunRequestedEvent struct {
	Header  events.EventHeader `json:"header"`
	Sources []string           `json:"sources,omitempty"`
}

// RunCompletedEvent is the reply to a RunRequestedEvent.
type RunCompletedEvent struct {
	Header events.EventHeader `json:"header"`
	Report pipeline.Report    `json:"report"`
	Error  string             `json:"error,omitempty"`
}

// NatsWorker listens for run requests on a NATS subject and processes them one at a time.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	runner         Runner
	catalog        []core.Source
	timeout        time.Duration
	ready          chan struct{}
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker. A non-positive timeout uses 30 minutes.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	runner Runner,
	catalog []core.Source,
	timeout time.Duration,
	log *logger.Logger,
) (*NatsWorker, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrSubjectEmpty
	}

	if runner == nil {
		return nil, ErrRunnerNil
	}

	if timeout <= 0 {
		timeout = defaultRunTimeout
	}

	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		runner:         runner,
		catalog:        catalog,
		timeout:        timeout,
		ready:          make(chan struct{}),
		log:            log,
	}, nil
}

// Run starts the worker and begins listening for messages. Messages are delivered
// sequentially, so runs never overlap.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, func(msg *nats.Msg) {
		w.handleMessage(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	w.log.Info("Waiting for run requests on %s", w.subject)
	close(w.ready)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

// Ready is closed once Run has subscribed.
func (w *NatsWorker) Ready() <-chan struct{} {
	return w.ready
}

func (w *NatsWorker) handleMessage(parent context.Context, msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	event, err := parseEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse run request: %v", err)
		w.reply(msg, &RunCompletedEvent{Header: newHeader(events.EventHeader{}), Error: err.Error()})

		return
	}

	reply := &RunCompletedEvent{Header: newHeader(event.Header)}

	sources, err := config.SelectSources(w.catalog, event.Sources)
	if err != nil {
		w.log.Error("Rejected run request %s: %v", event.Header.WorkflowID, err)
		reply.Error = err.Error()
		w.reply(msg, reply)

		return
	}

	w.log.Info("Run %s requested for %d source(s)", reply.Header.WorkflowID, len(sources))

	report, runErr := w.runner.Run(ctx, sources)
	reply.Report = report

	if runErr != nil {
		w.log.Error("Run %s failed: %v", reply.Header.WorkflowID, runErr)
		reply.Error = runErr.Error()
	}

	w.reply(msg, reply)
}

// reply responds when the request carries a reply subject.
func (w *NatsWorker) reply(msg *nats.Msg, event *RunCompletedEvent) {
	if msg.Reply == "" {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		w.log.Error("Failed to marshal reply event: %v", err)

		return
	}

	err = msg.Respond(data)
	if err != nil {
		w.log.Error("Failed to publish reply event for workflow %s: %v", event.Header.WorkflowID, err)
	}
}

func parseEvent(msg *nats.Msg) (*RunRequestedEvent, error) {
	var event RunRequestedEvent

	if len(msg.Data) == 0 {
		return &event, nil
	}

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}

// newHeader derives a reply header that keeps the request's workflow, user and tenant.
func newHeader(request events.EventHeader) events.EventHeader {
	workflowID := request.WorkflowID
	if workflowID == "" {
		workflowID = uuid.NewString()
	}

	return events.EventHeader{
		Timestamp:  time.Now(),
		WorkflowID: workflowID,
		EventID:    uuid.NewString(),
		UserID:     request.UserID,
		TenantID:   request.TenantID,
	}
}
