// Package pipeline runs the bulletin workflow: collect, group, compose, render and deliver,
// one source at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/book-expert/bulletin-service/internal/tts"
	"github.com/book-expert/bulletin-service/internal/tts/text"
	"github.com/book-expert/bulletin-service/internal/tts/ttsutils"
	"github.com/book-expert/logger"
)

// Status messages sent to the audience.
const (
	msgStart      = "🎙️ Iniciando: vou coletar, resumir por temas e enviar 1 áudio por fonte (voz masculina, PT-BR)…"
	msgDoneFmt    = "✅ Boletins gerados: %d fonte(s)."
	msgNothingNew = "ℹ️ Sem novidades para montar boletins hoje (ou já lidas)."
	msgFailureFmt = "❌ Falha ao sintetizar parte do %s: %v"
	titleFmt      = "%s — Boletim (voz: %s)"
)

// ErrPipelineIncomplete indicates a pipeline missing one of its stages.
var ErrPipelineIncomplete = errors.New("pipeline requires collector, grouper, composer, renderer, deliverer and ledger")

// Collector gathers the unseen items of a source.
type Collector interface {
	Collect(ctx context.Context, source core.Source) []core.Item
}

// Grouper buckets items by topic.
type Grouper interface {
	Group(items []core.Item) []core.TopicGroup
}

// Composer turns topic groups into a narration script.
type Composer interface {
	Compose(ctx context.Context, source string, groups []core.TopicGroup) string
}

// Renderer synthesizes a script into one audio stream.
type Renderer interface {
	Render(ctx context.Context, script string, names []string) (*tts.RenderResult, error)
}

// Ledger records the items already delivered.
type Ledger interface {
	Add(id string)
	SaveBestEffort()
}

// Stages groups the collaborators of a Pipeline.
type Stages struct {
	Collector Collector
	Grouper   Grouper
	Composer  Composer
	Renderer  Renderer
	Deliverer core.Deliverer
	Ledger    Ledger
}

// SourceReport describes the outcome for one source.
type SourceReport struct {
	Source    string        `json:"source"`
	Items     int           `json:"items"`
	Delivered bool          `json:"delivered"`
	Voice     string        `json:"voice,omitempty"`
	Duration  time.Duration `json:"duration"`
	Failed    int           `json:"failed"`
	Error     string        `json:"error,omitempty"`
}

// Report summarizes one run.
type Report struct {
	Sources   []SourceReport `json:"sources"`
	Delivered int            `json:"delivered"`
}

// Pipeline processes the sources of a catalog sequentially.
type Pipeline struct {
	stages Stages
	log    *logger.Logger
}

// New creates a pipeline.
func New(stages Stages, log *logger.Logger) (*Pipeline, error) {
	if stages.Collector == nil || stages.Grouper == nil || stages.Composer == nil ||
		stages.Renderer == nil || stages.Deliverer == nil || stages.Ledger == nil {
		return nil, ErrPipelineIncomplete
	}

	return &Pipeline{stages: stages, log: log}, nil
}

// Run produces one bulletin per source with new items, in catalog order. Items of a source
// are marked seen only once its audio was delivered; the ledger is saved at the end.
func (p *Pipeline) Run(ctx context.Context, sources []core.Source) (Report, error) {
	var report Report

	p.notify(ctx, msgStart)

	for _, source := range sources {
		if ctx.Err() != nil {
			break
		}

		sourceReport := p.runSource(ctx, source)
		if sourceReport.Delivered {
			report.Delivered++
		}

		report.Sources = append(report.Sources, sourceReport)
	}

	p.stages.Ledger.SaveBestEffort()

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run cancelled: %w", err)
	}

	if report.Delivered > 0 {
		p.notify(ctx, fmt.Sprintf(msgDoneFmt, report.Delivered))
	} else {
		p.notify(ctx, msgNothingNew)
	}

	p.log.Info("Run complete: %d of %d source(s) delivered", report.Delivered, len(sources))

	return report, nil
}

func (p *Pipeline) runSource(ctx context.Context, source core.Source) SourceReport {
	report := SourceReport{Source: source.Name}

	items := p.stages.Collector.Collect(ctx, source)
	report.Items = len(items)

	if len(items) == 0 {
		p.log.Info("No new items for %s", source.Name)

		return report
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}

	names := text.ExtractEnglishNames(titles, source.Language)

	groups := p.stages.Grouper.Group(items)
	script := p.stages.Composer.Compose(ctx, source.Name, groups)

	p.notify(ctx, Digest(source.Name, groups))

	result, err := p.stages.Renderer.Render(ctx, script, names)
	if result != nil {
		report.Failed = result.Failed
	}

	if err != nil {
		report.Error = err.Error()
		p.log.Error("Rendering %s failed: %v", source.Name, err)
		p.notify(ctx, fmt.Sprintf(msgFailureFmt, source.Name, err))

		return report
	}

	bulletin := core.Bulletin{
		Source:    source.Name,
		Title:     fmt.Sprintf(titleFmt, source.Name, result.Voice),
		Performer: source.Name,
		Filename:  ttsutils.BulletinFilename(source.Name, result.Stream.Format.Extension()),
		Voice:     result.Voice,
		Audio:     result.Stream.Data,
		Duration:  result.Stream.EstimatedDuration(),
	}

	err = p.stages.Deliverer.SendAudio(ctx, bulletin)
	if err != nil {
		report.Error = err.Error()
		p.log.Error("Delivering %s failed, items stay unseen: %v", source.Name, err)

		return report
	}

	for _, item := range items {
		p.stages.Ledger.Add(item.ID)
	}

	report.Delivered = true
	report.Voice = result.Voice
	report.Duration = bulletin.Duration

	p.log.Info("Delivered %s (%d item(s), %s)", bulletin.Filename, len(items),
		ttsutils.FormatFileSize(int64(len(bulletin.Audio))))

	return report
}

// notify sends a status or digest text; failures are logged only.
func (p *Pipeline) notify(ctx context.Context, message string) {
	if strings.TrimSpace(message) == "" {
		return
	}

	err := p.stages.Deliverer.SendText(ctx, message)
	if err != nil {
		p.log.Warn("Text delivery failed: %v", err)
	}
}
