package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/celnetamit/hlwp/internal/observability"
)

// Uploader stores one artefact.
type Uploader interface {
	Upload(ctx context.Context, a Artifact) error
}

// Report summarises a publish run.
type Report struct {
	Uploaded []string      `json:"uploaded"`
	Failed   []string      `json:"failed,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Publisher builds the artefacts and uploads them.
type Publisher struct {
	builder  *Builder
	uploader Uploader
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewPublisher creates a Publisher. metrics may be nil.
func NewPublisher(builder *Builder, uploader Uploader, logger zerolog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		builder:  builder,
		uploader: uploader,
		logger:   logger.With().Str("component", "publisher").Logger(),
		metrics:  metrics,
	}
}

// Publish runs one build and uploads every artefact. Uploads continue past
// individual failures; the returned error joins all of them.
func (p *Publisher) Publish(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report
	defer func() {
		report.Duration = time.Since(start)
		if p.metrics != nil {
			p.metrics.RecordPublishRun(report.Duration.Seconds())
		}
	}()

	artifacts, err := p.builder.Build(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("build failed")
		return report, fmt.Errorf("publish: %w", err)
	}

	var errs []error
	for _, a := range artifacts {
		err := p.uploader.Upload(ctx, a)
		if p.metrics != nil {
			p.metrics.RecordPublishUpload(a.Name, err == nil)
		}
		if err != nil {
			p.logger.Error().Err(err).Str("artifact", a.Name).Msg("upload failed")
			report.Failed = append(report.Failed, a.Name)
			errs = append(errs, err)
			continue
		}
		report.Uploaded = append(report.Uploaded, a.Name)
	}

	p.logger.Info().
		Strs("uploaded", report.Uploaded).
		Int("failed", len(report.Failed)).
		Dur("duration", time.Since(start)).
		Msg("publish finished")

	if len(errs) > 0 {
		return report, fmt.Errorf("publish: %w", errors.Join(errs...))
	}
	return report, nil
}
