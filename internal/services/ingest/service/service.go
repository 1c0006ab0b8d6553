// Package service runs the ingestion loop: adapters in, normalized listings out
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"micdrop/internal/adapters/source"
	"micdrop/internal/core/normalize"
	"micdrop/internal/platform/logger"
	pstrings "micdrop/internal/platform/strings"
	"micdrop/internal/services/ingest/domain"
	"micdrop/internal/services/ingest/repo"
	listdom "micdrop/internal/services/listings/domain"
)

// Config for the ingest runner
type Config struct {
	Interval    time.Duration
	Cities      []string
	RadiusMiles int
	WindowDays  int

	// MessageCap bounds audit-log messages so one giant upstream error
	// cannot bloat the table
	MessageCap int
}

// Runner drives ingestion: a ticker loop for worker mode and RunNow for
// manual or API-triggered passes. Both share one single-flight guard
type Runner struct {
	adapters []source.Adapter
	gate     *RobotsGate
	writer   listdom.WriterPort
	logs     repo.Storage
	norm     *normalize.Normalizer
	cfg      Config
	log      logger.Logger

	mu sync.Mutex
}

// NewRunner constructs the runner. gate may be nil when no crawling adapter
// is wired
func NewRunner(
	adapters []source.Adapter,
	gate *RobotsGate,
	writer listdom.WriterPort,
	logs repo.Storage,
	cfg Config,
) *Runner {
	if writer == nil {
		panic("ingest.Runner requires a non nil WriterPort")
	}
	if logs == nil {
		panic("ingest.Runner requires a non nil log Storage")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.MessageCap <= 0 {
		cfg.MessageCap = 500
	}
	return &Runner{
		adapters: adapters,
		gate:     gate,
		writer:   writer,
		logs:     logs,
		norm:     normalize.New(),
		cfg:      cfg,
		log:      *logger.Named("ingest"),
	}
}

// Run blocks, executing one pass immediately and then one per interval
// until ctx is cancelled
func (s *Runner) Run(ctx context.Context) error {
	tick := time.NewTicker(s.cfg.Interval)
	defer tick.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Runner) runOnce(ctx context.Context) {
	if _, err := s.RunNow(ctx); err != nil && err != domain.ErrRunInFlight {
		s.log.Error().Err(err).Msg("ingest pass failed")
	}
}

// RunNow implements domain.RunnerPort. Overlapping calls are rejected rather
// than queued; the next tick will pick up whatever this run missed
func (s *Runner) RunNow(ctx context.Context) (domain.RunReport, error) {
	if !s.mu.TryLock() {
		return domain.RunReport{}, domain.ErrRunInFlight
	}
	defer s.mu.Unlock()

	report := domain.RunReport{StartedAt: time.Now().UTC()}

	if s.gate != nil {
		s.gate.Refresh(ctx)
	}

	args := source.FetchArgs{
		Cities:      s.cfg.Cities,
		RadiusMiles: s.cfg.RadiusMiles,
		WindowDays:  s.cfg.WindowDays,
		Now:         report.StartedAt,
	}

	// sources run serially; one failing or panicking source never takes
	// down the rest of the pass
	for _, a := range s.adapters {
		if !a.Enabled() {
			s.log.Debug().Str("source", a.Name()).Msg("adapter disabled, skipping")
			continue
		}
		rep := s.runSource(ctx, a, args)
		report.Sources = append(report.Sources, rep)

		if err := s.logs.Append(ctx, domain.LogEntry{
			Source:    rep.Source,
			Succeeded: rep.Succeeded,
			Message:   rep.Message,
		}); err != nil {
			s.log.Error().Err(err).Str("source", rep.Source).Msg("append ingest log failed")
		}
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}

func (s *Runner) runSource(ctx context.Context, a source.Adapter, args source.FetchArgs) (rep domain.SourceReport) {
	rep.Source = a.Name()
	defer func() {
		if r := recover(); r != nil {
			rep.Succeeded = false
			rep.Message = pstrings.Truncate(fmt.Sprintf("panic: %v", r), s.cfg.MessageCap)
			s.log.Error().Str("source", rep.Source).Interface("panic", r).Msg("source panicked")
		}
	}()

	batch, err := a.Fetch(ctx, args)
	if err != nil {
		rep.Message = pstrings.Truncate(err.Error(), s.cfg.MessageCap)
		s.log.Error().Err(err).Str("source", rep.Source).Msg("fetch failed")
		return rep
	}

	for _, raw := range batch.Candidates {
		n, err := s.norm.Normalize(raw)
		if err != nil {
			s.log.Debug().Err(err).Str("source", rep.Source).Str("title", raw.Title).Msg("candidate rejected")
			continue
		}
		rep.Candidates++

		out, err := s.writer.SaveCandidate(ctx, n.Listing, n.WhenKey)
		if err != nil {
			rep.Message = pstrings.Truncate(err.Error(), s.cfg.MessageCap)
			s.log.Error().Err(err).Str("source", rep.Source).Msg("save candidate failed")
			return rep
		}
		if out.Created {
			rep.Created++
		} else {
			rep.Updated++
		}
	}

	for _, l := range batch.Leads {
		if _, err := s.writer.RecordLead(ctx, listdom.LeadInput{
			URL:     l.URL,
			Source:  l.Source,
			Title:   l.Title,
			Snippet: l.Snippet,
			Raw:     l.Raw,
		}); err != nil {
			rep.Message = pstrings.Truncate(err.Error(), s.cfg.MessageCap)
			s.log.Error().Err(err).Str("source", rep.Source).Msg("record lead failed")
			return rep
		}
		rep.Leads++
	}

	rep.Succeeded = true
	rep.Message = fmt.Sprintf("ingested %d", rep.Created+rep.Updated)
	return rep
}

// Log implements domain.LogPort
func (s *Runner) Log(ctx context.Context, q domain.LogQuery) ([]domain.LogEntry, error) {
	return s.logs.List(ctx, q)
}
