package queue

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"chinese-translation-service/internal/domain"
	"chinese-translation-service/internal/domain/model"
	"chinese-translation-service/internal/domain/ports/repository"
)

// Event shapes for the progress stream. Field names are part of the wire
// protocol consumed by browser clients.

type ParagraphInfo struct {
	SegmentCount int    `json:"segment_count"`
	Indent       string `json:"indent"`
	Separator    string `json:"separator"`
}

type StartEvent struct {
	Type            string          `json:"type"`
	Total           int             `json:"total"`
	Paragraphs      []ParagraphInfo `json:"paragraphs"`
	FullTranslation string          `json:"fullTranslation,omitempty"`
}

type ProgressResult struct {
	Segment        string `json:"segment"`
	Pinyin         string `json:"pinyin"`
	English        string `json:"english"`
	Index          int    `json:"index"`
	ParagraphIndex int    `json:"paragraph_index"`
}

type ProgressEvent struct {
	Type    string         `json:"type"`
	Current int            `json:"current"`
	Total   int            `json:"total"`
	Result  ProgressResult `json:"result"`
}

type CompleteEvent struct {
	Type            string                  `json:"type"`
	Paragraphs      []model.ParagraphResult `json:"paragraphs"`
	FullTranslation string                  `json:"fullTranslation"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EmitFunc delivers one event to the consumer. A non-nil error aborts the
// stream (typically the client went away).
type EmitFunc func(event any) error

// Streamer turns a job's progress into an ordered event sequence. Terminal
// jobs replay their stored results; pending jobs are triggered and then
// observed live through the manager's progress table. Replaying the same
// terminal job yields an identical sequence every time.
type Streamer struct {
	mgr  *Manager
	repo repository.JobRepository
	log  *zerolog.Logger

	// startGrace gives a freshly triggered job time to leave pending
	// before the poll loop begins; pollInterval paces the loop.
	startGrace   time.Duration
	pollInterval time.Duration
}

func NewStreamer(mgr *Manager, repo repository.JobRepository, log *zerolog.Logger) *Streamer {
	return &Streamer{
		mgr:          mgr,
		repo:         repo,
		log:          log,
		startGrace:   500 * time.Millisecond,
		pollInterval: 150 * time.Millisecond,
	}
}

// Stream emits the event sequence for jobID until a terminal event is sent,
// the consumer rejects an event, or ctx is cancelled.
func (s *Streamer) Stream(ctx context.Context, jobID string, emit EmitFunc) error {
	job, err := s.repo.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return emit(ErrorEvent{Type: "error", Message: "Job not found"})
		}
		s.log.Error().Err(err).Str("job_id", jobID).Msg("stream lookup failed")
		return emit(ErrorEvent{Type: "error", Message: "Internal error"})
	}

	switch job.Status {
	case model.JobStatusCompleted:
		return s.replay(ctx, jobID, emit)
	case model.JobStatusFailed:
		return emit(ErrorEvent{Type: "error", Message: failureMessage(job.ErrorMessage)})
	case model.JobStatusPending:
		if err := s.mgr.StartProcessing(jobID, nil); err != nil {
			s.log.Error().Err(err).Str("job_id", jobID).Msg("stream could not start job")
			return emit(ErrorEvent{Type: "error", Message: "Could not start processing"})
		}
		if err := sleepCtx(ctx, s.startGrace); err != nil {
			return err
		}
	}

	return s.follow(ctx, jobID, emit)
}

// follow polls the in-memory progress table and emits events as the worker
// advances. Falls back to storage when the entry is missing (server
// restarted, or another consumer already cleaned up).
func (s *Streamer) follow(ctx context.Context, jobID string, emit EmitFunc) error {
	sentStart := false
	emitted := 0

	for {
		progress, ok := s.mgr.GetProgress(jobID)
		if !ok {
			done, err := s.finishFromStorage(ctx, jobID, emit)
			if done || err != nil {
				return err
			}
			if err := sleepCtx(ctx, s.pollInterval); err != nil {
				return err
			}
			continue
		}

		if !sentStart && progress.Total > 0 {
			// Live consumers render layout from progress events, so the
			// start event carries the count only.
			if err := emit(StartEvent{Type: "start", Total: progress.Total, Paragraphs: []ParagraphInfo{}}); err != nil {
				return err
			}
			sentStart = true
		}

		for emitted < len(progress.Results) {
			r := progress.Results[emitted]
			emitted++
			ev := ProgressEvent{
				Type:    "progress",
				Current: emitted,
				Total:   progress.Total,
				Result: ProgressResult{
					Segment:        r.Segment,
					Pinyin:         r.Pinyin,
					English:        r.English,
					Index:          r.GlobalIdx,
					ParagraphIndex: r.ParagraphIdx,
				},
			}
			if err := emit(ev); err != nil {
				return err
			}
		}

		switch progress.Status {
		case model.JobStatusFailed:
			return emit(ErrorEvent{Type: "error", Message: failureMessage(progress.Error)})
		case model.JobStatusCompleted:
			if err := s.emitComplete(ctx, jobID, progress.FullTranslation, emit); err != nil {
				return err
			}
			s.mgr.CleanupProgress(jobID)
			return nil
		}

		if err := sleepCtx(ctx, s.pollInterval); err != nil {
			return err
		}
	}
}

// finishFromStorage handles the no-progress-entry case. Returns done=true
// once a terminal event was emitted.
func (s *Streamer) finishFromStorage(ctx context.Context, jobID string, emit EmitFunc) (bool, error) {
	job, err := s.repo.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return true, emit(ErrorEvent{Type: "error", Message: "Job not found"})
		}
		return true, emit(ErrorEvent{Type: "error", Message: "Internal error"})
	}
	switch job.Status {
	case model.JobStatusCompleted:
		return true, s.replay(ctx, jobID, emit)
	case model.JobStatusFailed:
		return true, emit(ErrorEvent{Type: "error", Message: failureMessage(job.ErrorMessage)})
	}
	return false, nil
}

// replay emits the full event sequence for a completed job from storage.
func (s *Streamer) replay(ctx context.Context, jobID string, emit EmitFunc) error {
	jr, err := s.repo.FindWithResults(ctx, repository.NoTX, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return emit(ErrorEvent{Type: "error", Message: "Job not found"})
		}
		s.log.Error().Err(err).Str("job_id", jobID).Msg("stream replay load failed")
		return emit(ErrorEvent{Type: "error", Message: "Internal error"})
	}

	total := jr.TotalSegments()
	infos := make([]ParagraphInfo, len(jr.Paragraphs))
	for i, p := range jr.Paragraphs {
		infos[i] = ParagraphInfo{
			SegmentCount: len(p.Translations),
			Indent:       p.Indent,
			Separator:    p.Separator,
		}
	}
	start := StartEvent{
		Type:            "start",
		Total:           total,
		Paragraphs:      infos,
		FullTranslation: jr.Job.FullTranslation,
	}
	if err := emit(start); err != nil {
		return err
	}

	current := 0
	for i, p := range jr.Paragraphs {
		for _, t := range p.Translations {
			ev := ProgressEvent{
				Type:    "progress",
				Current: current + 1,
				Total:   total,
				Result: ProgressResult{
					Segment:        t.Segment,
					Pinyin:         t.Pinyin,
					English:        t.English,
					Index:          current,
					ParagraphIndex: i,
				},
			}
			if err := emit(ev); err != nil {
				return err
			}
			current++
		}
	}

	return emit(CompleteEvent{
		Type:            "complete",
		Paragraphs:      jr.Paragraphs,
		FullTranslation: jr.Job.FullTranslation,
	})
}

// emitComplete sends the terminal complete event using stored results, so
// live consumers end with the same payload a replay would produce.
func (s *Streamer) emitComplete(ctx context.Context, jobID, fullTranslation string, emit EmitFunc) error {
	jr, err := s.repo.FindWithResults(ctx, repository.NoTX, jobID)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("stream complete load failed")
		return emit(ErrorEvent{Type: "error", Message: "Internal error"})
	}
	return emit(CompleteEvent{
		Type:            "complete",
		Paragraphs:      jr.Paragraphs,
		FullTranslation: fullTranslation,
	})
}

func failureMessage(stored string) string {
	if stored == "" {
		return "Job failed"
	}
	return stored
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
