package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"chinese-translation-service/internal/domain"
	"chinese-translation-service/internal/domain/model"
	"chinese-translation-service/internal/domain/ports/adapter"
	"chinese-translation-service/internal/domain/ports/repository"
	"chinese-translation-service/internal/infra/dict"
	"chinese-translation-service/internal/infra/logging"
	"chinese-translation-service/internal/infra/metrics"
	"chinese-translation-service/internal/infra/text"
)

// waiter lets tests substitute the shared rate limiter.
type waiter interface {
	Wait()
}

// Progress is a point-in-time snapshot of a job's in-memory state. Results
// holds every segment result emitted so far, in global order.
type Progress struct {
	Status          model.JobStatus
	Current         int
	Total           int
	Results         []model.SegmentResult
	FullTranslation string
	Error           string
}

// ProgressCallback receives each segment result as the worker produces it.
type ProgressCallback func(jobID string, result model.SegmentResult)

// Manager owns the translation pipeline: it persists submitted jobs, hands
// them to the worker pool, and mirrors per-segment progress into an
// in-memory table that streaming consumers poll. Progress entries live
// until a consumer drains them via CleanupProgress; the database remains
// the source of truth for terminal state.
type Manager struct {
	repo       repository.JobRepository
	txm        repository.TransactionManager
	translator adapter.TranslatorAdapter
	dict       *dict.Dictionary
	limiter    waiter
	pool       *Pool
	log        *zerolog.Logger

	mu       sync.RWMutex
	progress map[string]*Progress
	running  map[string]struct{}
}

func NewManager(
	repo repository.JobRepository,
	txm repository.TransactionManager,
	translator adapter.TranslatorAdapter,
	dictionary *dict.Dictionary,
	limiter waiter,
	pool *Pool,
	log *zerolog.Logger,
) *Manager {
	return &Manager{
		repo:       repo,
		txm:        txm,
		translator: translator,
		dict:       dictionary,
		limiter:    limiter,
		pool:       pool,
		log:        log,
		progress:   make(map[string]*Progress),
		running:    make(map[string]struct{}),
	}
}

func (m *Manager) Start() { m.pool.Start() }

// Shutdown stops the pool. With wait, queued jobs finish first; without,
// they stay pending in storage and their queue slots are dropped.
func (m *Manager) Shutdown(wait bool) { m.pool.Shutdown(wait) }

// SubmitJob persists a new pending job and seeds its progress entry.
// Processing does not begin until StartProcessing is called.
func (m *Manager) SubmitJob(ctx context.Context, inputText, sourceType string) (string, error) {
	if strings.TrimSpace(inputText) == "" {
		return "", domain.ErrInvalidArgument
	}
	jobID, err := m.repo.Create(ctx, repository.NoTX, inputText, sourceType)
	if err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	m.mu.Lock()
	m.progress[jobID] = &Progress{Status: model.JobStatusPending}
	m.mu.Unlock()

	metrics.IncJobSubmitted()
	m.log.Info().Str("job_id", jobID).Str("source", sourceType).Msg("job submitted")
	return jobID, nil
}

// StartProcessing enqueues the job for a worker. Calling it again while the
// job is queued or running is a no-op, so multiple stream consumers cannot
// double-process a job.
func (m *Manager) StartProcessing(jobID string, cb ProgressCallback) error {
	m.mu.Lock()
	if _, ok := m.running[jobID]; ok {
		m.mu.Unlock()
		return nil
	}
	m.running[jobID] = struct{}{}
	m.mu.Unlock()

	err := m.pool.Submit(func() error {
		return m.processJob(jobID, cb)
	})
	if err != nil {
		m.mu.Lock()
		delete(m.running, jobID)
		m.mu.Unlock()
		return err
	}
	return nil
}

// GetProgress returns a copy of the job's progress entry.
func (m *Manager) GetProgress(jobID string) (Progress, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[jobID]
	if !ok {
		return Progress{}, false
	}
	snap := *p
	snap.Results = append([]model.SegmentResult(nil), p.Results...)
	return snap, true
}

// CleanupProgress releases the in-memory entry once a consumer has drained
// it. Safe to call for unknown IDs.
func (m *Manager) CleanupProgress(jobID string) {
	m.mu.Lock()
	delete(m.progress, jobID)
	m.mu.Unlock()
}

func (m *Manager) processJob(jobID string, cb ProgressCallback) error {
	defer func() {
		m.mu.Lock()
		delete(m.running, jobID)
		m.mu.Unlock()
	}()

	ctx := logging.WithJobID(context.Background(), jobID)
	log := logging.With(ctx, m.log)
	start := time.Now()

	err := m.runJob(ctx, jobID, cb)
	metrics.ObserveJobDuration(time.Since(start).Seconds())
	if err != nil {
		if ferr := m.repo.Fail(ctx, repository.NoTX, jobID, err.Error()); ferr != nil {
			log.Error().Err(ferr).Msg("failed to persist job failure")
		}
		m.mu.Lock()
		if p, ok := m.progress[jobID]; ok {
			p.Status = model.JobStatusFailed
			p.Error = err.Error()
		}
		m.mu.Unlock()
		metrics.IncJobProcessed(string(model.JobStatusFailed))
		log.Error().Err(err).Msg("job failed")
		return err
	}
	metrics.IncJobProcessed(string(model.JobStatusCompleted))
	log.Info().Dur("took", time.Since(start)).Msg("job completed")
	return nil
}

func (m *Manager) runJob(ctx context.Context, jobID string, cb ProgressCallback) error {
	if err := m.repo.UpdateStatus(ctx, repository.NoTX, jobID, model.JobStatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	m.setStatus(jobID, model.JobStatusProcessing)

	job, err := m.repo.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}

	paragraphs := text.SplitParagraphs(job.InputText)
	if len(paragraphs) == 0 {
		return fmt.Errorf("input has no content")
	}

	m.limiter.Wait()
	fullTranslation, err := m.translator.FullTranslate(ctx, job.InputText)
	if err != nil {
		return fmt.Errorf("full translation: %w", err)
	}

	segmented := make([][]string, len(paragraphs))
	total := 0
	for i, p := range paragraphs {
		m.limiter.Wait()
		segs, err := m.translator.Segment(ctx, p.Content)
		if err != nil {
			return fmt.Errorf("segment paragraph %d: %w", i, err)
		}
		segmented[i] = segs
		total += len(segs)
	}

	m.mu.Lock()
	if p, ok := m.progress[jobID]; ok {
		p.Total = total
		p.FullTranslation = fullTranslation
	}
	m.mu.Unlock()

	// All paragraph rows land in one transaction so a partial layout is
	// never visible to readers.
	err = m.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		for i, p := range paragraphs {
			if _, err := m.repo.SaveParagraph(ctx, tx, jobID, i, p.Indent, p.Separator); err != nil {
				return fmt.Errorf("save paragraph %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	globalIdx := 0
	for paraIdx, segs := range segmented {
		for segIdx, seg := range segs {
			var pinyinStr, english string
			if text.ShouldSkipSegment(seg) {
				metrics.IncSegment("skipped")
			} else {
				m.limiter.Wait()
				pinyinStr = text.ToPinyin(seg)
				hint := m.dict.Lookup(seg)
				if hint == "" {
					hint = adapter.NoDictionaryEntry
				}
				english, err = m.translator.Translate(ctx, seg, paragraphs[paraIdx].Content, hint)
				if err != nil {
					return fmt.Errorf("translate segment %d: %w", globalIdx, err)
				}
				metrics.IncSegment("translated")
			}

			if _, err := m.repo.SaveSegment(ctx, repository.NoTX, jobID, paraIdx, segIdx, seg, pinyinStr, english); err != nil {
				return fmt.Errorf("save segment %d: %w", globalIdx, err)
			}

			result := model.SegmentResult{
				ParagraphIdx: paraIdx,
				SegIdx:       segIdx,
				GlobalIdx:    globalIdx,
				Segment:      seg,
				Pinyin:       pinyinStr,
				English:      english,
			}
			globalIdx++

			m.mu.Lock()
			if p, ok := m.progress[jobID]; ok {
				p.Results = append(p.Results, result)
				p.Current = globalIdx
			}
			m.mu.Unlock()

			if cb != nil {
				cb(jobID, result)
			}
		}
	}

	if err := m.repo.Complete(ctx, repository.NoTX, jobID, fullTranslation); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	m.mu.Lock()
	if p, ok := m.progress[jobID]; ok {
		p.Status = model.JobStatusCompleted
		p.FullTranslation = fullTranslation
	}
	m.mu.Unlock()
	return nil
}

func (m *Manager) setStatus(jobID string, status model.JobStatus) {
	m.mu.Lock()
	if p, ok := m.progress[jobID]; ok {
		p.Status = status
	}
	m.mu.Unlock()
}
