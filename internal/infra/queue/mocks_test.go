package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"chinese-translation-service/internal/domain"
	"chinese-translation-service/internal/domain/model"
	"chinese-translation-service/internal/domain/ports/repository"
)

// --- Fake transaction manager ---

// fakeTxHandle marks calls that arrived inside a WithTx scope.
type fakeTxHandle struct{}

type fakeTxManager struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fn(ctx, fakeTxHandle{})
}

func (f *fakeTxManager) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// --- In-memory JobRepository ---

type memJobRepo struct {
	mu          sync.Mutex
	seq         int
	jobs        map[string]*model.Job
	paragraphs  map[string][]model.Paragraph
	segments    map[string][]model.Segment
	paragraphTx []repository.Tx // tx handle seen by each SaveParagraph call
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{
		jobs:       make(map[string]*model.Job),
		paragraphs: make(map[string][]model.Paragraph),
		segments:   make(map[string][]model.Segment),
	}
}

func (m *memJobRepo) Create(ctx context.Context, tx repository.Tx, inputText, sourceType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := "job-" + strconv.Itoa(m.seq)
	now := time.Now()
	m.jobs[id] = &model.Job{
		ID:         id,
		Status:     model.JobStatusPending,
		SourceType: sourceType,
		InputText:  inputText,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return id, nil
}

func (m *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = status
	j.ErrorMessage = errorMessage
	j.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) Complete(ctx context.Context, tx repository.Tx, id string, fullTranslation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = model.JobStatusCompleted
	j.FullTranslation = fullTranslation
	j.ErrorMessage = ""
	j.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) Fail(ctx context.Context, tx repository.Tx, id string, message string) error {
	return m.UpdateStatus(ctx, tx, id, model.JobStatusFailed, message)
}

func (m *memJobRepo) SaveParagraph(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx int, indent, separator string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[jobID]; !ok {
		return "", domain.ErrNotFound
	}
	id := fmt.Sprintf("%s-p%d", jobID, paragraphIdx)
	m.paragraphs[jobID] = append(m.paragraphs[jobID], model.Paragraph{
		ID:           id,
		JobID:        jobID,
		ParagraphIdx: paragraphIdx,
		Indent:       indent,
		Separator:    separator,
	})
	m.paragraphTx = append(m.paragraphTx, tx)
	return id, nil
}

func (m *memJobRepo) paragraphTxHandles() []repository.Tx {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.Tx(nil), m.paragraphTx...)
}

func (m *memJobRepo) SaveSegment(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx, segIdx int, segmentText, pinyin, english string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[jobID]; !ok {
		return "", domain.ErrNotFound
	}
	id := fmt.Sprintf("%s-p%d-s%d", jobID, paragraphIdx, segIdx)
	m.segments[jobID] = append(m.segments[jobID], model.Segment{
		ID:           id,
		JobID:        jobID,
		ParagraphIdx: paragraphIdx,
		SegIdx:       segIdx,
		SegmentText:  segmentText,
		Pinyin:       pinyin,
		English:      english,
		CreatedAt:    time.Now(),
	})
	return id, nil
}

func (m *memJobRepo) FindWithResults(ctx context.Context, tx repository.Tx, id string) (*model.JobWithResults, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j

	paras := append([]model.Paragraph(nil), m.paragraphs[id]...)
	sort.Slice(paras, func(a, b int) bool { return paras[a].ParagraphIdx < paras[b].ParagraphIdx })
	segs := append([]model.Segment(nil), m.segments[id]...)
	sort.Slice(segs, func(a, b int) bool {
		if segs[a].ParagraphIdx != segs[b].ParagraphIdx {
			return segs[a].ParagraphIdx < segs[b].ParagraphIdx
		}
		return segs[a].SegIdx < segs[b].SegIdx
	})

	out := &model.JobWithResults{Job: &cp}
	for _, p := range paras {
		pr := model.ParagraphResult{Indent: p.Indent, Separator: p.Separator}
		for _, s := range segs {
			if s.ParagraphIdx == p.ParagraphIdx {
				pr.Translations = append(pr.Translations, model.SegmentTranslation{
					Segment: s.SegmentText,
					Pinyin:  s.Pinyin,
					English: s.English,
				})
			}
		}
		out.Paragraphs = append(out.Paragraphs, pr)
	}
	return out, nil
}

func (m *memJobRepo) SegmentCounts(ctx context.Context, tx repository.Tx, jobID string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[jobID]; !ok {
		return 0, 0, domain.ErrNotFound
	}
	translated, total := 0, 0
	for _, s := range m.segments[jobID] {
		total++
		if s.Pinyin != "" || s.English != "" {
			translated++
		}
	}
	return translated, total, nil
}

func (m *memJobRepo) List(ctx context.Context, tx repository.Tx, limit, offset int, status model.JobStatus) ([]*model.Job, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*model.Job
	for _, j := range m.jobs {
		if status != "" && j.Status != status {
			continue
		}
		cp := *j
		all = append(all, &cp)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].CreatedAt.After(all[b].CreatedAt) })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memJobRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.jobs, id)
	delete(m.paragraphs, id)
	delete(m.segments, id)
	return nil
}

func (m *memJobRepo) segmentRows(jobID string) []model.Segment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Segment(nil), m.segments[jobID]...)
}

// --- Fake translator ---

type fakeTranslator struct {
	mu             sync.Mutex
	segmentCalls   int
	translateCalls int
	fullCalls      int

	segments     map[string][]string // paragraph content -> segments
	translations map[string]string   // segment -> english
	failSegment  string              // segment whose translation fails
	blockFull    chan struct{}       // when set, FullTranslate waits here
}

func newFakeTranslator() *fakeTranslator {
	return &fakeTranslator{
		segments:     make(map[string][]string),
		translations: make(map[string]string),
	}
}

func (f *fakeTranslator) Segment(ctx context.Context, text string) ([]string, error) {
	f.mu.Lock()
	f.segmentCalls++
	segs, ok := f.segments[text]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no canned segmentation for %q", text)
	}
	return append([]string(nil), segs...), nil
}

func (f *fakeTranslator) Translate(ctx context.Context, segment, sentenceContext, dictionaryEntry string) (string, error) {
	f.mu.Lock()
	f.translateCalls++
	fail := f.failSegment != "" && segment == f.failSegment
	out := f.translations[segment]
	f.mu.Unlock()
	if fail {
		return "", errors.New("provider unavailable")
	}
	return out, nil
}

func (f *fakeTranslator) FullTranslate(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.fullCalls++
	block := f.blockFull
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return "full translation", nil
}

func (f *fakeTranslator) calls() (segment, translate, full int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.segmentCalls, f.translateCalls, f.fullCalls
}

// --- Counting limiter ---

type countingLimiter struct {
	mu    sync.Mutex
	waits int
}

func (c *countingLimiter) Wait() {
	c.mu.Lock()
	c.waits++
	c.mu.Unlock()
}

func (c *countingLimiter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waits
}
