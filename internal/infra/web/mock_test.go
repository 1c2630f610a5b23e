package web

import (
	"context"
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

// passTx runs the callback without a real transaction.
type passTx struct{}

func (passTx) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

type memJobRepo struct {
	mu         sync.Mutex
	seq        int
	jobs       map[string]*model.Job
	paragraphs map[string][]model.Paragraph
	segments   map[string][]model.Segment
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
	return nil
}

func (m *memJobRepo) Fail(ctx context.Context, tx repository.Tx, id string, message string) error {
	return m.UpdateStatus(ctx, tx, id, model.JobStatusFailed, message)
}

func (m *memJobRepo) SaveParagraph(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx int, indent, separator string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("%s-p%d", jobID, paragraphIdx)
	m.paragraphs[jobID] = append(m.paragraphs[jobID], model.Paragraph{
		ID: id, JobID: jobID, ParagraphIdx: paragraphIdx, Indent: indent, Separator: separator,
	})
	return id, nil
}

func (m *memJobRepo) SaveSegment(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx, segIdx int, segmentText, pinyin, english string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("%s-p%d-s%d", jobID, paragraphIdx, segIdx)
	m.segments[jobID] = append(m.segments[jobID], model.Segment{
		ID: id, JobID: jobID, ParagraphIdx: paragraphIdx, SegIdx: segIdx,
		SegmentText: segmentText, Pinyin: pinyin, English: english,
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
					Segment: s.SegmentText, Pinyin: s.Pinyin, English: s.English,
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
	sort.Slice(all, func(a, b int) bool { return all[a].ID > all[b].ID })
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

// stubTranslator satisfies the translator port with canned responses so
// handler tests can exercise the live pipeline.
type stubTranslator struct{}

func (stubTranslator) Segment(ctx context.Context, text string) ([]string, error) {
	return []string{text}, nil
}

func (stubTranslator) Translate(ctx context.Context, segment, sentenceContext, dictionaryEntry string) (string, error) {
	return "gloss", nil
}

func (stubTranslator) FullTranslate(ctx context.Context, text string) (string, error) {
	return "full", nil
}

type noWait struct{}

func (noWait) Wait() {}
