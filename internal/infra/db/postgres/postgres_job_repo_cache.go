package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chinese-translation-service/internal/domain/model"
	"chinese-translation-service/internal/domain/ports/repository"
	"chinese-translation-service/internal/infra/metrics"
	red "chinese-translation-service/internal/infra/redis"
)

var _ repository.JobRepository = (*jobRepoCacheDecorator)(nil)

// jobRepoCacheDecorator caches FindWithResults for terminal jobs in Redis.
// Completed jobs are immutable, so the cache only needs invalidation on
// Delete. In-flight jobs are never cached: their result set is still
// growing.
type jobRepoCacheDecorator struct {
	inner repository.JobRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewJobRepoCacheDecorator(inner repository.JobRepository, cache red.RedisClient, ttl time.Duration) repository.JobRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &jobRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

type cachedResults struct {
	Job        *model.Job              `json:"job"`
	Paragraphs []model.ParagraphResult `json:"paragraphs"`
}

func jobResultsKey(id string) string { return fmt.Sprintf("job_results:%s", id) }

func (d *jobRepoCacheDecorator) FindWithResults(ctx context.Context, tx repository.Tx, id string) (*model.JobWithResults, error) {
	key := jobResultsKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var c cachedResults
		if json.Unmarshal([]byte(val), &c) == nil && c.Job != nil {
			metrics.IncCacheRequest("job_results", "hit")
			return &model.JobWithResults{Job: c.Job, Paragraphs: c.Paragraphs}, nil
		}
	}

	metrics.IncCacheRequest("job_results", "miss")
	res, err := d.inner.FindWithResults(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if res.Job.Status.Terminal() {
		if b, err := json.Marshal(cachedResults{Job: res.Job, Paragraphs: res.Paragraphs}); err == nil {
			_ = d.cache.Set(ctx, key, b, d.ttl)
		}
	}
	return res, nil
}

func (d *jobRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	_ = d.cache.Del(ctx, jobResultsKey(id))
	return d.inner.Delete(ctx, tx, id)
}

// Pass-through for everything else.

func (d *jobRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, inputText, sourceType string) (string, error) {
	return d.inner.Create(ctx, tx, inputText, sourceType)
}

func (d *jobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	return d.inner.FindByID(ctx, tx, id)
}

func (d *jobRepoCacheDecorator) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus, errorMessage string) error {
	return d.inner.UpdateStatus(ctx, tx, id, status, errorMessage)
}

func (d *jobRepoCacheDecorator) Complete(ctx context.Context, tx repository.Tx, id string, fullTranslation string) error {
	return d.inner.Complete(ctx, tx, id, fullTranslation)
}

func (d *jobRepoCacheDecorator) Fail(ctx context.Context, tx repository.Tx, id string, message string) error {
	return d.inner.Fail(ctx, tx, id, message)
}

func (d *jobRepoCacheDecorator) SaveParagraph(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx int, indent, separator string) (string, error) {
	return d.inner.SaveParagraph(ctx, tx, jobID, paragraphIdx, indent, separator)
}

func (d *jobRepoCacheDecorator) SaveSegment(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx, segIdx int, segmentText, pinyin, english string) (string, error) {
	return d.inner.SaveSegment(ctx, tx, jobID, paragraphIdx, segIdx, segmentText, pinyin, english)
}

func (d *jobRepoCacheDecorator) SegmentCounts(ctx context.Context, tx repository.Tx, jobID string) (int, int, error) {
	return d.inner.SegmentCounts(ctx, tx, jobID)
}

func (d *jobRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, limit, offset int, status model.JobStatus) ([]*model.Job, int, error) {
	return d.inner.List(ctx, tx, limit, offset, status)
}
