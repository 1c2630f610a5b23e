package repository

import (
	"context"

	"chinese-translation-service/internal/domain/model"
)

// JobRepository is the persistence gateway for translation jobs and their
// paragraph/segment results. Implementations must keep segments ordered by
// (paragraph_idx, seg_idx) in FindWithResults.
type JobRepository interface {
	// Create persists a new pending job and returns its id.
	Create(ctx context.Context, tx Tx, inputText, sourceType string) (string, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)
	// UpdateStatus sets status and (possibly empty) error message.
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.JobStatus, errorMessage string) error
	// Complete marks the job completed and stores the full translation.
	Complete(ctx context.Context, tx Tx, id string, fullTranslation string) error
	// Fail marks the job failed with a human-readable message.
	Fail(ctx context.Context, tx Tx, id string, message string) error

	// SaveParagraph stores paragraph whitespace metadata; must be called
	// before any segment of that paragraph. Returns the record id.
	SaveParagraph(ctx context.Context, tx Tx, jobID string, paragraphIdx int, indent, separator string) (string, error)
	// SaveSegment stores one translated (or skipped) segment. Returns the record id.
	SaveSegment(ctx context.Context, tx Tx, jobID string, paragraphIdx, segIdx int, segmentText, pinyin, english string) (string, error)

	// FindWithResults returns the job plus its ordered paragraph/segment
	// structure, or domain.ErrNotFound.
	FindWithResults(ctx context.Context, tx Tx, id string) (*model.JobWithResults, error)
	// SegmentCounts returns (translated, total) persisted segment counts,
	// where translated counts segments with non-empty pinyin or english.
	SegmentCounts(ctx context.Context, tx Tx, jobID string) (int, int, error)

	// List returns a page of jobs newest-first plus the unpaged total.
	// An empty status means no filter.
	List(ctx context.Context, tx Tx, limit, offset int, status model.JobStatus) ([]*model.Job, int, error)
	// Delete removes a job and cascades to its results. Administrative
	// operation; the scheduler itself never deletes jobs.
	Delete(ctx context.Context, tx Tx, id string) error
}
