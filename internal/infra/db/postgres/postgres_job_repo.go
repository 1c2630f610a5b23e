package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"chinese-translation-service/internal/domain"
	"chinese-translation-service/internal/domain/model"
	"chinese-translation-service/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *jobRepo {
	return &jobRepo{pool: pool}
}

const jobColumns = `id, status, source_type, input_text,
COALESCE(full_translation, ''), COALESCE(error_message, ''), metadata, created_at, updated_at`

func (r *jobRepo) Create(ctx context.Context, tx repository.Tx, inputText, sourceType string) (string, error) {
	id := ulid.Make().String()
	now := time.Now().UTC()
	meta, _ := json.Marshal(map[string]string{})

	const q = `
INSERT INTO jobs (id, status, source_type, input_text, metadata, created_at, updated_at)
VALUES ($1, 'pending', $2, $3, $4, $5, $5);`

	if _, err := execSQL(ctx, r.pool, tx, q, id, sourceType, inputText, meta, now); err != nil {
		return "", err
	}
	return id, nil
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	var status string
	var meta []byte
	err := row.Scan(&j.ID, &status, &j.SourceType, &j.InputText,
		&j.FullTranslation, &j.ErrorMessage, &meta, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	j.Status = model.JobStatus(status)
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &j.Metadata)
	}
	return &j, nil
}

func (r *jobRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus, errorMessage string) error {
	const q = `
UPDATE jobs SET status = $2, error_message = NULLIF($3, ''), updated_at = $4
WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, id, string(status), errorMessage, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Complete(ctx context.Context, tx repository.Tx, id string, fullTranslation string) error {
	const q = `
UPDATE jobs SET status = 'completed', full_translation = $2, error_message = NULL, updated_at = $3
WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, id, fullTranslation, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Fail(ctx context.Context, tx repository.Tx, id string, message string) error {
	return r.UpdateStatus(ctx, tx, id, model.JobStatusFailed, message)
}

func (r *jobRepo) SaveParagraph(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx int, indent, separator string) (string, error) {
	id := uuid.NewString()
	const q = `
INSERT INTO job_paragraphs (id, job_id, paragraph_idx, indent, separator)
VALUES ($1, $2, $3, $4, $5);`

	if _, err := execSQL(ctx, r.pool, tx, q, id, jobID, paragraphIdx, indent, separator); err != nil {
		return "", err
	}
	return id, nil
}

func (r *jobRepo) SaveSegment(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx, segIdx int, segmentText, pinyin, english string) (string, error) {
	id := uuid.NewString()
	const q = `
INSERT INTO job_segments (id, job_id, paragraph_idx, seg_idx, segment_text, pinyin, english, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	if _, err := execSQL(ctx, r.pool, tx, q, id, jobID, paragraphIdx, segIdx, segmentText, pinyin, english, time.Now().UTC()); err != nil {
		return "", err
	}
	return id, nil
}

func (r *jobRepo) FindWithResults(ctx context.Context, tx repository.Tx, id string) (*model.JobWithResults, error) {
	job, err := r.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	paraRows, err := pickRows(ctx, r.pool, tx, `
SELECT paragraph_idx, indent, separator FROM job_paragraphs
WHERE job_id = $1 ORDER BY paragraph_idx;`, id)
	if err != nil {
		return nil, err
	}
	defer paraRows.Close()

	paragraphs := make([]model.ParagraphResult, 0, 4)
	byIdx := make(map[int]int)
	for paraRows.Next() {
		var idx int
		var p model.ParagraphResult
		if err := paraRows.Scan(&idx, &p.Indent, &p.Separator); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		p.Translations = []model.SegmentTranslation{}
		byIdx[idx] = len(paragraphs)
		paragraphs = append(paragraphs, p)
	}
	if err := paraRows.Err(); err != nil {
		return nil, err
	}

	segRows, err := pickRows(ctx, r.pool, tx, `
SELECT paragraph_idx, segment_text, pinyin, english FROM job_segments
WHERE job_id = $1 ORDER BY paragraph_idx, seg_idx;`, id)
	if err != nil {
		return nil, err
	}
	defer segRows.Close()

	for segRows.Next() {
		var idx int
		var t model.SegmentTranslation
		if err := segRows.Scan(&idx, &t.Segment, &t.Pinyin, &t.English); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if pos, ok := byIdx[idx]; ok {
			paragraphs[pos].Translations = append(paragraphs[pos].Translations, t)
		}
	}
	if err := segRows.Err(); err != nil {
		return nil, err
	}

	return &model.JobWithResults{Job: job, Paragraphs: paragraphs}, nil
}

func (r *jobRepo) SegmentCounts(ctx context.Context, tx repository.Tx, jobID string) (int, int, error) {
	row, err := pickRow(ctx, r.pool, tx, `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN pinyin != '' OR english != '' THEN 1 ELSE 0 END), 0)
FROM job_segments WHERE job_id = $1;`, jobID)
	if err != nil {
		return 0, 0, err
	}
	var total, translated int
	if err := row.Scan(&total, &translated); err != nil {
		return 0, 0, domain.ErrReadDatabaseRow
	}
	return translated, total, nil
}

func (r *jobRepo) List(ctx context.Context, tx repository.Tx, limit, offset int, status model.JobStatus) ([]*model.Job, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	countRow, err := pickRow(ctx, r.pool, tx, `
SELECT COUNT(*) FROM jobs WHERE ($1 = '' OR status = $1);`, string(status))
	if err != nil {
		return nil, 0, err
	}
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, domain.ErrReadDatabaseRow
	}

	rows, err := pickRows(ctx, r.pool, tx, `
SELECT `+jobColumns+` FROM jobs
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3;`, string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *jobRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM jobs WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
