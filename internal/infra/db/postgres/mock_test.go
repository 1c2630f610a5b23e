//go:build !integration

package postgres

import (
	"context"
	"time"

	"chinese-translation-service/internal/domain/model"
	"chinese-translation-service/internal/domain/ports/repository"
	red "chinese-translation-service/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerJobRepo mocks the database repository that the decorator wraps.
type mockInnerJobRepo struct {
	CreateFunc          func(ctx context.Context, tx repository.Tx, inputText, sourceType string) (string, error)
	FindByIDFunc        func(ctx context.Context, tx repository.Tx, id string) (*model.Job, error)
	UpdateStatusFunc    func(ctx context.Context, tx repository.Tx, id string, status model.JobStatus, errorMessage string) error
	CompleteFunc        func(ctx context.Context, tx repository.Tx, id string, fullTranslation string) error
	FailFunc            func(ctx context.Context, tx repository.Tx, id string, message string) error
	SaveParagraphFunc   func(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx int, indent, separator string) (string, error)
	SaveSegmentFunc     func(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx, segIdx int, segmentText, pinyin, english string) (string, error)
	FindWithResultsFunc func(ctx context.Context, tx repository.Tx, id string) (*model.JobWithResults, error)
	SegmentCountsFunc   func(ctx context.Context, tx repository.Tx, jobID string) (int, int, error)
	ListFunc            func(ctx context.Context, tx repository.Tx, limit, offset int, status model.JobStatus) ([]*model.Job, int, error)
	DeleteFunc          func(ctx context.Context, tx repository.Tx, id string) error
}

func (m *mockInnerJobRepo) Create(ctx context.Context, tx repository.Tx, inputText, sourceType string) (string, error) {
	return m.CreateFunc(ctx, tx, inputText, sourceType)
}
func (m *mockInnerJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerJobRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus, errorMessage string) error {
	return m.UpdateStatusFunc(ctx, tx, id, status, errorMessage)
}
func (m *mockInnerJobRepo) Complete(ctx context.Context, tx repository.Tx, id string, fullTranslation string) error {
	return m.CompleteFunc(ctx, tx, id, fullTranslation)
}
func (m *mockInnerJobRepo) Fail(ctx context.Context, tx repository.Tx, id string, message string) error {
	return m.FailFunc(ctx, tx, id, message)
}
func (m *mockInnerJobRepo) SaveParagraph(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx int, indent, separator string) (string, error) {
	return m.SaveParagraphFunc(ctx, tx, jobID, paragraphIdx, indent, separator)
}
func (m *mockInnerJobRepo) SaveSegment(ctx context.Context, tx repository.Tx, jobID string, paragraphIdx, segIdx int, segmentText, pinyin, english string) (string, error) {
	return m.SaveSegmentFunc(ctx, tx, jobID, paragraphIdx, segIdx, segmentText, pinyin, english)
}
func (m *mockInnerJobRepo) FindWithResults(ctx context.Context, tx repository.Tx, id string) (*model.JobWithResults, error) {
	return m.FindWithResultsFunc(ctx, tx, id)
}
func (m *mockInnerJobRepo) SegmentCounts(ctx context.Context, tx repository.Tx, jobID string) (int, int, error) {
	return m.SegmentCountsFunc(ctx, tx, jobID)
}
func (m *mockInnerJobRepo) List(ctx context.Context, tx repository.Tx, limit, offset int, status model.JobStatus) ([]*model.Job, int, error) {
	return m.ListFunc(ctx, tx, limit, offset, status)
}
func (m *mockInnerJobRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return m.DeleteFunc(ctx, tx, id)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc   func(ctx context.Context, key string) (string, error)
	SetFunc   func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc   func(ctx context.Context, keys ...string) error
	PingFunc  func(ctx context.Context) error
	CloseFunc func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Close() error                   { return m.CloseFunc() }
