package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

func ValidJobStatus(s string) bool {
	switch JobStatus(s) {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Job is one end-to-end translation request.
// FullTranslation is set only when Status is completed; ErrorMessage only
// when Status is failed.
type Job struct {
	ID              string
	Status          JobStatus
	SourceType      string // free-form origin tag, e.g. "text" or "ocr"
	InputText       string
	FullTranslation string
	ErrorMessage    string
	Metadata        map[string]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Paragraph records the whitespace needed to reassemble the input verbatim:
// Indent is the leading whitespace of the line, Separator the exact run of
// newlines that followed it.
type Paragraph struct {
	ID           string
	JobID        string
	ParagraphIdx int
	Indent       string
	Separator    string
}

// Segment is the minimal unit of translation. Pinyin and English are both
// empty strings for segments the classifier marked skippable.
type Segment struct {
	ID           string
	JobID        string
	ParagraphIdx int
	SegIdx       int
	SegmentText  string
	Pinyin       string
	English      string
	CreatedAt    time.Time
}

// SegmentResult is the transient per-segment progress record. GlobalIdx
// counts segments across the whole job, not just within a paragraph.
type SegmentResult struct {
	ParagraphIdx int
	SegIdx       int
	GlobalIdx    int
	Segment      string
	Pinyin       string
	English      string
}

// SegmentTranslation is a segment as presented to API clients.
type SegmentTranslation struct {
	Segment string `json:"segment"`
	Pinyin  string `json:"pinyin"`
	English string `json:"english"`
}

// ParagraphResult groups a paragraph's translations with its whitespace.
type ParagraphResult struct {
	Translations []SegmentTranslation `json:"translations"`
	Indent       string               `json:"indent"`
	Separator    string               `json:"separator"`
}

// JobWithResults is a job plus its persisted paragraphs and segments in
// (paragraph_idx, seg_idx) order.
type JobWithResults struct {
	Job        *Job
	Paragraphs []ParagraphResult
}

// TotalSegments sums segment counts across paragraphs.
func (j *JobWithResults) TotalSegments() int {
	n := 0
	for _, p := range j.Paragraphs {
		n += len(p.Translations)
	}
	return n
}
