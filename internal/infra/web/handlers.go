package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"chinese-translation-service/internal/domain"
	"chinese-translation-service/internal/domain/model"
	"chinese-translation-service/internal/domain/ports/repository"
	"chinese-translation-service/internal/infra/queue"
)

const previewRunes = 100

type jobCreateRequest struct {
	InputText  string `json:"input_text"`
	SourceType string `json:"source_type"`
}

// Handler for submitting a new translation job. The job is persisted as
// pending; processing starts when a client opens the progress stream.
func jobsCreateHandler(mgr *queue.Manager, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req jobCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.InputText) == "" {
			http.Error(w, "input_text must not be empty", http.StatusUnprocessableEntity)
			return
		}
		if req.SourceType == "" {
			req.SourceType = "text"
		}

		jobID, err := mgr.SubmitJob(ctx, req.InputText, req.SourceType)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			log.Error().Err(err).Msg("job submission failed")
			http.Error(w, "Failed to create job", http.StatusInternalServerError)
			return
		}

		response := struct {
			JobID  string `json:"job_id"`
			Status string `json:"status"`
		}{
			JobID:  jobID,
			Status: string(model.JobStatusPending),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(response)
	}
}

type jobSummary struct {
	JobID      string    `json:"job_id"`
	Status     string    `json:"status"`
	SourceType string    `json:"source_type"`
	Preview    string    `json:"preview"`
	Translated int       `json:"translated_segments"`
	Total      int       `json:"total_segments"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// jobsListHandler returns a paginated, newest-first job listing.
// Accepts 'offset', 'limit' and an optional 'status' filter.
func jobsListHandler(repo repository.JobRepository, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}
		status := r.URL.Query().Get("status")
		if status != "" && !model.ValidJobStatus(status) {
			http.Error(w, "Unknown status filter", http.StatusBadRequest)
			return
		}

		jobs, total, err := repo.List(ctx, repository.NoTX, limit, offset, model.JobStatus(status))
		if err != nil {
			log.Error().Err(err).Msg("job listing failed")
			http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
			return
		}

		summaries := make([]jobSummary, 0, len(jobs))
		for _, j := range jobs {
			translated, totalSegs, err := repo.SegmentCounts(ctx, repository.NoTX, j.ID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				log.Error().Err(err).Str("job_id", j.ID).Msg("segment count failed")
				http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
				return
			}
			summaries = append(summaries, jobSummary{
				JobID:      j.ID,
				Status:     string(j.Status),
				SourceType: j.SourceType,
				Preview:    preview(j.InputText),
				Translated: translated,
				Total:      totalSegs,
				CreatedAt:  j.CreatedAt,
				UpdatedAt:  j.UpdatedAt,
			})
		}

		response := struct {
			Data   []jobSummary `json:"data"`
			Total  int          `json:"total"`
			Limit  int          `json:"limit"`
			Offset int          `json:"offset"`
		}{
			Data:   summaries,
			Total:  total,
			Limit:  limit,
			Offset: offset,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// jobGetHandler returns the full job including persisted paragraph and
// segment results.
func jobGetHandler(repo repository.JobRepository, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		jobID := chi.URLParam(r, "jobID")
		jr, err := repo.FindWithResults(ctx, repository.NoTX, jobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			log.Error().Err(err).Str("job_id", jobID).Msg("job lookup failed")
			http.Error(w, "Failed to get job", http.StatusInternalServerError)
			return
		}

		response := struct {
			JobID           string                  `json:"job_id"`
			Status          string                  `json:"status"`
			SourceType      string                  `json:"source_type"`
			InputText       string                  `json:"input_text"`
			FullTranslation string                  `json:"fullTranslation,omitempty"`
			ErrorMessage    string                  `json:"error_message,omitempty"`
			Paragraphs      []model.ParagraphResult `json:"paragraphs"`
			CreatedAt       time.Time               `json:"created_at"`
			UpdatedAt       time.Time               `json:"updated_at"`
		}{
			JobID:           jr.Job.ID,
			Status:          string(jr.Job.Status),
			SourceType:      jr.Job.SourceType,
			InputText:       jr.Job.InputText,
			FullTranslation: jr.Job.FullTranslation,
			ErrorMessage:    jr.Job.ErrorMessage,
			Paragraphs:      jr.Paragraphs,
			CreatedAt:       jr.Job.CreatedAt,
			UpdatedAt:       jr.Job.UpdatedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// jobStatusHandler reports live progress when the job is in memory, else
// the persisted counts.
func jobStatusHandler(mgr *queue.Manager, repo repository.JobRepository, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		jobID := chi.URLParam(r, "jobID")

		response := struct {
			JobID        string `json:"job_id"`
			Status       string `json:"status"`
			Current      int    `json:"current"`
			Total        int    `json:"total"`
			ErrorMessage string `json:"error_message,omitempty"`
		}{JobID: jobID}

		if p, ok := mgr.GetProgress(jobID); ok {
			response.Status = string(p.Status)
			response.Current = p.Current
			response.Total = p.Total
			response.ErrorMessage = p.Error
		} else {
			job, err := repo.FindByID(ctx, repository.NoTX, jobID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					http.NotFound(w, r)
					return
				}
				log.Error().Err(err).Str("job_id", jobID).Msg("status lookup failed")
				http.Error(w, "Failed to get status", http.StatusInternalServerError)
				return
			}
			translated, total, err := repo.SegmentCounts(ctx, repository.NoTX, jobID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				log.Error().Err(err).Str("job_id", jobID).Msg("segment count failed")
				http.Error(w, "Failed to get status", http.StatusInternalServerError)
				return
			}
			response.Status = string(job.Status)
			response.Current = translated
			response.Total = total
			response.ErrorMessage = job.ErrorMessage
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// jobDeleteHandler removes a job and its results. Admin only.
func jobDeleteHandler(repo repository.JobRepository, mgr *queue.Manager, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		jobID := chi.URLParam(r, "jobID")

		if err := repo.Delete(ctx, repository.NoTX, jobID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			log.Error().Err(err).Str("job_id", jobID).Msg("job deletion failed")
			http.Error(w, "Failed to delete job", http.StatusInternalServerError)
			return
		}
		mgr.CleanupProgress(jobID)
		w.WriteHeader(http.StatusNoContent)
	}
}

type adminLoginRequest struct {
	APIKey string `json:"api_key"`
}

func adminLoginHandler(auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if !auth.CheckAPIKey(req.APIKey) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		token, err := auth.Mint(w)
		if err != nil {
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(struct {
			Token string `json:"token"`
		}{Token: token})
	}
}

func adminLogoutHandler(auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}
