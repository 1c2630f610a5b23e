package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"chinese-translation-service/internal/infra/queue"
)

// streamHandler serves the job progress stream over Server-Sent Events.
// Each event is one JSON object on a "data:" line; the stream closes after
// the terminal event.
func streamHandler(streamer *queue.Streamer, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}
		jobID := chi.URLParam(r, "jobID")

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		err := streamer.Stream(r.Context(), jobID, func(ev any) error {
			payload, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		})
		if err != nil && r.Context().Err() == nil {
			log.Error().Err(err).Str("job_id", jobID).Msg("stream aborted")
		}
	}
}
