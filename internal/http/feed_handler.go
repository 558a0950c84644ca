package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/meetsync/internal/feed"
	"github.com/example/meetsync/internal/persistence"
)

// FeedHandler streams the caller's merged meeting feed over Server-Sent
// Events. Each event carries the full current feed so clients replace rather
// than patch their state.
type FeedHandler struct {
	watcher   persistence.MeetingWatcher
	responder responder
	logger    *slog.Logger
}

func NewFeedHandler(watcher persistence.MeetingWatcher, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		watcher:   watcher,
		responder: newResponder(logger),
		logger:    defaultLogger(logger),
	}
}

func (h *FeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, errStreamingUnsupp)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := handlerLogger(r.Context(), h.logger, "feed", "stream", "user_id", principal.UserID)

	owned, cancelOwned, err := h.watcher.WatchMeetingsOwnedBy(r.Context(), principal.UserID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	participating, cancelParticipating, err := h.watcher.WatchMeetingsWithParticipant(r.Context(), principal.UserID)
	if err != nil {
		cancelOwned()
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	aggregator := feed.New(owned, participating, cancelOwned, cancelParticipating)
	defer aggregator.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			logger.InfoContext(r.Context(), "feed stream closed by client")
			return
		case snapshot, open := <-aggregator.Snapshots():
			if !open {
				logger.InfoContext(r.Context(), "feed stream ended")
				return
			}
			if err := writeFeedEvent(w, snapshot); err != nil {
				logger.WarnContext(r.Context(), "feed write failed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeFeedEvent(w http.ResponseWriter, meetings []persistence.Meeting) error {
	dtos := make([]meetingDTO, 0, len(meetings))
	for _, meeting := range meetings {
		dtos = append(dtos, toMeetingDTO(meeting))
	}
	payload, err := json.Marshal(dtos)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("event: feed\ndata: ")); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}
