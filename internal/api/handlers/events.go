package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/matiasleandrokruk/seekassist/internal/infra/eventbus"
)

// EventsHandler streams every bus signal (progress, outcomes, settings and
// editor changes) to a panel as server-sent events.
type EventsHandler struct {
	bus eventbus.EventBus
}

func NewEventsHandler(bus eventbus.EventBus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// eventFrame is the JSON carried by one "data:" line.
type eventFrame struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// Stream handles GET /api/v1/events. It runs until the client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	bw, flusher, err := prepareEventStream(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Subscribe before the headers go out: a client that saw the 200 must not
	// miss an event published right after.
	ch := h.bus.Subscribe(eventbus.AllTopics)
	defer h.bus.Unsubscribe(ch)

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEventFrame(bw, evt); err != nil {
				return
			}
			_ = bw.Flush()
			flusher.Flush()
		}
	}
}

func prepareEventStream(w http.ResponseWriter) (*bufio.Writer, http.Flusher, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, nil, errors.New("response writer does not implement http.Flusher")
	}

	w.Header().Set(headerContentType, mimeEventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return bufio.NewWriter(w), flusher, nil
}

func writeEventFrame(bw *bufio.Writer, evt eventbus.Event) error {
	b, err := json.Marshal(eventFrame{Topic: evt.Topic, Payload: evt.Payload})
	if err != nil {
		// an unencodable payload drops only this frame
		return nil
	}
	_, err = fmt.Fprintf(bw, "event: %s\ndata: %s\n\n", evt.Topic, b)
	return err
}
