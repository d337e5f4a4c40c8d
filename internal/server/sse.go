package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// matchStream writes batch outcomes as Server-Sent Events. Result events
// carry the pair index as the event id so clients can reorder them.
type matchStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newMatchStream commits the event-stream headers and a 200 status.
func newMatchStream(w http.ResponseWriter) (*matchStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &matchStream{w: w, flusher: flusher}, nil
}

func (m *matchStream) send(event, id string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	if id != "" {
		if _, err := fmt.Fprintf(m.w, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(m.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	m.flusher.Flush()
	return nil
}

// Result emits one finished pair.
func (m *matchStream) Result(ev streamEvent) error {
	return m.send("result", strconv.Itoa(ev.Index), ev)
}

// Complete emits the closing summary of the batch.
func (m *matchStream) Complete(requestID string, total, failed int) error {
	return m.send("complete", "", map[string]any{
		"request_id": requestID,
		"total":      total,
		"failed":     failed,
	})
}
