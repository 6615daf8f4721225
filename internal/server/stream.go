package server

import (
	"fmt"
	"net/http"
	"time"
)

// defaultStreamInterval is ~15 FPS.
const defaultStreamInterval = 66 * time.Millisecond

// StreamHandler serves the annotated frames as MJPEG.
type StreamHandler struct {
	feed     Feed
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler reading from feed.
func NewStreamHandler(feed Feed, interval time.Duration) *StreamHandler {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	return &StreamHandler{feed: feed, interval: interval}
}

// ServeHTTP streams MJPEG frames to connected clients. A frame is only
// written when the feed has produced a new one.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last *byte
	for {
		jpeg := h.feed.LatestJPEG()
		if len(jpeg) > 0 && &jpeg[0] != last {
			last = &jpeg[0]

			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
			if _, err := w.Write(jpeg); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
