package podcast_http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// sseWriter streams JSON events over a single long-lived response. A closed
// client connection turns Send into a silent failure the caller uses to stop
// producing, never into a panic or a handler error. Send is safe for
// concurrent use; producers such as the synthesis fan-out report from worker
// goroutines.
type sseWriter struct {
	mu       sync.Mutex
	response *echo.Response
	flusher  http.Flusher
}

func newSSEWriter(c echo.Context) (*sseWriter, error) {
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	return &sseWriter{response: c.Response(), flusher: flusher}, nil
}

// Send writes one event frame. Returns false once the destination is gone.
func (w *sseWriter) Send(payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return true // unserializable payload is dropped, not fatal to the stream
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.response.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
		return false
	}
	w.flusher.Flush()
	return true
}
