package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const timeoutBody = `{"detail": "Request timed out"}`

// Timeout bounds request handling. When the budget is exhausted the client
// gets 504 with a detail body and any late handler output is discarded.
//
// The handler goroutine writes only into the buffered writer for the whole
// request. The timeout path never touches c.Writer, so a handler that keeps
// running past the deadline cannot corrupt the 504 response.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		done := make(chan struct{})
		panicChan := make(chan interface{}, 1)

		w := c.Writer
		buffered := newBufferedWriter(w)
		c.Writer = buffered

		go func() {
			defer func() {
				if p := recover(); p != nil {
					panicChan <- p
				}
			}()
			c.Next()
			close(done)
		}()

		select {
		case p := <-panicChan:
			c.Writer = w
			panic(p)
		case <-done:
			c.Writer = w
			buffered.flush()
		case <-ctx.Done():
			buffered.timeout()
		}
	}
}

// bufferedWriter holds the handler's status, headers and body until it is
// known the deadline was not hit. All methods take the mutex; once timedOut
// is set, handler writes are accepted and dropped.
type bufferedWriter struct {
	gin.ResponseWriter
	mu       sync.Mutex
	header   http.Header
	status   int
	body     []byte
	timedOut bool
}

func newBufferedWriter(w gin.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{
		ResponseWriter: w,
		header:         make(http.Header),
		status:         http.StatusOK,
	}
}

func (w *bufferedWriter) Header() http.Header {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.header
}

func (w *bufferedWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return
	}
	w.status = code
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return len(b), nil
	}
	w.body = append(w.body, b...)
	return len(b), nil
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// WriteHeaderNow would push the buffered status to the real writer early,
// so it is deferred until flush.
func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *bufferedWriter) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.body)
}

func (w *bufferedWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.body) > 0
}

// flush replays the buffered response onto the real writer. Handler-side
// writes are finished by the time flush runs.
func (w *bufferedWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return
	}
	dst := w.ResponseWriter
	for k, v := range w.header {
		dst.Header()[k] = v
	}
	if !dst.Written() {
		dst.WriteHeader(w.status)
	}
	if len(w.body) > 0 {
		dst.Write(w.body)
	}
}

// timeout writes the 504 straight to the real writer and flips the writer
// into discard mode. Holding the mutex while writing means a handler still
// running cannot interleave output with the timeout body.
func (w *bufferedWriter) timeout() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timedOut = true
	w.body = nil
	dst := w.ResponseWriter
	dst.Header().Set("Content-Type", "application/json")
	dst.WriteHeader(http.StatusGatewayTimeout)
	dst.Write([]byte(timeoutBody))
}
