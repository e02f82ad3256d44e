package api

import (
	"github.com/gin-gonic/gin"
)

// streamWriter commits a 200 text/plain response on the first write, so
// anything that fails before then can still be answered with a JSON error.
type streamWriter struct {
	c         *gin.Context
	committed bool
}

func newStreamWriter(c *gin.Context) *streamWriter {
	return &streamWriter{c: c}
}

func (w *streamWriter) Write(text string) error {
	if err := w.c.Request.Context().Err(); err != nil {
		return err
	}
	if !w.committed {
		h := w.c.Writer.Header()
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("Cache-Control", "no-cache")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Accel-Buffering", "no")
		w.c.Status(200)
		w.committed = true
	}
	if _, err := w.c.Writer.WriteString(text); err != nil {
		return err
	}
	w.c.Writer.Flush()
	return nil
}

func (w *streamWriter) Committed() bool {
	return w.committed
}
