package utils

import (
	"bytes"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const errorBodyLogLimit = 512

// errorBodyWriter keeps a copy of error response bodies for logging
type errorBodyWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *errorBodyWriter) Write(b []byte) (int, error) {
	if w.Status() >= 400 && w.body.Len() < errorBodyLogLimit {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware logs 4xx/5xx responses with their body. Install it before gzip
func ErrorLogMiddleware(c *gin.Context) {
	w := &errorBodyWriter{ResponseWriter: c.Writer}
	c.Writer = w
	c.Next()

	status := w.Status()
	if status < 400 {
		return
	}
	logrus.WithFields(logrus.Fields{
		"status": status,
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Debugf("Error response: %s", Truncate(w.body.String(), errorBodyLogLimit))
}
