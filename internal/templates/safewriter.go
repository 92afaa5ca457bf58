package templates

import "net/http"

// SafeWriter wraps a ResponseWriter so an HTML response gets its headers
// written exactly once, with the status chosen before the first write
type SafeWriter struct {
	w          http.ResponseWriter
	statusCode int
	written    bool
}

// NewSafeWriter wraps w with a default status of 200
func NewSafeWriter(w http.ResponseWriter) *SafeWriter {
	return &SafeWriter{w: w, statusCode: http.StatusOK}
}

// Header returns the underlying header map
func (sw *SafeWriter) Header() http.Header {
	return sw.w.Header()
}

// WriteHeader writes the HTML content type and status once; later calls are ignored.
// The status passed to the first call wins over the default.
func (sw *SafeWriter) WriteHeader(code int) {
	if sw.written {
		return
	}
	sw.written = true
	sw.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	sw.w.WriteHeader(code)
}

// Write writes body bytes, sending headers first if needed
func (sw *SafeWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.WriteHeader(sw.statusCode)
	}
	return sw.w.Write(b)
}

// Written reports whether headers have been sent
func (sw *SafeWriter) Written() bool {
	return sw.written
}
