package httpd

import "strings"

// Request is one decoded HTTP request. It is immutable once parsed;
// ownership passes to the handler invocation and is discarded after
// the response is produced. The body is fully buffered.
type Request struct {
	Method        string
	Target        string // request-target as sent on the request line
	Proto         string
	Header        Header
	Body          []byte
	ContentLength int64
	RemoteAddr    string
	// RequestID is a server-generated identifier used in trace output.
	RequestID string
}

// KeepAlive reports the connection persistence the request negotiated:
// HTTP/1.1 defaults to true unless the request declares
// Connection: close; HTTP/1.0 defaults to false unless it declares
// Connection: keep-alive.
func (r *Request) KeepAlive() bool {
	conn := strings.ToLower(r.Header.Get("Connection"))
	if r.Proto == "HTTP/1.1" {
		return conn != "close"
	}
	return conn == "keep-alive"
}
