package httpd

// ContentTypeHTML is the default content type of the string helpers.
const ContentTypeHTML = "text/html"

// Response is one HTTP response. ContentLength is the advertised
// Content-Length; -1 means derive it from len(Body). Setting it
// explicitly lets a HEAD response advertise the length a GET would
// have produced while transmitting no body bytes. KeepAlive decides
// whether the connection loops back to reading or closes after the
// write completes.
type Response struct {
	StatusCode    int
	Header        Header
	Body          []byte
	ContentLength int64
	KeepAlive     bool
}

// NewResponse returns an empty response with the given status.
func NewResponse(status int, keepAlive bool) *Response {
	return &Response{StatusCode: status, ContentLength: -1, KeepAlive: keepAlive}
}

// NewStringResponse returns a text/html response whose advertised
// length equals the body length.
func NewStringResponse(status int, body string, keepAlive bool) *Response {
	r := NewResponse(status, keepAlive)
	r.Header.Set("Content-Type", ContentTypeHTML)
	r.Body = []byte(body)
	return r
}

// advertisedLength resolves ContentLength for the wire.
func (r *Response) advertisedLength() int64 {
	if r.ContentLength >= 0 {
		return r.ContentLength
	}
	return int64(len(r.Body))
}
