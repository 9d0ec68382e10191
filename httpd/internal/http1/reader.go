package http1

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

var (
	ErrMalformed         = errors.New("http1: malformed request")
	ErrHeaderTooLarge    = errors.New("http1: header too large")
	ErrBodyTooLarge      = errors.New("http1: body too large")
	ErrUnsupportedCoding = errors.New("http1: unsupported transfer encoding")
)

// Field is one header field as it appeared on the wire. Names are
// canonicalized; order is preserved.
type Field struct {
	Name  string
	Value string
}

// ParsedRequest is a minimal representation parsed from the wire.
// The body is fully buffered.
type ParsedRequest struct {
	Method        string
	RequestURI    string
	Proto         string
	Fields        []Field
	ContentLength int64
	Body          []byte
}

// FieldValue returns the first value of the named field, or "".
func (p *ParsedRequest) FieldValue(name string) string {
	k := canonicalHeaderKey(name)
	for _, f := range p.Fields {
		if f.Name == k {
			return f.Value
		}
	}
	return ""
}

type Reader struct {
	BR *bufio.Reader
	// BW, if non-nil, receives an interim 100 Continue before the body
	// is read when the request declares Expect: 100-continue.
	BW                  *bufio.Writer
	MaxHeaderBytes      int   // per header line
	MaxTotalHeaderBytes int   // all header lines combined
	MaxBodyBytes        int64 // 0 means no limit
}

// ReadRequest reads one complete request: request line, header block,
// and a Content-Length framed body. Transfer-Encoding is not
// supported and is rejected as a protocol error.
func (r *Reader) ReadRequest() (*ParsedRequest, error) {
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, ErrMalformed
	}
	method, uri, proto := parts[0], parts[1], parts[2]
	if !strings.HasPrefix(proto, "HTTP/1.") {
		return nil, ErrMalformed
	}
	fields, err := r.readFields()
	if err != nil {
		return nil, err
	}
	pr := &ParsedRequest{
		Method:     method,
		RequestURI: uri,
		Proto:      proto,
		Fields:     fields,
	}
	if err := r.readBody(pr); err != nil {
		return nil, err
	}
	return pr, nil
}

func (r *Reader) readFields() ([]Field, error) {
	var fields []Field
	total := 0
	for {
		line, err := r.readLine()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if line == "" {
			return fields, nil
		}
		total += len(line)
		if r.MaxTotalHeaderBytes > 0 && total > r.MaxTotalHeaderBytes {
			return nil, ErrHeaderTooLarge
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			return nil, ErrMalformed
		}
		k := strings.TrimSpace(line[:i])
		if SanitizeHeaderKey(k) == "" {
			return nil, ErrMalformed
		}
		v := strings.TrimSpace(line[i+1:])
		fields = append(fields, Field{Name: canonicalHeaderKey(k), Value: v})
	}
}

func (r *Reader) readBody(pr *ParsedRequest) error {
	if pr.FieldValue("Transfer-Encoding") != "" {
		// Chunked (or any other) transfer coding is not supported; a
		// coexisting Content-Length would be smuggling-prone anyway.
		return ErrUnsupportedCoding
	}
	cl, err := contentLength(pr.Fields)
	if err != nil {
		return err
	}
	pr.ContentLength = cl
	if cl == 0 {
		return nil
	}
	if r.MaxBodyBytes > 0 && cl > r.MaxBodyBytes {
		return ErrBodyTooLarge
	}
	if r.BW != nil && strings.EqualFold(pr.FieldValue("Expect"), "100-continue") {
		if err := WriteContinue(r.BW); err != nil {
			return err
		}
		if err := r.BW.Flush(); err != nil {
			return err
		}
	}
	pr.Body = make([]byte, cl)
	if _, err := io.ReadFull(r.BR, pr.Body); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// contentLength resolves the Content-Length fields. Repeated fields
// and comma-separated lists are accepted only when every value agrees.
func contentLength(fields []Field) (int64, error) {
	var vals []string
	for _, f := range fields {
		if f.Name == "Content-Length" {
			for _, part := range strings.Split(f.Value, ",") {
				vals = append(vals, strings.TrimSpace(part))
			}
		}
	}
	if len(vals) == 0 {
		return 0, nil
	}
	var cl int64 = -1
	for _, v := range vals {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, ErrMalformed
		}
		if cl >= 0 && n != cl {
			return 0, ErrMalformed
		}
		cl = n
	}
	return cl, nil
}

func (r *Reader) readLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := r.BR.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		if b == '\n' {
			break
		}
		if b != '\r' {
			sb.WriteByte(b)
		}
		if r.MaxHeaderBytes > 0 && sb.Len() > r.MaxHeaderBytes {
			return "", ErrHeaderTooLarge
		}
	}
	return sb.String(), nil
}

// Very small canonicalizer to avoid importing textproto here.
func canonicalHeaderKey(s string) string {
	b := []byte(strings.ToLower(s))
	upper := true
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			if upper {
				b[i] = byte(c - 'a' + 'A')
			}
			upper = false
			continue
		}
		upper = c == '-'
	}
	return string(b)
}
