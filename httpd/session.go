package httpd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"dqx0.com/go/servers/httpd/internal/exec"
	"dqx0.com/go/servers/httpd/internal/http1"
	"dqx0.com/go/servers/internal/obs"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateReading
	stateHandling
	stateWriting
	stateClosed
)

// session owns one accepted connection and drives its
// read→handle→write cycle. All state transitions happen on the
// session's strand; the blocking half of each asynchronous operation
// runs on its own goroutine and posts the completion back to the
// strand, so at most one operation is in flight and no two callbacks
// of the same session ever overlap. The completion closures keep the
// session reachable for exactly as long as an operation references it.
type session struct {
	srv    *Server
	conn   net.Conn
	strand *exec.Strand
	br     *bufio.Reader
	bw     *bufio.Writer
	state  sessionState
}

func newSession(srv *Server, conn net.Conn, strand *exec.Strand) *session {
	return &session{
		srv:    srv,
		conn:   conn,
		strand: strand,
		br:     bufio.NewReader(conn),
		bw:     bufio.NewWriter(conn),
	}
}

// run starts the session's cycle.
func (s *session) run() {
	s.strand.Post(s.startRead)
}

// startRead issues the asynchronous read of the next request with the
// idle deadline. Runs on the strand.
func (s *session) startRead() {
	if s.state == stateClosed {
		return
	}
	s.state = stateReading
	rd := &http1.Reader{
		BR:                  s.br,
		BW:                  s.bw,
		MaxHeaderBytes:      s.srv.headerLimit(),
		MaxTotalHeaderBytes: s.srv.totalHeaderLimit(),
		MaxBodyBytes:        s.srv.MaxBodyBytes,
	}
	deadline := time.Now().Add(s.srv.idleTimeout())
	go func() {
		_ = s.conn.SetReadDeadline(deadline)
		pr, err := rd.ReadRequest()
		s.strand.Post(func() { s.onRead(pr, err) })
	}()
}

// onRead completes the read. Runs on the strand.
func (s *session) onRead(pr *http1.ParsedRequest, err error) {
	if s.state != stateReading {
		return
	}
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF || errors.Is(err, net.ErrClosed) {
			// Peer stopped sending before a complete request; a
			// normal end of stream, not an error.
			s.close()
			return
		}
		s.srv.report("read", convertReadError(err))
		s.close()
		return
	}
	req := buildRequest(pr, s.conn.RemoteAddr())
	s.srv.traceRequest(req)
	s.srv.metricCounter("httpd_requests_total", 1, obs.Label{Key: "method", Value: req.Method})
	s.state = stateHandling
	// The continuation re-posts to the strand, so the handler may call
	// it synchronously here or later from any goroutine.
	s.srv.activeHandler().HandleRequest(req, func(resp *Response) {
		s.strand.Post(func() { s.startWrite(resp) })
	})
}

// startWrite issues the asynchronous write of the full response. The
// response escapes to the spawned goroutine, which keeps it alive past
// the handler's return. Runs on the strand.
func (s *session) startWrite(resp *Response) {
	if s.state != stateHandling {
		// A second respond call for the same request, or the session
		// was torn down while the handler ran.
		return
	}
	if resp == nil {
		resp = NewResponse(500, false)
	}
	s.state = stateWriting
	var fields []http1.Field
	resp.Header.Each(func(k, v string) bool {
		fields = append(fields, http1.Field{Name: k, Value: v})
		return true
	})
	go func() {
		err := http1.WriteResponse(s.bw, resp.StatusCode, "", fields, resp.advertisedLength(), resp.Body, resp.KeepAlive)
		if err == nil {
			err = s.bw.Flush()
		}
		s.strand.Post(func() { s.onWrite(resp, err) })
	}()
}

// onWrite completes the write: loop back to reading on keep-alive,
// otherwise shut down the send half and close. Runs on the strand.
func (s *session) onWrite(resp *Response, err error) {
	if s.state != stateWriting {
		return
	}
	if err != nil {
		if !errors.Is(err, net.ErrClosed) {
			s.srv.report("write", err)
		}
		s.close()
		return
	}
	s.srv.metricCounter("httpd_responses_total", 1, obs.Label{Key: "status", Value: fmt.Sprintf("%d", resp.StatusCode)})
	if !resp.KeepAlive {
		if tc, ok := s.conn.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
		s.close()
		return
	}
	s.state = stateIdle
	s.startRead()
}

// close tears the session down. Runs on the strand; idempotent.
func (s *session) close() {
	if s.state == stateClosed {
		return
	}
	s.state = stateClosed
	_ = s.conn.Close()
	s.srv.dropSession(s)
}

// abort force-closes the connection from outside the strand. Any
// in-flight operation fails with net.ErrClosed and its completion
// performs the actual teardown.
func (s *session) abort() {
	_ = s.conn.Close()
}

func buildRequest(pr *http1.ParsedRequest, remote net.Addr) *Request {
	req := &Request{
		Method:        pr.Method,
		Target:        pr.RequestURI,
		Proto:         pr.Proto,
		Body:          pr.Body,
		ContentLength: pr.ContentLength,
		RequestID:     genID(),
	}
	if remote != nil {
		req.RemoteAddr = remote.String()
	}
	for _, f := range pr.Fields {
		req.Header.Add(f.Name, f.Value)
	}
	return req
}

// convertReadError maps codec failures onto the package sentinels so
// reports and logs speak the public vocabulary.
func convertReadError(err error) error {
	switch {
	case errors.Is(err, http1.ErrMalformed), errors.Is(err, http1.ErrUnsupportedCoding):
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	case errors.Is(err, http1.ErrHeaderTooLarge):
		return fmt.Errorf("%w: %v", ErrHeaderTooLarge, err)
	case errors.Is(err, http1.ErrBodyTooLarge):
		return fmt.Errorf("%w: %v", ErrBodyTooLarge, err)
	}
	return err
}
