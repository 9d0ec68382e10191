package http1

import (
	"bufio"
	"strings"
	"testing"
)

func writeResp(t *testing.T, status int, fields []Field, cl int64, body []byte, keepAlive bool) string {
	t.Helper()
	var out strings.Builder
	bw := bufio.NewWriter(&out)
	if err := WriteResponse(bw, status, "", fields, cl, body, keepAlive); err != nil {
		t.Fatalf("WriteResponse error: %v", err)
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return out.String()
}

func TestWriteResponse_Exact(t *testing.T) {
	got := writeResp(t, 200, []Field{{"Content-Type", "text/html"}}, 10, []byte("Hello, abc"), true)
	want := "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: 10\r\nConnection: keep-alive\r\n\r\nHello, abc"
	if got != want {
		t.Fatalf("wire=%q, want %q", got, want)
	}
}

func TestWriteResponse_HeadAdvertisesLength(t *testing.T) {
	got := writeResp(t, 200, []Field{{"Content-Type", "text/html"}}, 10, nil, true)
	if !strings.Contains(got, "Content-Length: 10\r\n") {
		t.Fatalf("missing advertised length: %q", got)
	}
	if !strings.HasSuffix(got, "\r\n\r\n") {
		t.Fatalf("body must be empty: %q", got)
	}
}

func TestWriteResponse_Close(t *testing.T) {
	got := writeResp(t, 405, []Field{{"Allow", "GET, HEAD"}}, 15, []byte("Invalid method."), false)
	if !strings.HasPrefix(got, "HTTP/1.1 405 Method Not Allowed\r\n") {
		t.Fatalf("status line: %q", got)
	}
	if !strings.Contains(got, "Connection: close\r\n") {
		t.Fatalf("missing Connection: close: %q", got)
	}
	if !strings.Contains(got, "Allow: GET, HEAD\r\n") {
		t.Fatalf("missing Allow: %q", got)
	}
}

func TestWriteResponse_CallerFramingFieldsSkipped(t *testing.T) {
	got := writeResp(t, 200, []Field{{"Content-Length", "99"}, {"Connection", "upgrade"}}, 0, nil, false)
	if strings.Contains(got, "99") || strings.Contains(got, "upgrade") {
		t.Fatalf("caller framing fields leaked: %q", got)
	}
	if !strings.Contains(got, "Content-Length: 0\r\n") {
		t.Fatalf("missing computed length: %q", got)
	}
}

func TestWriteResponse_SanitizesValues(t *testing.T) {
	got := writeResp(t, 200, []Field{{"X-Bad", "a\r\nInjected: yes"}}, 0, nil, true)
	if strings.Contains(got, "Injected: yes\r\n") {
		t.Fatalf("header injection not stripped: %q", got)
	}
}

func TestSanitizeHeaderKey(t *testing.T) {
	if SanitizeHeaderKey("X-Good_1") == "" {
		t.Fatal("valid token rejected")
	}
	for _, bad := range []string{"", "Bad(", "a b", "x:y"} {
		if SanitizeHeaderKey(bad) != "" {
			t.Fatalf("invalid token %q accepted", bad)
		}
	}
}
