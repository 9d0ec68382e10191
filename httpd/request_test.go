package httpd

import "testing"

func TestRequestKeepAlive(t *testing.T) {
	cases := []struct {
		proto, connection string
		want              bool
	}{
		{"HTTP/1.1", "", true},
		{"HTTP/1.1", "keep-alive", true},
		{"HTTP/1.1", "close", false},
		{"HTTP/1.1", "Close", false},
		{"HTTP/1.0", "", false},
		{"HTTP/1.0", "keep-alive", true},
		{"HTTP/1.0", "Keep-Alive", true},
		{"HTTP/1.0", "close", false},
	}
	for _, c := range cases {
		r := &Request{Proto: c.proto}
		if c.connection != "" {
			r.Header.Set("Connection", c.connection)
		}
		if got := r.KeepAlive(); got != c.want {
			t.Errorf("%s Connection=%q: KeepAlive()=%v, want %v", c.proto, c.connection, got, c.want)
		}
	}
}

func TestResponseAdvertisedLength(t *testing.T) {
	r := NewStringResponse(200, "Hello, abc", true)
	if got := r.advertisedLength(); got != 10 {
		t.Fatalf("advertisedLength=%d, want 10", got)
	}
	head := NewResponse(200, true)
	head.ContentLength = 10
	if got := head.advertisedLength(); got != 10 || len(head.Body) != 0 {
		t.Fatalf("HEAD advertises %d with body %d bytes", got, len(head.Body))
	}
}
