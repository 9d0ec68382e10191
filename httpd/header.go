package httpd

import (
	"net/textproto"
)

// Header is an ordered collection of header fields. Lookups are
// case-insensitive via canonical keys; iteration yields fields in the
// order they were added, which for parsed requests is wire order.
type Header struct {
	fields []headerField
}

type headerField struct {
	key   string
	value string
}

// Get returns the first value associated with key, or "".
func (h *Header) Get(key string) string {
	if h == nil {
		return ""
	}
	k := textproto.CanonicalMIMEHeaderKey(key)
	for _, f := range h.fields {
		if f.key == k {
			return f.value
		}
	}
	return ""
}

// Values returns all values associated with key, in order.
func (h *Header) Values(key string) []string {
	if h == nil {
		return nil
	}
	k := textproto.CanonicalMIMEHeaderKey(key)
	var vv []string
	for _, f := range h.fields {
		if f.key == k {
			vv = append(vv, f.value)
		}
	}
	return vv
}

// Set replaces all values of key with value, keeping the position of
// the first occurrence.
func (h *Header) Set(key, value string) {
	k := textproto.CanonicalMIMEHeaderKey(key)
	out := h.fields[:0]
	done := false
	for _, f := range h.fields {
		if f.key == k {
			if !done {
				out = append(out, headerField{k, value})
				done = true
			}
			continue
		}
		out = append(out, f)
	}
	if !done {
		out = append(out, headerField{k, value})
	}
	h.fields = out
}

// Add appends a value for key.
func (h *Header) Add(key, value string) {
	h.fields = append(h.fields, headerField{textproto.CanonicalMIMEHeaderKey(key), value})
}

// Del removes all values for key.
func (h *Header) Del(key string) {
	k := textproto.CanonicalMIMEHeaderKey(key)
	out := h.fields[:0]
	for _, f := range h.fields {
		if f.key != k {
			out = append(out, f)
		}
	}
	h.fields = out
}

// Len returns the number of fields.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.fields)
}

// Each calls fn for every field in order until fn returns false.
func (h *Header) Each(fn func(key, value string) bool) {
	if h == nil {
		return
	}
	for _, f := range h.fields {
		if !fn(f.key, f.value) {
			return
		}
	}
}
