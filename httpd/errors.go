package httpd

import "errors"

var (
	ErrBadRequest     = errors.New("httpd: bad request")
	ErrHeaderTooLarge = errors.New("httpd: header too large")
	ErrBodyTooLarge   = errors.New("httpd: body too large")
	ErrServerClosed   = errors.New("httpd: server closed")
)
