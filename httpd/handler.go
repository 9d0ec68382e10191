package httpd

// Handler turns a decoded request into a response. HandleRequest runs
// synchronously on the connection's strand with a completion
// continuation; respond may be called before HandleRequest returns or
// later from any goroutine, but must be called exactly once per
// request. A handler that needs to wait on something slow should
// defer the call rather than block the worker. Faults while composing
// a response must be converted by the handler into a valid error
// response (e.g. 500); the session writes whatever it is given.
type Handler interface {
	HandleRequest(r *Request, respond func(*Response))
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(*Request, func(*Response))

func (f HandlerFunc) HandleRequest(r *Request, respond func(*Response)) {
	f(r, respond)
}
