// Package httpd provides an asynchronous HTTP/1.1 connection server
// built around an explicit execution context: a fixed worker pool
// drains completion callbacks, and every accepted connection is bound
// to its own serialized sub-context (strand), so callbacks for one
// connection never run concurrently with each other while different
// connections progress in parallel.
//
// Highlights
//   - Listener: unbounded accept loop; accept failures are reported
//     and skipped, only shutdown stops the loop.
//   - Session: per-connection read→handle→write state machine with
//     keep-alive, idle read timeout, Expect: 100-continue, and
//     header/body size limits. Bodies are buffered in memory.
//   - Handler: continuation style — the response callback may be
//     invoked synchronously or later from another goroutine, so slow
//     handlers can defer without blocking a worker.
//   - Observability: plug-in Logger and Meter interfaces; read, write
//     and accept failures are reported as (operation, error) pairs.
//
// Quick start:
//
//	s := &httpd.Server{Addr: "0.0.0.0:8080"}
//	s.Handler = httpd.HandlerFunc(func(r *httpd.Request, respond func(*httpd.Response)) {
//	    respond(httpd.NewStringResponse(200, "hello", r.KeepAlive()))
//	})
//	if err := s.ListenAndServe(); err != nil { log.Fatal(err) }
package httpd
