// Command httpd-hello runs the async server with the classic
// "Hello, {target}" handler: GET greets the target, HEAD advertises
// the same length with an empty body, everything else is 405.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"dqx0.com/go/servers/httpd"
	"dqx0.com/go/servers/internal/obs"
)

func helloHandler(r *httpd.Request, respond func(*httpd.Response)) {
	target := strings.TrimPrefix(r.Target, "/")
	switch r.Method {
	case "GET":
		respond(httpd.NewStringResponse(200, "Hello, "+target, r.KeepAlive()))
	case "HEAD":
		// Same headers and advertised length as GET, empty body.
		resp := httpd.NewResponse(200, r.KeepAlive())
		resp.Header.Set("Content-Type", httpd.ContentTypeHTML)
		resp.ContentLength = int64(len("Hello, " + target))
		respond(resp)
	default:
		resp := httpd.NewStringResponse(405, "Invalid method.", r.KeepAlive())
		resp.Header.Set("Allow", "GET, HEAD")
		respond(resp)
	}
}

func main() {
	addr := flag.String("addr", "0.0.0.0", "bind address")
	port := flag.Int("port", 8080, "bind port")
	workers := flag.Int("workers", 0, "worker pool size (0 = GOMAXPROCS)")
	verbose := flag.Bool("v", false, "dump every received request")
	flag.Parse()

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		zl = zl.Level(zerolog.InfoLevel)
	}

	srv := &httpd.Server{
		Handler: httpd.HandlerFunc(helloHandler),
		Workers: *workers,
		Logger:  obs.ZerologLogger{L: zl},
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *addr, *port))
	if err != nil {
		log.Fatal(err)
	}
	// Test harnesses watch for this line to know the server is up.
	fmt.Println("Server has started...")
	if err := srv.Serve(ln); err != nil && err != httpd.ErrServerClosed {
		log.Fatal(err)
	}
}
