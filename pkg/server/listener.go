package server

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	pbuf "github.com/huynhanx03/arenakv/pkg/pool/buffer"
	"github.com/huynhanx03/arenakv/pkg/pool/byteslice"
	"github.com/huynhanx03/arenakv/pkg/protocol"
)

const (
	readChunkSize  = 4096
	requestTimeout = 5 * time.Second
	headerTerminator = "\r\n\r\n"
)

// Listener accepts the raw HTTP/1.1-framed TCP connections of the wire
// protocol (C10) and hands each parsed request to a Dispatcher, closing
// the connection immediately after writing the response, per
// SPEC_FULL.md §6.
type Listener struct {
	addr       string
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// New builds a Listener bound to addr (e.g. "0.0.0.0:17878").
func New(addr string, d *Dispatcher, logger *zap.Logger) *Listener {
	return &Listener{addr: addr, dispatcher: d, logger: logger}
}

// ListenAndServe blocks accepting connections until ctx is canceled.
func (l *Listener) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				l.logger.Warn("accept failed", zap.Error(err))
				continue
			}
		}
		go l.handle(conn)
	}
}

func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()
	// The core's corrupted-arena panic (SPEC_FULL.md §9 item 5) is recovered
	// on the dispatcher's own goroutine (pkg/server/dispatcher.go's process),
	// since that is what actually calls into the engine — this recover only
	// guards against a panic in request framing itself (parsing, writing).
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("connection handler recovered from a panic", zap.Any("panic", r))
		}
	}()

	conn.SetReadDeadline(time.Now().Add(requestTimeout))

	raw, ok := readRequest(conn)
	if !ok {
		return
	}

	req, ok := protocol.Parse(raw)
	if !ok {
		l.writeFrame(conn, 501, "malformed request")
		return
	}

	resp, ok := l.dispatcher.Submit(req)
	if !ok {
		l.writeFrame(conn, 500, "server busy")
		return
	}
	l.writeFrame(conn, resp.Code, resp.Body)
}

// writeFrame renders the response frame into a pooled buffer and writes it
// directly to conn, avoiding a per-request string allocation on the hot
// path (SPEC_FULL.md §6).
func (l *Listener) writeFrame(conn net.Conn, code int, body string) {
	buf := protocol.RenderResponse(code, body)
	defer pbuf.Put(buf)
	buf.WriteTo(conn)
}

// readRequest reads from conn until the header/body separator has been
// seen and, if a Content-Length header names the body size, until that
// many body bytes have arrived. Without a Content-Length, whatever
// followed the separator in the bytes already read is taken as the
// complete body — the wire protocol has no chunked encoding.
func readRequest(conn net.Conn) ([]byte, bool) {
	var buf []byte
	chunk := byteslice.Get(readChunkSize)
	defer byteslice.Put(chunk)

	sepIdx := -1
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if sepIdx == -1 {
				sepIdx = bytes.Index(buf, []byte(headerTerminator))
			}
		}
		if sepIdx != -1 {
			want := contentLength(string(buf[:sepIdx]))
			have := len(buf) - (sepIdx + len(headerTerminator))
			if want < 0 || have >= want {
				break
			}
		}
		if err != nil {
			break
		}
	}
	return buf, len(buf) > 0
}

func contentLength(headers string) int {
	for _, line := range strings.Split(headers, "\r\n") {
		name, value, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return -1
}
