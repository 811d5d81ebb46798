package protocol

import (
	"fmt"
	"strconv"

	"github.com/huynhanx03/arenakv/pkg/datastructs/buffer"
	pbuf "github.com/huynhanx03/arenakv/pkg/pool/buffer"
)

var reasons = map[int]string{
	200: "OK",
	404: "Not Found",
	500: "Internal Server Error",
	501: "Not Implemented",
}

// Reason returns the fixed reason string for code.
func Reason(code int) string {
	if r, ok := reasons[code]; ok {
		return r
	}
	return "Unknown"
}

// WriteResponse renders code and body as the minimal response frame this
// protocol uses: "HTTP/1.1 <code> <reason>\r\n\r\n<body>". The connection
// is closed by the caller immediately after this is written.
func WriteResponse(code int, body string) string {
	return fmt.Sprintf("HTTP/1.1 %d %s\r\n\r\n%s", code, Reason(code), body)
}

// RenderResponse writes the same frame as WriteResponse into a buffer drawn
// from the calibrated buffer pool, so the listener's connection goroutine
// can hand the result straight to a net.Conn via WriteTo without building
// an intermediate string on every request. The caller must return buf to
// the pool with pkg/pool/buffer.Put.
func RenderResponse(code int, body string) *buffer.Buffer {
	reason := Reason(code)
	buf := pbuf.GetSize(len("HTTP/1.1 ") + 3 + 1 + len(reason) + 4 + len(body))
	buf.Write([]byte("HTTP/1.1 "))
	buf.Write(strconv.AppendInt(nil, int64(code), 10))
	buf.Write([]byte(" "))
	buf.Write([]byte(reason))
	buf.Write([]byte("\r\n\r\n"))
	buf.Write([]byte(body))
	return buf
}
