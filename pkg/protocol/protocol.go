// Package protocol implements the minimal HTTP/1.1-framed wire format (C10
// parsing half): only the request line is interpreted, header lines other
// than it are ignored, and the body is everything after the first blank
// line.
package protocol

import "strings"

// Request is a parsed client request.
type Request struct {
	Method string
	Plugin string
	Param  string
	Body   string
}

// Parse extracts a Request from the raw bytes read off a connection.
// Returns false if no request line (at least a method and a path) can be
// found.
func Parse(raw []byte) (Request, bool) {
	s := string(raw)

	head, body := s, ""
	if i := strings.Index(s, "\r\n\r\n"); i != -1 {
		head, body = s[:i], s[i+4:]
	}

	requestLine := head
	if i := strings.Index(head, "\r\n"); i != -1 {
		requestLine = head[:i]
	}

	fields := strings.Fields(requestLine)
	if len(fields) < 2 {
		return Request{}, false
	}

	path := strings.TrimPrefix(fields[1], "/")
	plugin, param := path, ""
	if i := strings.Index(path, "/"); i != -1 {
		plugin, param = path[:i], path[i+1:]
	}
	if i := strings.Index(param, "?"); i != -1 {
		param = param[:i]
	}

	return Request{Method: fields[0], Plugin: plugin, Param: param, Body: body}, true
}
