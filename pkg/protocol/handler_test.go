package protocol_test

import (
	"path/filepath"
	"testing"

	"github.com/huynhanx03/arenakv/pkg/arena"
	"github.com/huynhanx03/arenakv/pkg/protocol"
)

func newEngine() *arena.Arena {
	return arena.New(1<<16, 1<<12, 64)
}

func TestHandle_FullLifecycle(t *testing.T) {
	e := newEngine()

	code, _ := protocol.Handle(e, protocol.Request{Method: "POST", Plugin: "nosql", Param: "key1", Body: "hello"})
	if code != 200 {
		t.Fatalf("POST = %d, want 200", code)
	}

	code, body := protocol.Handle(e, protocol.Request{Method: "GET", Plugin: "nosql", Param: "key1"})
	if code != 200 || body != "hello" {
		t.Fatalf("GET = %d %q, want 200 %q", code, body, "hello")
	}

	code, _ = protocol.Handle(e, protocol.Request{Method: "HEAD", Plugin: "nosql", Param: "key1"})
	if code != 200 {
		t.Fatalf("HEAD = %d, want 200", code)
	}

	code, _ = protocol.Handle(e, protocol.Request{Method: "DELETE", Plugin: "nosql", Param: "key1"})
	if code != 200 {
		t.Fatalf("DELETE = %d, want 200", code)
	}

	code, _ = protocol.Handle(e, protocol.Request{Method: "GET", Plugin: "nosql", Param: "key1"})
	if code != 404 {
		t.Fatalf("GET after DELETE = %d, want 404", code)
	}
}

func TestHandle_PutOverwrite(t *testing.T) {
	e := newEngine()
	protocol.Handle(e, protocol.Request{Method: "PUT", Plugin: "nosql", Param: "k", Body: "v1"})
	protocol.Handle(e, protocol.Request{Method: "PUT", Plugin: "nosql", Param: "k", Body: "v2"})
	code, body := protocol.Handle(e, protocol.Request{Method: "GET", Plugin: "nosql", Param: "k"})
	if code != 200 || body != "v2" {
		t.Errorf("GET after overwrite = %d %q, want 200 %q", code, body, "v2")
	}
}

func TestHandle_UnknownPlugin(t *testing.T) {
	e := newEngine()
	code, _ := protocol.Handle(e, protocol.Request{Method: "GET", Plugin: "bogus", Param: "x"})
	if code != 501 {
		t.Errorf("unknown plugin = %d, want 501", code)
	}
}

func TestHandle_UnknownMethod(t *testing.T) {
	e := newEngine()
	code, _ := protocol.Handle(e, protocol.Request{Method: "PATCH", Plugin: "nosql", Param: "x"})
	if code != 501 {
		t.Errorf("unknown method = %d, want 501", code)
	}
}

func TestHandle_SnapshotBackupAndRestore(t *testing.T) {
	e := newEngine()
	protocol.Handle(e, protocol.Request{Method: "POST", Plugin: "nosql", Param: "k", Body: "v"})

	path := filepath.Join(t.TempDir(), "s.bin")
	code, _ := protocol.Handle(e, protocol.Request{Method: "POST", Plugin: "snapshot", Param: "backup", Body: path})
	if code != 200 {
		t.Fatalf("backup = %d, want 200", code)
	}

	e2 := newEngine()
	code, _ = protocol.Handle(e2, protocol.Request{Method: "POST", Plugin: "snapshot", Param: "restore", Body: path})
	if code != 200 {
		t.Fatalf("restore = %d, want 200", code)
	}
	_, body := protocol.Handle(e2, protocol.Request{Method: "GET", Plugin: "nosql", Param: "k"})
	if body != "v" {
		t.Errorf("GET after restore = %q, want %q", body, "v")
	}
}

func TestHandle_SnapshotIOFailureReturns500(t *testing.T) {
	e := newEngine()
	code, body := protocol.Handle(e, protocol.Request{
		Method: "POST", Plugin: "snapshot", Param: "restore", Body: "/nonexistent/path/snapshot.bin",
	})
	if code != 500 || body == "" {
		t.Errorf("restore of a missing file = %d %q, want 500 with a message", code, body)
	}
}

func TestHandle_SnapshotUnknownParam(t *testing.T) {
	e := newEngine()
	code, _ := protocol.Handle(e, protocol.Request{Method: "POST", Plugin: "snapshot", Param: "bogus"})
	if code != 501 {
		t.Errorf("unknown snapshot param = %d, want 501", code)
	}
}
