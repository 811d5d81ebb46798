package protocol

import "github.com/huynhanx03/arenakv/pkg/store"

// Engine is the surface the request handler needs: the KV façade plus the
// snapshot save/load the reference file paths address (C9).
type Engine interface {
	Store() *store.Store
	Save(path string) error
	Load(path string) error
}

// Handle maps a parsed Request to a KV façade operation or a snapshot op,
// implementing the request handler contract (C10). Unknown plugins and
// methods fall through to 501. A nosql request with an empty Param (e.g.
// "GET /nosql/") reaches the façade's non-empty-key assertion and panics.
func Handle(e Engine, req Request) (code int, body string) {
	switch req.Plugin {
	case "nosql":
		return handleNosql(e.Store(), req)
	case "snapshot":
		return handleSnapshot(e, req)
	default:
		return 501, ""
	}
}

func handleNosql(s *store.Store, req Request) (int, string) {
	key := req.Param
	switch req.Method {
	case "HEAD":
		if s.Has(key) {
			return 200, ""
		}
		return 404, ""
	case "GET":
		if v, ok := s.Get(key); ok {
			return 200, v
		}
		return 404, ""
	case "PUT", "POST":
		// §9 item 2's resolution makes these equivalent: Store.Set always
		// removes any prior record before writing.
		if s.Set(key, req.Body) {
			return 200, ""
		}
		return 500, ""
	case "DELETE":
		if s.Delete(key) {
			return 200, ""
		}
		return 404, ""
	default:
		return 501, ""
	}
}

func handleSnapshot(e Engine, req Request) (int, string) {
	if req.Method != "POST" {
		return 501, ""
	}
	path := req.Body
	switch req.Param {
	case "backup":
		if err := e.Save(path); err != nil {
			return 500, err.Error()
		}
		return 200, ""
	case "restore":
		if err := e.Load(path); err != nil {
			return 500, err.Error()
		}
		return 200, ""
	default:
		return 501, ""
	}
}
