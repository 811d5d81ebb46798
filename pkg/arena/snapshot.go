package arena

import (
	"os"

	"github.com/huynhanx03/arenakv/pkg/common/apperr"
)

// Save implements the snapshot interface's save half (C9): it writes the
// arena's raw bytes verbatim to path, with no header or checksum.
func (a *Arena) Save(path string) error {
	if err := os.WriteFile(path, a.bytes, 0o644); err != nil {
		return apperr.IOFailure(err)
	}
	return nil
}

// Load implements the snapshot interface's load half (C9): it reads path
// and copies its bytes into the arena in place, truncating or zero-padding
// to the arena's exact length. No validation of the loaded bytes' internal
// consistency is performed — a load is equivalent to warm-restarting the
// process state.
//
// The façade's cache and heap scan cursor are reset afterward: they hold
// state that does not live in the arena bytes and would otherwise no
// longer correspond to what was just loaded.
func (a *Arena) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperr.IOFailure(err)
	}
	n := copy(a.bytes, data)
	for i := n; i < len(a.bytes); i++ {
		a.bytes[i] = 0
	}
	a.store.ResetAfterLoad()
	return nil
}
