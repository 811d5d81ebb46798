// Package admin implements the read-only debug/metrics HTTP API (added,
// A6): a gin router bound to ADMIN_PORT, independent of the raw
// HTTP/1.1-framed wire protocol the store itself speaks
// (SPEC_FULL.md §4.13).
package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/arenakv/pkg/arena"
	"github.com/huynhanx03/arenakv/pkg/hash"
	"github.com/huynhanx03/arenakv/pkg/server"
	"github.com/huynhanx03/arenakv/pkg/timer"
)

var errNotANumber = errors.New("not a positive integer")

// processTimer is a single cached clock shared by every Router call in this
// process, ticking once a second so /debug/stats can report uptime without
// a time.Now syscall on every request.
var (
	processTimer   = timer.NewCachedTimer(time.Second)
	processStarted = processTimer.Now()
)

// Counters is the read side of the dispatcher's per-verb and hot-key
// tracking, kept as an interface so the admin router doesn't need to
// depend on pkg/server's concrete Dispatcher beyond this surface.
type Counters interface {
	Ready() bool
	VerbCount(verb string) int64
	CacheHits() int64
	CacheMisses() int64
	TopHotKeys(n int) []server.HotKey
}

// Router builds the gin engine exposing /debug/stats, /debug/hotkeys,
// /debug/fingerprint, and /health over a, the live arena, and counts, the
// dispatcher's request/hot-key tracking.
func Router(a *arena.Arena, counts Counters) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		if !counts.Ready() {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.Status(http.StatusOK)
	})

	r.GET("/debug/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, buildStats(a, counts))
	})

	r.GET("/debug/hotkeys", func(c *gin.Context) {
		n := 10
		if q := c.Query("n"); q != "" {
			if parsed, err := parsePositiveInt(q); err == nil {
				n = parsed
			}
		}
		c.JSON(http.StatusOK, gin.H{"hotkeys": counts.TopHotKeys(n)})
	})

	r.GET("/debug/fingerprint", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fingerprint": fingerprint(a)})
	})

	return r
}

// stats is the JSON shape of GET /debug/stats.
type stats struct {
	BitmapBusy     int              `json:"bitmap_busy_slots"`
	BitmapCapacity int              `json:"bitmap_capacity"`
	BloomFillRatio float64          `json:"bloom_fill_ratio"`
	HeapBusyBytes  int              `json:"heap_busy_bytes"`
	HeapFreeBytes  int              `json:"heap_free_bytes"`
	CacheHits      int64            `json:"cache_hits"`
	CacheMisses    int64            `json:"cache_misses"`
	RequestsByVerb map[string]int64 `json:"requests_by_verb"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
}

func buildStats(a *arena.Arena, counts Counters) stats {
	busyBytes, freeBytes := a.Store().HeapStats()
	return stats{
		BitmapBusy:     a.Store().BitmapStats(),
		BitmapCapacity: a.Store().BitmapCapacity(),
		BloomFillRatio: a.Store().BloomFillRatio(),
		HeapBusyBytes:  busyBytes,
		HeapFreeBytes:  freeBytes,
		CacheHits:      counts.CacheHits(),
		CacheMisses:    counts.CacheMisses(),
		RequestsByVerb: map[string]int64{
			"HEAD":   counts.VerbCount("HEAD"),
			"GET":    counts.VerbCount("GET"),
			"PUT":    counts.VerbCount("PUT"),
			"POST":   counts.VerbCount("POST"),
			"DELETE": counts.VerbCount("DELETE"),
		},
		UptimeSeconds: processTimer.Now().Sub(processStarted).Seconds(),
	}
}

// fingerprint hashes the live arena bytes with the teacher's xxhash-backed
// hash.KeyToHash, giving operators a cheap "did anything change since the
// last snapshot" signal without it being part of the snapshot format
// itself (SPEC_FULL.md §4.13).
func fingerprint(a *arena.Arena) uint64 {
	_, x := hash.KeyToHash(a.Bytes())
	return x
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errNotANumber
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 0, errNotANumber
	}
	return n, nil
}
