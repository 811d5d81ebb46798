// Package server implements the connection dispatcher (added, A4/A8/A9
// support): the bounded single-writer queue that turns the concurrency
// model's "serialize all core ops" requirement into a concrete, testable
// component instead of a bare mutex (SPEC_FULL.md §4.12, §5).
package server

import (
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/huynhanx03/arenakv/pkg/datastructs/queue"
	"github.com/huynhanx03/arenakv/pkg/datastructs/shardedmap"
	"github.com/huynhanx03/arenakv/pkg/hash"
	"github.com/huynhanx03/arenakv/pkg/protocol"
	rt "github.com/huynhanx03/arenakv/pkg/runtime"
)

// job is one parsed request in flight, paired with the channel its
// submitting goroutine is waiting on for a reply.
type job struct {
	req   protocol.Request
	reply chan Response
}

// Response is what the dispatcher hands back for a processed job.
type Response struct {
	Code int
	Body string
}

// HotKey pairs a key with its exact request count since startup.
type HotKey struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// counterMap is a sharded map of exact per-key request counts, shared by
// the per-verb (A8) and hot-key (A9) tracking below — both are "how many
// times has this string been seen" with the same shape, so they share one
// helper instead of each growing its own bookkeeping.
type counterMap = shardedmap.Map[string, *atomic.Int64]

func newCounterMap(shards int) *counterMap {
	return shardedmap.New[string, *atomic.Int64](shards, stringHash)
}

func incr(m *counterMap, key string) {
	n, ok := m.Get(key)
	if !ok {
		n = &atomic.Int64{}
		m.Set(key, n)
	}
	n.Add(1)
}

func get(m *counterMap, key string) int64 {
	n, ok := m.Get(key)
	if !ok {
		return 0
	}
	return n.Load()
}

func stringHash(s string) uint64 {
	h, _ := hash.KeyToHash(s)
	return h
}

// Dispatcher owns the engine exclusively. Every accepted connection
// (pkg/server's TCP listener) parses its own request and calls Submit,
// which enqueues the job and blocks for the reply; only Run's goroutine
// ever calls into protocol.Handle, so the core (C1-C10) never observes
// concurrent mutation.
type Dispatcher struct {
	engine protocol.Engine
	queue  *queue.MPMC[job]
	log    *AccessLogger

	hotkeys *counterMap
	verbs   *counterMap

	cacheHits, cacheMisses atomic.Int64

	stopped atomic.Bool
	ready   atomic.Bool
}

// NewDispatcher builds a Dispatcher whose job queue holds queueCapacity
// pending requests (rounded up to a power of two by the underlying MPMC
// ring). log may be nil to disable access-log batching (A7).
func NewDispatcher(engine protocol.Engine, queueCapacity int, log *AccessLogger) *Dispatcher {
	return &Dispatcher{
		engine:  engine,
		queue:   queue.NewMPMC[job](queueCapacity),
		log:     log,
		hotkeys: newCounterMap(16),
		verbs:   newCounterMap(8),
	}
}

// Submit enqueues req and blocks for the dispatcher's reply. The second
// return value is false if the queue was full — callers surface this as a
// 500 "server busy" rather than blocking indefinitely (SPEC_FULL.md §5).
func (d *Dispatcher) Submit(req protocol.Request) (Response, bool) {
	j := job{req: req, reply: make(chan Response, 1)}
	if !d.queue.Enqueue(j) {
		return Response{}, false
	}
	return <-j.reply, true
}

// Run drains the job queue in FIFO order until Stop is called. It is the
// single goroutine permitted to call protocol.Handle.
func (d *Dispatcher) Run() {
	d.ready.Store(true)
	defer d.ready.Store(false)

	idle := 0
	for !d.stopped.Load() {
		j, ok := d.queue.Dequeue()
		if !ok {
			idle++
			if idle < 64 {
				runtime.Gosched()
			}
			continue
		}
		idle = 0
		d.process(j)
	}
}

// process runs one job through the engine. Two of the core's fatal
// assertions can panic here, on the single goroutine Run owns — not on a
// connection goroutine — so the recover lives here rather than at the
// listener, matching §7's "caught only at the request-processing boundary
// to avoid taking down the whole process on a single bad request": the
// corrupted-arena bounds check (SPEC_FULL.md §9 item 5, e.g. a
// truncated/corrupt snapshot restored via §4.9's Load followed by any
// Set), and the façade's non-empty-key assertion (§4.7) for a request
// whose Param the wire parser left empty (e.g. "GET /nosql/").
func (d *Dispatcher) process(j job) {
	replied := false
	defer func() {
		if r := recover(); r != nil && !replied {
			j.reply <- Response{Code: 500, Body: "internal error"}
		}
	}()

	incr(d.verbs, j.req.Method)
	if j.req.Plugin == "nosql" && j.req.Param != "" {
		incr(d.hotkeys, j.req.Param)
	}

	hit := j.req.Method == "GET" && d.engine.Store().Has(j.req.Param)
	start := rt.NanoTime()
	code, body := protocol.Handle(d.engine, j.req)
	elapsed := rt.NanoTime() - start
	if j.req.Method == "GET" {
		if hit {
			d.cacheHits.Add(1)
		} else {
			d.cacheMisses.Add(1)
		}
	}

	j.reply <- Response{Code: code, Body: body}
	replied = true
	d.log.Push(AccessEvent{Verb: j.req.Method, KeyLen: len(j.req.Param), Code: code, LatencyNanos: elapsed})
}

// Stop tells Run to exit once it next notices; it does not drain
// already-queued jobs.
func (d *Dispatcher) Stop() { d.stopped.Store(true) }

// Ready reports whether Run's goroutine is actively draining the queue —
// the admin surface's /health check (SPEC_FULL.md §4.13).
func (d *Dispatcher) Ready() bool { return d.ready.Load() }

// VerbCount returns the number of requests dispatched for verb so far.
func (d *Dispatcher) VerbCount(verb string) int64 { return get(d.verbs, verb) }

// CacheHits returns the number of GET requests the direct-mapped cache or
// the index satisfied so far.
func (d *Dispatcher) CacheHits() int64 { return d.cacheHits.Load() }

// CacheMisses returns the number of GET requests that found no value.
func (d *Dispatcher) CacheMisses() int64 { return d.cacheMisses.Load() }

// TopHotKeys returns up to n keys ever seen by the dispatcher, ranked by
// exact request count since startup (SPEC_FULL.md §4.13's /debug/hotkeys).
func (d *Dispatcher) TopHotKeys(n int) []HotKey {
	var all []HotKey
	d.hotkeys.Do(func(key string, count *atomic.Int64) {
		all = append(all, HotKey{Key: key, Count: count.Load()})
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Count > all[j].Count })
	if n < len(all) {
		all = all[:n]
	}
	return all
}
