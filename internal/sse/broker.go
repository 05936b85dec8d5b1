// Package sse implements a Server-Sent Events broker for vault pipeline events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// EventIndexUpdated carries the document changes collected during one index
// window.
const EventIndexUpdated = "index.updated"

// Change is one document change inside an index.updated event.
type Change struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// IndexUpdate is the payload of EventIndexUpdated.
type IndexUpdate struct {
	Changes []Change `json:"changes"`
}

type message struct {
	id  uint64
	raw []byte
}

type subscription struct {
	ch     chan []byte
	lastID uint64 // replay events after this id; 0 replays nothing
}

// Broker fans pipeline events out to SSE clients.
//
// A single loop goroutine owns the client set, the replay ring and the pending
// document changes; public methods talk to it over channels.
type Broker struct {
	window    time.Duration
	replay    int
	heartbeat time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan publishReq
	changeCh      chan Change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

type publishReq struct {
	event string
	data  any
}

// Option configures a Broker.
type Option func(*Broker)

// WithReplay keeps the last n events for clients reconnecting with
// Last-Event-ID.
func WithReplay(n int) Option { return func(b *Broker) { b.replay = n } }

// WithHeartbeat sets the interval of keep-alive comments on open streams.
func WithHeartbeat(d time.Duration) Option { return func(b *Broker) { b.heartbeat = d } }

// NewBroker creates a broker that collects document changes for window before
// sending them as one index.updated event.
func NewBroker(window time.Duration, opts ...Option) *Broker {
	if window <= 0 {
		window = 2 * time.Second
	}

	b := &Broker{
		window:        window,
		replay:        64,
		heartbeat:     30 * time.Second,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan publishReq, 256),
		changeCh:      make(chan Change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}
	if b.heartbeat <= 0 {
		b.heartbeat = 30 * time.Second
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	var (
		clients = make(map[chan []byte]struct{})
		ring    []message
		nextID  uint64
		pending []Change
		flush   <-chan time.Time
	)

	broadcast := func(event string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		nextID++
		m := message{id: nextID, raw: []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", nextID, event, payload))}
		if b.replay > 0 {
			ring = append(ring, m)
			if len(ring) > b.replay {
				ring = ring[len(ring)-b.replay:]
			}
		}
		for ch := range clients {
			select {
			case ch <- m.raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = struct{}{}
			if sub.lastID == 0 {
				continue
			}
			for _, m := range ring {
				if m.id <= sub.lastID {
					continue
				}
				select {
				case sub.ch <- m.raw:
				default:
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case req := <-b.publishCh:
			broadcast(req.event, req.data)

		case c := <-b.changeCh:
			pending = mergeChange(pending, c)
			if flush == nil {
				flush = time.After(b.window)
			}

		case <-flush:
			flush = nil
			if len(pending) > 0 {
				broadcast(EventIndexUpdated, IndexUpdate{Changes: pending})
				pending = nil
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// mergeChange records c, replacing an earlier change to the same path.
func mergeChange(pending []Change, c Change) []Change {
	for i := range pending {
		if pending[i].Path == c.Path {
			pending[i].Kind = c.Kind
			return pending
		}
	}
	return append(pending, c)
}

// Close stops the loop and closes every client channel. Pending document
// changes are discarded.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	return b.subscribe(0)
}

func (b *Broker) subscribe(lastID uint64) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, lastID: lastID}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event string, data any) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- publishReq{event: event, data: data}:
	case <-b.stopped:
	}
}

// DocumentChanged queues a change for the next index.updated event.
func (b *Broker) DocumentChanged(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- Change{Kind: kind, Path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A Last-Event-ID
// header replays the retained events after that id.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.subscribe(lastID)
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.heartbeat)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
