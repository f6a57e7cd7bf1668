package runtime

import (
	"sync"

	"github.com/roach88/treasury/internal/ir"
)

// requestKind distinguishes queued requests.
type requestKind int

const (
	// requestCall applies a call.
	requestCall requestKind = iota + 1
	// requestSeal finalizes the current block.
	requestSeal
)

type result struct {
	receipt Receipt
	block   ir.BlockRecord
	err     error
}

// request is one unit of work for the Run loop. reply is buffered so the
// loop never blocks on a caller that gave up.
type request struct {
	kind  requestKind
	call  Call
	reply chan result
}

// requestQueue is a thread-safe unbounded FIFO of requests.
//
// A buffered signal channel of size 1 coalesces wakeups so the Run loop can
// wait with select alongside ctx.Done().
type requestQueue struct {
	mu       sync.Mutex
	requests []request
	closed   bool
	signal   chan struct{}
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		requests: make([]request, 0, 64),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds req to the back of the queue. It returns false once the
// queue is closed.
func (q *requestQueue) Enqueue(req request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.requests = append(q.requests, req)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front request without blocking.
func (q *requestQueue) TryDequeue() (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return request{}, false
	}
	req := q.requests[0]
	// Clear the slot so the backing array does not pin the reply channel.
	q.requests[0] = request{}
	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}
	return req, true
}

// Wait returns a channel signalled when requests may be available. It is
// closed when the queue closes.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued requests.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Close stops accepting requests and wakes the Run loop.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
