package runtime

import (
	"context"
	"errors"

	"github.com/roach88/treasury/internal/ir"
)

// ErrStopped is returned by Submit and Seal once the Run loop has stopped.
var ErrStopped = errors.New("runtime stopped")

// Run drains the submission queue on the calling goroutine until ctx is
// canceled or Stop is called. Requests still queued when the loop exits are
// answered with ErrStopped.
func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("runtime loop starting", "block", r.CurrentBlock())
	defer r.drainStopped()

	for {
		if req, ok := r.queue.TryDequeue(); ok {
			r.process(ctx, req)
			continue
		}

		select {
		case <-ctx.Done():
			r.logger.Info("runtime loop stopping: context canceled")
			r.queue.Close()
			return ctx.Err()
		case <-r.queue.Wait():
			if r.closed() && r.queue.Len() == 0 {
				r.logger.Info("runtime loop stopping: queue closed")
				return nil
			}
		}
	}
}

func (r *Runtime) closed() bool {
	r.queue.mu.Lock()
	defer r.queue.mu.Unlock()
	return r.queue.closed
}

// Stop closes the queue, which makes Run return.
func (r *Runtime) Stop() {
	r.queue.Close()
}

func (r *Runtime) process(ctx context.Context, req request) {
	var res result
	switch req.kind {
	case requestCall:
		res.receipt, res.err = r.Apply(ctx, req.call)
	case requestSeal:
		res.block, res.err = r.FinalizeBlock(ctx)
	}
	req.reply <- res
}

func (r *Runtime) drainStopped() {
	for {
		req, ok := r.queue.TryDequeue()
		if !ok {
			return
		}
		req.reply <- result{err: ErrStopped}
	}
}

func (r *Runtime) submit(ctx context.Context, req request) (result, error) {
	req.reply = make(chan result, 1)
	if !r.queue.Enqueue(req) {
		return result{}, ErrStopped
	}
	select {
	case res := <-req.reply:
		return res, res.err
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// Submit queues call for the Run loop and waits for its receipt.
func (r *Runtime) Submit(ctx context.Context, call Call) (Receipt, error) {
	res, err := r.submit(ctx, request{kind: requestCall, call: call})
	return res.receipt, err
}

// Seal queues the finalization of the current block and waits for it.
func (r *Runtime) Seal(ctx context.Context) (ir.BlockRecord, error) {
	res, err := r.submit(ctx, request{kind: requestSeal})
	return res.block, err
}
