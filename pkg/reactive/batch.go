package reactive

import (
	"runtime"
	"sync"
)

// batchContext holds the batch state for one goroutine.
type batchContext struct {
	// depth tracks nested Batch() calls.
	depth int

	// pending accumulates deliveries to run when the outermost batch completes.
	pending []pendingDelivery
}

// pendingDelivery is one queued notification. Deliveries with a non-zero key
// are deduplicated: only the first queued slot runs, reading the latest value.
type pendingDelivery struct {
	key uint64
	run func()
}

// batchContexts stores per-goroutine batch state.
var batchContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine,
// parsed from the runtime stack header "goroutine <id> ".
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// currentBatch returns the batch context of the calling goroutine, or nil.
func currentBatch() *batchContext {
	if ctx, ok := batchContexts.Load(getGoroutineID()); ok {
		return ctx.(*batchContext)
	}
	return nil
}

// inBatch reports whether the calling goroutine is inside Batch.
func inBatch() bool {
	ctx := currentBatch()
	return ctx != nil && ctx.depth > 0
}

// queuePending queues a delivery on the calling goroutine's batch.
func queuePending(key uint64, run func()) {
	ctx := currentBatch()
	if ctx == nil {
		run()
		return
	}
	ctx.pending = append(ctx.pending, pendingDelivery{key: key, run: run})
}

// Batch groups multiple writes into a single notification phase.
// Value subscriptions fire once with the final value; collection changes
// are replayed in order. Batches can be nested; deliveries run when the
// outermost batch completes.
//
// Example:
//
//	reactive.Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
func Batch(fn func()) {
	gid := getGoroutineID()
	v, _ := batchContexts.LoadOrStore(gid, &batchContext{})
	ctx := v.(*batchContext)
	ctx.depth++

	defer func() {
		ctx.depth--
		if ctx.depth > 0 {
			return
		}
		pending := ctx.pending
		ctx.pending = nil
		batchContexts.Delete(gid)
		flushPending(pending)
	}()

	fn()
}

// flushPending runs queued deliveries in order, skipping duplicate keys.
func flushPending(pending []pendingDelivery) {
	seen := make(map[uint64]bool, len(pending))
	for _, p := range pending {
		if p.key != 0 {
			if seen[p.key] {
				continue
			}
			seen[p.key] = true
		}
		p.run()
	}
}
