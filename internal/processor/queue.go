package processor

type deferred struct {
	occ     *Occurrence
	handler *Handler
}

// PostQueue holds class-level occurrences whose application waits until
// every method-level occurrence of the same scan has been applied
type PostQueue struct {
	items []deferred
}

// NewPostQueue creates an empty queue
func NewPostQueue() *PostQueue {
	return &PostQueue{}
}

// Enqueue defers an occurrence
func (q *PostQueue) Enqueue(occ *Occurrence, h *Handler) {
	q.items = append(q.items, deferred{occ: occ, handler: h})
}

// Len returns the number of pending occurrences
func (q *PostQueue) Len() int {
	return len(q.items)
}

// Drain runs every pending PostProcess in enqueue order and empties the
// queue. Occurrences enqueued while draining run in the same drain.
func (q *PostQueue) Drain(ctx *Context, visit func(*Occurrence, Outcome) bool) {
	for len(q.items) > 0 {
		next := q.items[0]
		q.items = q.items[1:]
		if next.handler.PostProcess == nil {
			continue
		}
		outcome := next.handler.PostProcess(ctx, next.occ)
		if visit != nil && !visit(next.occ, outcome) {
			q.items = nil
			return
		}
	}
}
