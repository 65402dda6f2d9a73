package mqtt

import "github.com/dfpong/dfpong-controller/internal/ble"

// statusQueue holds statuses waiting for the broker, at most limit of them.
// Pushing onto a full queue discards the oldest status. The caller
// synchronizes access.
type statusQueue struct {
	items   []ble.Status
	limit   int
	dropped int
}

func newStatusQueue(limit int) *statusQueue {
	return &statusQueue{items: make([]ble.Status, 0, limit), limit: limit}
}

func (q *statusQueue) push(s ble.Status) {
	if len(q.items) == q.limit {
		n := copy(q.items, q.items[1:])
		q.items = q.items[:n]
		q.dropped++
	}
	q.items = append(q.items, s)
}

// take empties the queue. It returns the statuses oldest first and how
// many were discarded since the previous take.
func (q *statusQueue) take() ([]ble.Status, int) {
	dropped := q.dropped
	q.dropped = 0
	if len(q.items) == 0 {
		return nil, dropped
	}
	batch := make([]ble.Status, len(q.items))
	copy(batch, q.items)
	q.items = q.items[:0]
	return batch, dropped
}
