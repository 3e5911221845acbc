package feedback

import (
	"time"

	"github.com/formsense-data/form.report/internal/engine"
)

// Item wraps a FormIssue queued for voice delivery.
type Item struct {
	Issue      engine.FormIssue
	EnqueuedAt time.Time
}

// queue is a bounded priority queue of feedback items. When full, pushing
// a new item evicts the oldest lowest-priority entry; an incoming item that
// would itself be the lowest is dropped instead. Not safe for concurrent
// use; the Manager serialises access.
type queue struct {
	items []Item
	max   int
}

func newQueue(max int) *queue {
	if max < 1 {
		max = 1
	}
	return &queue{max: max}
}

// Push adds an item, evicting if necessary. Returns false when the item
// was dropped because everything queued outranks it.
func (q *queue) Push(item Item) bool {
	if len(q.items) < q.max {
		q.items = append(q.items, item)
		return true
	}

	// Find the oldest lowest-priority entry.
	evict := 0
	for i := 1; i < len(q.items); i++ {
		if q.items[i].Issue.Priority.Rank() < q.items[evict].Issue.Priority.Rank() {
			evict = i
		}
	}
	if item.Issue.Priority.Rank() <= q.items[evict].Issue.Priority.Rank() {
		return false
	}
	q.items = append(q.items[:evict], q.items[evict+1:]...)
	q.items = append(q.items, item)
	return true
}

// PopHighest removes and returns the oldest highest-priority item.
func (q *queue) PopHighest() (Item, bool) {
	best := -1
	for i := range q.items {
		if best == -1 || q.items[i].Issue.Priority.Rank() > q.items[best].Issue.Priority.Rank() {
			best = i
		}
	}
	if best == -1 {
		return Item{}, false
	}
	item := q.items[best]
	q.items = append(q.items[:best], q.items[best+1:]...)
	return item, true
}

// ContainsType reports whether an item with the given issue type is queued.
func (q *queue) ContainsType(issueType string) bool {
	for i := range q.items {
		if q.items[i].Issue.Type == issueType {
			return true
		}
	}
	return false
}

// Len returns the number of queued items.
func (q *queue) Len() int { return len(q.items) }

// Clear drops every queued item.
func (q *queue) Clear() { q.items = nil }
