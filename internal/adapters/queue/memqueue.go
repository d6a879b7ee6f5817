package queue

import (
	"sync"

	"github.com/eziosoft/MavlinkStats/internal/domain"
	"github.com/eziosoft/MavlinkStats/internal/ports"
)

// MemQueue is a bounded in-memory queue that preserves FIFO ordering.
type MemQueue struct {
	mu   sync.Mutex
	data []*domain.Message
	cap  int
}

func NewMemQueue(capacity int) *MemQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemQueue{
		data: make([]*domain.Message, 0, capacity),
		cap:  capacity,
	}
}

func (q *MemQueue) Enqueue(m *domain.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) >= q.cap {
		return false
	}
	q.data = append(q.data, m)
	return true
}

func (q *MemQueue) Dequeue() (*domain.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return nil, false
	}
	m := q.data[0]
	q.data[0] = nil
	q.data = q.data[1:]
	if len(q.data) == 0 {
		q.data = q.data[:0:0]
	}
	return m, true
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

var _ ports.MessageQueue = (*MemQueue)(nil)
