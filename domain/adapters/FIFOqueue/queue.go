package FIFOqueue

import (
	"sync/atomic"

	"github.com/antigloss/go/concurrent/container/queue"
)

// FIFOQueue is a first-in first-out queue of nodes.
type FIFOQueue struct {
	queue *queue.LockfreeQueue
	size  uint64
}

func New() *FIFOQueue {
	return &FIFOQueue{
		queue: queue.NewLockfreeQueue(),
		size:  0,
	}
}

func (q *FIFOQueue) Push(node string) {
	atomic.AddUint64(&q.size, 1)
	q.queue.Push(node)
}

// Pop returns false when the queue is empty.
func (q *FIFOQueue) Pop() (string, bool) {
	v := q.queue.Pop()
	if v == nil {
		return "", false
	}
	atomic.AddUint64(&q.size, ^uint64(0))
	return v.(string), true
}

func (q *FIFOQueue) Len() uint64 {
	return atomic.LoadUint64(&q.size)
}
