package chart

import (
	"sync"

	"github.com/raykavin/lightchart/pkg/core"
)

// RangeConsumer is a function type that processes visible range changes
type RangeConsumer func(core.VisibleRange)

// RangeFeed manages visible-range change subscriptions. Consumers are
// invoked synchronously at the end of the mutation that moved the
// range, in subscription order.
type RangeFeed struct {
	mu        sync.Mutex
	nextID    int
	consumers map[int]RangeConsumer
	order     []int
}

// NewRangeFeed creates a new range feed manager
func NewRangeFeed() *RangeFeed {
	return &RangeFeed{consumers: make(map[int]RangeConsumer)}
}

// Subscribe registers a consumer and returns its unsubscribe function.
func (f *RangeFeed) Subscribe(consumer RangeConsumer) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.consumers[id] = consumer
	f.order = append(f.order, id)

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.consumers, id)
	}
}

// Publish sends the new visible range to all subscribers.
func (f *RangeFeed) Publish(r core.VisibleRange) {
	f.mu.Lock()
	consumers := make([]RangeConsumer, 0, len(f.consumers))
	for _, id := range f.order {
		if c, ok := f.consumers[id]; ok {
			consumers = append(consumers, c)
		}
	}
	f.mu.Unlock()

	for _, consumer := range consumers {
		consumer(r)
	}
}
