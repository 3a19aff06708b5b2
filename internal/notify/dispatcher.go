package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "applestore/internal/log"
	"applestore/internal/metrics"
)

type Kind string

const (
	KindLowStock Kind = "low_stock"
	KindInquiry  Kind = "inquiry"
)

// Notification is a prepared outbound message. Link is the deep link that
// delivers Text to Phone.
type Notification struct {
	ID         string      `json:"id"`
	Kind       Kind        `json:"kind"`
	Phone      string      `json:"phone"`
	Text       string      `json:"text"`
	Link       string      `json:"link"`
	Items      []AlertItem `json:"items,omitempty"`
	ProductIDs []int64     `json:"productIds,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// NewLowStockAlert builds the owner alert for items.
func NewLowStockAlert(phone string, items []AlertItem, now time.Time) Notification {
	text := AlertMessage(items)
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return Notification{
		ID:         uuid.NewString(),
		Kind:       KindLowStock,
		Phone:      phone,
		Text:       text,
		Link:       AlertLink(phone, text),
		Items:      items,
		ProductIDs: ids,
		CreatedAt:  now.UTC(),
	}
}

// Sink delivers notifications somewhere.
type Sink interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Dispatcher decouples delivery from the caller: Enqueue never blocks, and a
// worker fans each notification out to every sink.
type Dispatcher struct {
	sinks   []Sink
	queue   chan Notification
	timeout time.Duration
	metrics *metrics.Metrics

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func NewDispatcher(size int, m *metrics.Metrics, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 64
	}
	d := &Dispatcher{
		sinks:   sinks,
		queue:   make(chan Notification, size),
		timeout: 10 * time.Second,
		metrics: m,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue reports whether n was accepted. A full queue or a closed
// dispatcher drops it.
func (d *Dispatcher) Enqueue(n Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		applog.Warn(nil, "notify.queue.full", nil, map[string]any{"id": n.ID, "kind": n.Kind})
		return false
	}
}

// Close stops accepting work and waits for queued notifications.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			err := s.Send(ctx, n)
			cancel()
			d.metrics.Notified(s.Name(), err)
			if err != nil {
				applog.Error(nil, "notify.send.fail", err, map[string]any{"sink": s.Name(), "id": n.ID})
			}
		}
	}
}

// LogSink records the deep link; an operator or the admin UI opens it.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Send(_ context.Context, n Notification) error {
	applog.Info(nil, "notify.deeplink", map[string]any{
		"id":       n.ID,
		"kind":     n.Kind,
		"link":     n.Link,
		"products": n.ProductIDs,
	})
	return nil
}
