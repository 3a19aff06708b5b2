package services

import (
	"context"
	"time"

	"applestore/internal/domain"
	applog "applestore/internal/log"
	"applestore/internal/metrics"
	"applestore/internal/notify"
	"applestore/internal/repos"
)

// AlertCooldown is the minimum gap between two alerts for one product.
const AlertCooldown = 24 * time.Hour

// DueForAlert reports whether p is under its threshold and was not alerted
// within the cooldown.
func DueForAlert(p domain.Product, now time.Time) bool {
	if p.Stock >= p.Threshold() {
		return false
	}
	return p.LastStockAlert == nil || now.Sub(*p.LastStockAlert) > AlertCooldown
}

func ScanLowStock(products []domain.Product, now time.Time) []domain.Product {
	out := []domain.Product{}
	for _, p := range products {
		if DueForAlert(p, now) {
			out = append(out, p)
		}
	}
	return out
}

type Enqueuer interface {
	Enqueue(n notify.Notification) bool
}

type LowStockReport struct {
	Checked      int                  `json:"checked"`
	Alerts       []notify.AlertItem   `json:"alerts"`
	StampFailed  map[int64]string     `json:"stampFailed,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Queued       bool                 `json:"queued"`
	Suppressed   string               `json:"suppressed,omitempty"`
}

// LowStockMonitor finds products that need restocking and notifies the
// store owner at most once per cooldown per product.
type LowStockMonitor struct {
	store    *CatalogStore
	gw       Gateway
	notifier Enqueuer
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewLowStockMonitor(store *CatalogStore, gw Gateway, n Enqueuer, m *metrics.Metrics) *LowStockMonitor {
	return &LowStockMonitor{store: store, gw: gw, notifier: n, metrics: m, now: time.Now}
}

// WithClock replaces the monitor's time source.
func (m *LowStockMonitor) WithClock(now func() time.Time) *LowStockMonitor {
	m.now = now
	return m
}

// Scan selects due products and stamps each with now. A failed stamp is
// logged and the product is still reported.
func (m *LowStockMonitor) Scan(ctx context.Context, products []domain.Product, now time.Time) ([]domain.Product, map[int64]string) {
	due := ScanLowStock(products, now)
	failed := map[int64]string{}
	for i, p := range due {
		stamped, err := m.gw.PatchProduct(ctx, p.ID, repos.Patch{repos.FieldLastStockAlert: now.UTC()})
		if err != nil {
			applog.Warn(nil, "lowstock.stamp.fail", err, map[string]any{"product_id": p.ID})
			failed[p.ID] = err.Error()
			continue
		}
		due[i] = stamped
		m.store.put(stamped.Clone())
	}
	if len(due) > len(failed) {
		m.store.invalidate(ctx)
	}
	return due, failed
}

// Run performs one check. It does nothing while the store is offline or
// when no owner contact is configured.
func (m *LowStockMonitor) Run(ctx context.Context) (LowStockReport, error) {
	report := LowStockReport{Alerts: []notify.AlertItem{}}
	cfg := m.store.Config()
	switch {
	case m.store.Offline():
		report.Suppressed = "offline"
		return report, nil
	case cfg.WhatsappNumber == "":
		report.Suppressed = "no contact number"
		return report, nil
	}

	products, err := m.gw.ListProducts(ctx)
	if err != nil {
		applog.Error(nil, "lowstock.list.fail", err, nil)
		return report, err
	}
	now := m.now()
	report.Checked = len(products)

	due, failed := m.Scan(ctx, products, now)
	if len(failed) > 0 {
		report.StampFailed = failed
	}
	m.metrics.LowStock(len(due))
	if len(due) == 0 {
		applog.Debug(nil, "lowstock.none", map[string]any{"checked": report.Checked})
		return report, nil
	}

	for _, p := range due {
		report.Alerts = append(report.Alerts, notify.AlertItemFor(p))
	}
	n := notify.NewLowStockAlert(cfg.WhatsappNumber, report.Alerts, now)
	report.Notification = &n
	if m.notifier != nil {
		report.Queued = m.notifier.Enqueue(n)
	}
	applog.Audit(nil, "lowstock.alert", map[string]any{
		"products": n.ProductIDs, "notification": n.ID, "queued": report.Queued,
	})
	return report, nil
}
