package background

import (
	"context"
	"sync"
	"time"

	applog "applestore/internal/log"
	"applestore/internal/rates"
	"applestore/internal/services"
)

type LowStockRunner interface {
	Run(ctx context.Context) (services.LowStockReport, error)
}

type RateRefresher interface {
	RefreshDollarRates(ctx context.Context) (services.ConfigUpdate, rates.Quote, error)
}

type BackgroundTasks struct {
	LowStock LowStockRunner
	Rates    RateRefresher

	// LowStockSettle delays the first check so the catalog can load.
	LowStockSettle   time.Duration
	LowStockInterval time.Duration
	// RatesInterval <= 0 disables automatic rate refresh.
	RatesInterval time.Duration

	wg sync.WaitGroup
}

func NewBackgroundTasks(lowStock LowStockRunner, rr RateRefresher, settle, interval, ratesEvery time.Duration) *BackgroundTasks {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	if interval <= 0 {
		interval = services.AlertCooldown
	}
	return &BackgroundTasks{
		LowStock:         lowStock,
		Rates:            rr,
		LowStockSettle:   settle,
		LowStockInterval: interval,
		RatesInterval:    ratesEvery,
	}
}

// StartAll launches every task; they stop when ctx is cancelled.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	if bt.LowStock != nil {
		bt.wg.Add(1)
		go bt.startLowStockCheck(ctx)
	}
	if bt.Rates != nil && bt.RatesInterval > 0 {
		bt.wg.Add(1)
		go bt.startRatesUpdate(ctx)
	}
}

// Wait blocks until every started task has returned.
func (bt *BackgroundTasks) Wait() { bt.wg.Wait() }

func (bt *BackgroundTasks) startLowStockCheck(ctx context.Context) {
	defer bt.wg.Done()

	settle := time.NewTimer(bt.LowStockSettle)
	defer settle.Stop()
	select {
	case <-ctx.Done():
		return
	case <-settle.C:
		bt.checkLowStock(ctx)
	}

	ticker := time.NewTicker(bt.LowStockInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.checkLowStock(ctx)
		}
	}
}

func (bt *BackgroundTasks) checkLowStock(ctx context.Context) {
	report, err := bt.LowStock.Run(ctx)
	if err != nil {
		applog.Error(nil, "background.lowstock.fail", err, nil)
		return
	}
	applog.Debug(nil, "background.lowstock", map[string]any{
		"checked": report.Checked, "alerts": len(report.Alerts), "suppressed": report.Suppressed,
	})
}

func (bt *BackgroundTasks) startRatesUpdate(ctx context.Context) {
	defer bt.wg.Done()

	ticker := time.NewTicker(bt.RatesInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			upd, q, err := bt.Rates.RefreshDollarRates(ctx)
			if err != nil {
				applog.Warn(nil, "background.rates.fail", err, nil)
				continue
			}
			applog.Info(nil, "background.rates", map[string]any{
				"blue": upd.Config.DollarRateBlue, "official": upd.Config.DollarRateOfficial,
				"fallback": q.Fallback, "repriced": len(upd.Reprice.Updated),
			})
		}
	}
}
