package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the store's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RefreshTotal       *prometheus.CounterVec
	Offline            prometheus.Gauge
	GatewayOpsTotal    *prometheus.CounterVec
	RepriceTotal       *prometheus.CounterVec
	RateFetchTotal     *prometheus.CounterVec
	DollarRateGauge    *prometheus.GaugeVec
	LowStockAlerts     prometheus.Counter
	NotificationsTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RefreshTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "store_refresh_total",
			Help: "Catalog refreshes by outcome",
		}, []string{"result"}),
		Offline: f.NewGauge(prometheus.GaugeOpts{
			Name: "store_offline",
			Help: "1 while the store serves sample data",
		}),
		GatewayOpsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_ops_total",
			Help: "Persistence gateway operations",
		}, []string{"op", "result"}),
		RepriceTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reprice_products_total",
			Help: "Per-product repricing writes after a config update",
		}, []string{"result"}),
		RateFetchTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_fetch_total",
			Help: "Dollar quote fetches",
		}, []string{"result"}),
		DollarRateGauge: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dollar_rate",
			Help: "Last known dollar sell quote",
		}, []string{"kind"}),
		LowStockAlerts: f.NewCounter(prometheus.CounterOpts{
			Name: "low_stock_alerts_total",
			Help: "Products reported by the low-stock monitor",
		}),
		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification deliveries by sink",
		}, []string{"sink", "result"}),
	}
}

func (m *Metrics) Refreshed(offline bool) {
	if m == nil {
		return
	}
	if offline {
		m.RefreshTotal.WithLabelValues("offline").Inc()
		m.Offline.Set(1)
		return
	}
	m.RefreshTotal.WithLabelValues("online").Inc()
	m.Offline.Set(0)
}

func (m *Metrics) GatewayOp(op string, err error) {
	if m == nil {
		return
	}
	m.GatewayOpsTotal.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) Repriced(err error) {
	if m == nil {
		return
	}
	m.RepriceTotal.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) RateFetched(res string) {
	if m == nil {
		return
	}
	m.RateFetchTotal.WithLabelValues(res).Inc()
}

func (m *Metrics) DollarRate(blue, official float64) {
	if m == nil {
		return
	}
	m.DollarRateGauge.WithLabelValues("blue").Set(blue)
	m.DollarRateGauge.WithLabelValues("official").Set(official)
}

func (m *Metrics) LowStock(n int) {
	if m == nil {
		return
	}
	m.LowStockAlerts.Add(float64(n))
}

func (m *Metrics) Notified(sink string, err error) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(sink, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
