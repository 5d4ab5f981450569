package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPgxPoolMetrics exposes connection pool statistics as gauges,
// sampled from pool.Stat() at scrape time.
func RegisterPgxPoolMetrics(pool *pgxpool.Pool) {
	gauges := []struct {
		name string
		help string
		read func(*pgxpool.Stat) float64
	}{
		{
			name: "backhaul_pgxpool_acquired_conns",
			help: "Connections currently checked out of the pool",
			read: func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) },
		},
		{
			name: "backhaul_pgxpool_idle_conns",
			help: "Connections sitting idle in the pool",
			read: func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) },
		},
		{
			name: "backhaul_pgxpool_total_conns",
			help: "Total connections held by the pool",
			read: func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) },
		},
		{
			name: "backhaul_pgxpool_max_conns",
			help: "Configured pool connection limit",
			read: func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) },
		},
	}

	for _, g := range gauges {
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			func() float64 { return g.read(pool.Stat()) },
		))
	}
}
