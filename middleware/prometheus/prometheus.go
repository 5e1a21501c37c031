package prometheus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zigzedd/zrm"
)

type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

func (m MiddlewareBuilder) Build() zrm.Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      m.Name,
		Subsystem: m.Subsystem,
		Namespace: m.Namespace,
		Help:      m.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{
		"type",  // statement type: SELECT, INSERT, ...
		"table", // table of the statement's model
	})

	prometheus.MustRegister(vector)

	return func(next zrm.Handler) zrm.Handler {
		return func(ctx context.Context, qc *zrm.QueryContext) *zrm.QueryResult {
			startTime := time.Now()
			defer func() {
				duration := time.Since(startTime).Milliseconds()
				table := ""
				if qc.Model != nil {
					table = qc.Model.TableName
				}
				vector.WithLabelValues(qc.Type, table).Observe(float64(duration))
			}()
			return next(ctx, qc)
		}
	}
}
