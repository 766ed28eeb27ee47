package attendance

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/api/key"
	"go.opentelemetry.io/otel/api/metric"
)

// instrumenter holds the bound scan metrics instruments
type instrumenter struct {
	scansCompleted    metric.BoundInt64Counter
	msgsScanned       metric.BoundInt64Counter
	entriesLogged     metric.BoundInt64Counter
	scanLatencyMillis metric.BoundInt64Measure
}

// newInstrumenter creates a scan instrumenter reporting on the given meter
func newInstrumenter(appName string, meter metric.Meter) (ins *instrumenter) {
	ins = new(instrumenter)

	defaultLabels := meter.Labels(key.New("name").String(appName))

	scans := meter.NewInt64Counter("scansCompleted", metric.WithKeys(key.New("name")))
	scanned := meter.NewInt64Counter("msgsScanned", metric.WithKeys(key.New("name")))
	logged := meter.NewInt64Counter("entriesLogged", metric.WithKeys(key.New("name")))
	latency := meter.NewInt64Measure("scanLatencyMillis", metric.WithKeys(key.New("name")))

	ins.scansCompleted = scans.Bind(defaultLabels)
	ins.msgsScanned = scanned.Bind(defaultLabels)
	ins.entriesLogged = logged.Bind(defaultLabels)
	ins.scanLatencyMillis = latency.Bind(defaultLabels)

	return ins
}

// reportScan records the counts and latency of one completed scan
func (ins *instrumenter) reportScan(res ScanResult, d time.Duration) {
	ctx := context.Background()

	ins.scansCompleted.Add(ctx, 1)
	ins.msgsScanned.Add(ctx, int64(res.Scanned))
	ins.entriesLogged.Add(ctx, int64(res.Logged))
	ins.scanLatencyMillis.Record(ctx, int64(d/time.Millisecond))
}

type timed func()

// measure runs the operation and returns its duration
func measure(operation timed) (d time.Duration) {
	before := time.Now()
	operation()

	return time.Since(before)
}
