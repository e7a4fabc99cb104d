// writer.go wraps the InfluxDB blocking write API the way the teacher's
// persistence-service does (internal/services/persistence/persistence-service.go),
// generalized from that file's fixed SensorData shape to the generic
// decoded Point this relay handles, and adding the LastErrorAge tracking
// the teacher's event/health.go / event/writer.go pair uses for its
// readiness checks.
package relay

import (
	"context"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// Writer persists decoded Points to InfluxDB and tracks the age of the
// last write error for health/readiness reporting.
type Writer struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking

	mu       sync.Mutex
	lastErr  time.Time
	hasError bool
}

// NewWriter opens an InfluxDB client against url/token/org/bucket. The
// caller owns closing it via Close.
func NewWriter(url, token, org, bucket string) *Writer {
	client := influxdb2.NewClient(url, token)
	return &Writer{client: client, writeAPI: client.WriteAPIBlocking(org, bucket)}
}

// Write converts p into an influxdb2 point stamped with the current time
// (this module's line-protocol payloads carry no timestamp of their own)
// and writes it synchronously.
func (w *Writer) Write(ctx context.Context, p Point) error {
	point := influxdb2.NewPoint(p.Measurement, p.Tags, p.Fields, time.Now())
	if err := w.writeAPI.WritePoint(ctx, point); err != nil {
		w.mu.Lock()
		w.lastErr = time.Now()
		w.hasError = true
		w.mu.Unlock()
		return err
	}
	return nil
}

// LastErrorAge reports how long ago the last write error occurred. If
// there has never been one, it returns a duration larger than any
// reasonable readiness threshold.
func (w *Writer) LastErrorAge() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.hasError {
		return 24 * time.Hour
	}
	return time.Since(w.lastErr)
}

// Close releases the underlying Influx client.
func (w *Writer) Close() {
	w.client.Close()
}
