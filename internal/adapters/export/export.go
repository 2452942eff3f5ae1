// Package export serializes the accumulated sample set to CSV or JSON
// download artifacts.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/robotat/mocapd/internal/domain/model"
	"github.com/robotat/mocapd/pkg/metrics"
)

// Format identifies an export serialization.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// timestampLayout is ISO-8601 with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// csvHeader is the fixed column order of the CSV artifact.
var csvHeader = []string{"Timestamp", "Source", "PacketID", "X", "Y", "Z", "Velocity", "Checksum"}

// Store is the read surface the exporter snapshots from.
type Store interface {
	AllValidSamples(ctx context.Context) []model.Sample
}

// Exporter serializes the store's samples on demand.
type Exporter struct {
	store Store
	now   func() time.Time
}

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithClock overrides the filename timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an exporter over the given store.
func New(store Store, opts ...Option) *Exporter {
	e := &Exporter{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export serializes all stored samples in the given format and returns the
// artifact body with its download filename. ErrNoData when the store is
// empty; no artifact is produced in that case.
func (e *Exporter) Export(ctx context.Context, format Format) ([]byte, string, error) {
	samples := e.store.AllValidSamples(ctx)
	if len(samples) == 0 {
		metrics.RecordExportError(string(format))
		return nil, "", ErrNoData
	}

	var (
		body []byte
		err  error
	)
	switch format {
	case FormatCSV:
		body, err = CSV(samples)
	case FormatJSON:
		body, err = JSON(samples)
	default:
		metrics.RecordExportError(string(format))
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		metrics.RecordExportError(string(format))
		return nil, "", err
	}

	metrics.RecordExport(string(format))
	return body, Filename(format, e.now()), nil
}

// Filename builds the download name for an artifact stamped at the given
// time, e.g. "mocap_data_1714741200000.csv".
func Filename(format Format, at time.Time) string {
	return fmt.Sprintf("mocap_data_%d.%s", at.UnixMilli(), format)
}

// CSV renders samples as a CSV document with a fixed header. Numeric fields
// use three decimals; timestamps are ISO-8601 from the receive time.
func CSV(samples []model.Sample) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for i := range samples {
		s := samples[i]
		row := []string{
			s.ReceivedTime().UTC().Format(timestampLayout),
			s.MarkerID,
			strconv.FormatInt(s.PacketSeq, 10),
			strconv.FormatFloat(s.Position.X, 'f', 3, 64),
			strconv.FormatFloat(s.Position.Y, 'f', 3, 64),
			strconv.FormatFloat(s.Position.Z, 'f', 3, 64),
			strconv.FormatFloat(s.Velocity, 'f', 3, 64),
			s.Checksum,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON renders samples as a pretty-printed flat array.
func JSON(samples []model.Sample) ([]byte, error) {
	body, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling samples: %w", err)
	}
	return body, nil
}
