package kafka

import kafkago "github.com/segmentio/kafka-go"

// WriterMetrics is a flattened view of kafka-go writer statistics.
type WriterMetrics struct {
	Writes       int64   `json:"writes"`
	Messages     int64   `json:"messages"`
	Bytes        int64   `json:"bytes"`
	Errors       int64   `json:"errors"`
	Retries      int64   `json:"retries"`
	AvgWriteTime float64 `json:"avg_write_time_ms"`
	MaxWriteTime float64 `json:"max_write_time_ms"`
}

// CollectWriterMetrics converts kafka-go writer stats. The counters in
// WriterStats are deltas since the previous call to Writer.Stats.
func CollectWriterMetrics(stats kafkago.WriterStats) WriterMetrics {
	return WriterMetrics{
		Writes:       stats.Writes,
		Messages:     stats.Messages,
		Bytes:        stats.Bytes,
		Errors:       stats.Errors,
		Retries:      stats.Retries,
		AvgWriteTime: float64(stats.WriteTime.Avg) / 1e6,
		MaxWriteTime: float64(stats.WriteTime.Max) / 1e6,
	}
}

// Add accumulates another delta into m.
func (m *WriterMetrics) Add(d WriterMetrics) {
	m.Writes += d.Writes
	m.Messages += d.Messages
	m.Bytes += d.Bytes
	m.Errors += d.Errors
	m.Retries += d.Retries
	m.AvgWriteTime = d.AvgWriteTime
	m.MaxWriteTime = max(m.MaxWriteTime, d.MaxWriteTime)
}
