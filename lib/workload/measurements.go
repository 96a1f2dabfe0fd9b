package workload

import (
	"encoding/csv"
	"fmt"
	"github.com/rcrowley/go-metrics"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Operation names as they appear in the report
const (
	OpRead            = "READ"
	OpInsert          = "INSERT"
	OpUpdate          = "UPDATE"
	OpScan            = "SCAN"
	OpDelete          = "DELETE"
	OpReadModifyWrite = "READ-MODIFY-WRITE"
)

const (
	latencyPrefix = "latency."
	statusPrefix  = "status."
	// reservoir size of the latency histograms
	sampleSize = 1 << 17
)

// --------------------------------------------------------------------------
// Measurements
// --------------------------------------------------------------------------

// Measurements records the latency and the status of every operation.
// It is safe for concurrent use.
type Measurements struct {
	registry metrics.Registry
}

// NewMeasurements creates an empty set of measurements
func NewMeasurements() *Measurements {
	return &Measurements{registry: metrics.NewRegistry()}
}

// Measure records one operation
func (m *Measurements) Measure(op string, latency time.Duration, status Status) {
	// the constructor is only called on first registration
	h := m.registry.GetOrRegister(latencyPrefix+op, func() metrics.Histogram {
		return metrics.NewHistogram(metrics.NewUniformSample(sampleSize))
	}).(metrics.Histogram)
	h.Update(latency.Microseconds())
	metrics.GetOrRegisterCounter(statusPrefix+op+"."+status.String(), m.registry).Inc(1)
}

// OperationSummary holds the statistics of one operation, latencies are in microseconds
type OperationSummary struct {
	Operation  string
	Operations int64
	Average    float64
	Min        int64
	Max        int64
	P95        float64
	P99        float64
	Returns    map[string]int64
}

// Summaries returns the statistics of all measured operations sorted by name
func (m *Measurements) Summaries() []OperationSummary {
	byOp := make(map[string]*OperationSummary)
	get := func(op string) *OperationSummary {
		s, ok := byOp[op]
		if !ok {
			s = &OperationSummary{Operation: op, Returns: make(map[string]int64)}
			byOp[op] = s
		}
		return s
	}

	m.registry.Each(func(name string, metric interface{}) {
		switch v := metric.(type) {
		case metrics.Histogram:
			snapshot := v.Snapshot()
			s := get(strings.TrimPrefix(name, latencyPrefix))
			s.Operations = snapshot.Count()
			s.Average = snapshot.Mean()
			s.Min = snapshot.Min()
			s.Max = snapshot.Max()
			ps := snapshot.Percentiles([]float64{0.95, 0.99})
			s.P95, s.P99 = ps[0], ps[1]
		case metrics.Counter:
			// status.<op>.<status>, the op may contain dots only in theory
			rest := strings.TrimPrefix(name, statusPrefix)
			i := strings.LastIndex(rest, ".")
			if i < 0 {
				return
			}
			get(rest[:i]).Returns[rest[i+1:]] = v.Count()
		}
	})

	summaries := make([]OperationSummary, 0, len(byOp))
	for _, s := range byOp {
		summaries = append(summaries, *s)
	}
	slices.SortFunc(summaries, func(a, b OperationSummary) int {
		return strings.Compare(a.Operation, b.Operation)
	})
	return summaries
}

// --------------------------------------------------------------------------
// Result
// --------------------------------------------------------------------------

// Result is the outcome of one benchmark phase
type Result struct {
	Phase      string
	Runtime    time.Duration
	Operations int64
	Summaries  []OperationSummary
}

// Throughput returns the completed operations per second
func (r Result) Throughput() float64 {
	if r.Runtime <= 0 {
		return 0
	}
	return float64(r.Operations) / r.Runtime.Seconds()
}

// Returns returns how often an operation ended with the given status
func (r Result) Returns(op string, status Status) int64 {
	for _, s := range r.Summaries {
		if s.Operation == op {
			return s.Returns[status.String()]
		}
	}
	return 0
}

// WriteReport writes the result in the line format of YCSB, e.g.
//
//	[OVERALL], RunTime(ms), 1503
//	[READ], AverageLatency(us), 201.3
func WriteReport(w io.Writer, r Result) error {
	lines := []string{
		fmt.Sprintf("[OVERALL], RunTime(ms), %d", r.Runtime.Milliseconds()),
		fmt.Sprintf("[OVERALL], Throughput(ops/sec), %s", formatFloat(r.Throughput())),
	}

	for _, s := range r.Summaries {
		lines = append(lines,
			fmt.Sprintf("[%s], Operations, %d", s.Operation, s.Operations),
			fmt.Sprintf("[%s], AverageLatency(us), %s", s.Operation, formatFloat(s.Average)),
			fmt.Sprintf("[%s], MinLatency(us), %d", s.Operation, s.Min),
			fmt.Sprintf("[%s], MaxLatency(us), %d", s.Operation, s.Max),
			fmt.Sprintf("[%s], 95thPercentileLatency(us), %s", s.Operation, formatFloat(s.P95)),
			fmt.Sprintf("[%s], 99thPercentileLatency(us), %s", s.Operation, formatFloat(s.P99)),
		)
		statuses := make([]string, 0, len(s.Returns))
		for status := range s.Returns {
			statuses = append(statuses, status)
		}
		slices.Sort(statuses)
		for _, status := range statuses {
			lines = append(lines, fmt.Sprintf("[%s], Return=%s, %d", s.Operation, status, s.Returns[status]))
		}
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// WriteCSV writes one row per phase and operation
func WriteCSV(w io.Writer, results ...Result) error {
	writer := csv.NewWriter(w)

	// Write header
	header := []string{
		"Phase", "Operation", "RunTimeMs", "ThroughputOpsPerSec", "Operations",
		"AverageLatencyUs", "MinLatencyUs", "MaxLatencyUs", "P95LatencyUs", "P99LatencyUs",
		"ReturnOK", "ReturnNotFound", "ReturnError", "ReturnNotImplemented",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, r := range results {
		for _, s := range r.Summaries {
			row := []string{
				r.Phase,
				s.Operation,
				strconv.FormatInt(r.Runtime.Milliseconds(), 10),
				formatFloat(r.Throughput()),
				strconv.FormatInt(s.Operations, 10),
				formatFloat(s.Average),
				strconv.FormatInt(s.Min, 10),
				strconv.FormatInt(s.Max, 10),
				formatFloat(s.P95),
				formatFloat(s.P99),
				strconv.FormatInt(s.Returns[StatusOK.String()], 10),
				strconv.FormatInt(s.Returns[StatusNotFound.String()], 10),
				strconv.FormatInt(s.Returns[StatusError.String()], 10),
				strconv.FormatInt(s.Returns[StatusNotImplemented.String()], 10),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %v", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
