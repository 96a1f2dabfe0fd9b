package workload

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config describes a workload in the terms of YCSB core workloads
type Config struct {
	RecordCount    int // records inserted in the load phase
	OperationCount int // operations executed in the run phase
	Threads        int // concurrent workers

	FieldCount  int // fields per record
	FieldLength int // bytes per field value
	KeyPrefix   string

	ReadProportion            float64
	UpdateProportion          float64
	InsertProportion          float64
	ScanProportion            float64
	ReadModifyWriteProportion float64

	MaxScanLength int
}

// DefaultConfig returns the configuration of YCSB workload a (50% read, 50% update)
func DefaultConfig() Config {
	return Config{
		RecordCount:      1000,
		OperationCount:   1000,
		Threads:          1,
		FieldCount:       10,
		FieldLength:      100,
		KeyPrefix:        "user",
		ReadProportion:   0.5,
		UpdateProportion: 0.5,
		MaxScanLength:    100,
	}
}

// NamedConfig returns the configuration of a YCSB core workload (a-f)
func NamedConfig(name string) (Config, error) {
	c := DefaultConfig()
	c.ReadProportion, c.UpdateProportion = 0, 0

	switch strings.TrimPrefix(strings.ToLower(name), "workload") {
	case "a":
		c.ReadProportion, c.UpdateProportion = 0.5, 0.5
	case "b":
		c.ReadProportion, c.UpdateProportion = 0.95, 0.05
	case "c":
		c.ReadProportion = 1
	case "d":
		c.ReadProportion, c.InsertProportion = 0.95, 0.05
	case "e":
		c.ScanProportion, c.InsertProportion = 0.95, 0.05
	case "f":
		c.ReadProportion, c.ReadModifyWriteProportion = 0.5, 0.5
	default:
		return Config{}, fmt.Errorf("unknown workload %q (expected a-f)", name)
	}
	return c, nil
}

// Validate checks the configuration for values the runner cannot work with
func (c *Config) Validate() error {
	if c.RecordCount < 0 || c.OperationCount < 0 {
		return fmt.Errorf("record and operation count must not be negative")
	}
	if c.Threads < 1 {
		return fmt.Errorf("at least one thread is required, got %d", c.Threads)
	}
	if c.FieldCount < 1 || c.FieldLength < 0 {
		return fmt.Errorf("at least one field of non negative length is required")
	}
	for _, p := range []float64{c.ReadProportion, c.UpdateProportion, c.InsertProportion, c.ScanProportion, c.ReadModifyWriteProportion} {
		if p < 0 {
			return fmt.Errorf("proportions must not be negative")
		}
	}
	if c.totalProportion() <= 0 {
		return fmt.Errorf("at least one operation proportion must be positive")
	}
	return nil
}

func (c *Config) totalProportion() float64 {
	return c.ReadProportion + c.UpdateProportion + c.InsertProportion + c.ScanProportion + c.ReadModifyWriteProportion
}

// String returns a formatted string representation of the workload configuration
func (c *Config) String() string {
	var sb strings.Builder

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	sb.WriteString("\nWORKLOAD\n")
	addField("Records", strconv.Itoa(c.RecordCount))
	addField("Operations", strconv.Itoa(c.OperationCount))
	addField("Threads", strconv.Itoa(c.Threads))
	addField("Fields", fmt.Sprintf("%d x %d bytes", c.FieldCount, c.FieldLength))
	addField("Read", formatFloat(c.ReadProportion))
	addField("Update", formatFloat(c.UpdateProportion))
	addField("Insert", formatFloat(c.InsertProportion))
	addField("Scan", formatFloat(c.ScanProportion))
	addField("Read-Modify-Write", formatFloat(c.ReadModifyWriteProportion))

	return sb.String()
}

// --------------------------------------------------------------------------
// Runner
// --------------------------------------------------------------------------

// Runner executes the load and the run phase of a workload against a DB
type Runner struct {
	db     DB
	config Config

	// nextInsert is the index of the next record to insert
	nextInsert atomic.Int64
	// inserted is the number of records available for reads
	inserted atomic.Int64
}

// NewRunner creates a runner. The key space is assumed to already contain
// RecordCount records, so Run can be used without Load against a loaded store.
func NewRunner(db DB, config Config) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{db: db, config: config}
	r.nextInsert.Store(int64(config.RecordCount))
	r.inserted.Store(int64(config.RecordCount))
	return r, nil
}

// Load inserts RecordCount records
func (r *Runner) Load() Result {
	var next atomic.Int64
	total := int64(r.config.RecordCount)

	Logger.Infof("Loading %d records with %d threads", total, r.config.Threads)
	return r.execute("load", func(m *Measurements) bool {
		i := next.Add(1) - 1
		if i >= total {
			return false
		}
		r.insert(m, i)
		return true
	})
}

// Run executes OperationCount operations chosen by the configured proportions
func (r *Runner) Run() Result {
	var done atomic.Int64
	total := int64(r.config.OperationCount)

	Logger.Infof("Running %d operations with %d threads", total, r.config.Threads)
	return r.execute("run", func(m *Measurements) bool {
		if done.Add(1) > total {
			return false
		}
		r.operation(m)
		return true
	})
}

// execute runs step on all workers until it returns false
func (r *Runner) execute(phase string, step func(m *Measurements) bool) Result {
	m := NewMeasurements()
	var ops atomic.Int64
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < r.config.Threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for step(m) {
				ops.Add(1)
			}
		}()
	}
	wg.Wait()
	runtime := time.Since(start)

	result := Result{
		Phase:      phase,
		Runtime:    runtime,
		Operations: ops.Load(),
		Summaries:  m.Summaries(),
	}
	Logger.Infof("Phase %s finished: %d operations in %s (%.1f ops/sec)", phase, result.Operations, runtime, result.Throughput())
	return result
}

// operation chooses and executes one operation of the run phase
func (r *Runner) operation(m *Measurements) {
	c := &r.config
	p := rand.Float64() * c.totalProportion()

	switch {
	case p < c.ReadProportion:
		r.read(m, r.existingKey())
	case p < c.ReadProportion+c.UpdateProportion:
		r.update(m, r.existingKey())
	case p < c.ReadProportion+c.UpdateProportion+c.InsertProportion:
		if r.insert(m, r.nextInsert.Add(1)-1).IsOK() {
			r.inserted.Add(1)
		}
	case p < c.ReadProportion+c.UpdateProportion+c.InsertProportion+c.ScanProportion:
		r.scan(m, r.existingKey())
	default:
		r.readModifyWrite(m, r.existingKey())
	}
}

func (r *Runner) read(m *Measurements, key string) Status {
	start := time.Now()
	_, status := r.db.Read(key)
	m.Measure(OpRead, time.Since(start), status)
	return status
}

func (r *Runner) update(m *Measurements, key string) Status {
	values := r.record()
	start := time.Now()
	status := r.db.Update(key, values)
	m.Measure(OpUpdate, time.Since(start), status)
	return status
}

func (r *Runner) insert(m *Measurements, index int64) Status {
	key := BuildKey(r.config.KeyPrefix, index)
	values := r.record()

	start := time.Now()
	status := r.db.Insert(key, values)
	m.Measure(OpInsert, time.Since(start), status)
	return status
}

func (r *Runner) scan(m *Measurements, key string) {
	count := 1
	if r.config.MaxScanLength > 1 {
		count += rand.IntN(r.config.MaxScanLength)
	}
	start := time.Now()
	_, status := r.db.Scan(key, count)
	m.Measure(OpScan, time.Since(start), status)
}

// readModifyWrite measures the read and the update individually and as a whole
func (r *Runner) readModifyWrite(m *Measurements, key string) {
	start := time.Now()
	status := r.read(m, key)
	if status.IsOK() || status == StatusNotFound {
		status = r.update(m, key)
	}
	m.Measure(OpReadModifyWrite, time.Since(start), status)
}

// existingKey chooses a key uniformly from the inserted records
func (r *Runner) existingKey() string {
	n := r.inserted.Load()
	if n <= 0 {
		return BuildKey(r.config.KeyPrefix, 0)
	}
	return BuildKey(r.config.KeyPrefix, rand.Int64N(n))
}

// record creates a record with random field values
func (r *Runner) record() Record {
	values := make(Record, r.config.FieldCount)
	for i := 0; i < r.config.FieldCount; i++ {
		values["field"+strconv.Itoa(i)] = randomValue(r.config.FieldLength)
	}
	return values
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// BuildKey returns the key of the record with the given index.
// Indexes are hashed, so consecutive records do not have neighbouring keys.
func BuildKey(prefix string, index int64) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.FormatInt(index, 10)))
	return prefix + strconv.FormatUint(h.Sum64(), 10)
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomValue(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.IntN(len(letters))]
	}
	return b
}
