package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/storage"
	"github.com/yndnr/artifact-go/internal/telemetry/logger"
)

// RecordCounts defines the store sizes for read benchmarks.
var RecordCounts = []int{1000, 10000, 50000}

// naming is the standard naming scheme shared by all benchmarks.
var naming = domain.MustNaming(domain.DefaultNamingConfig())

// openStore opens engine in a temporary directory. Writes are not
// synced so the numbers measure the engine, not the disk.
func openStore(b *testing.B, engine string) storage.Store {
	b.Helper()
	cfg := storage.DefaultConfig(b.TempDir())
	cfg.Engine = engine
	cfg.Badger.SyncWrites = false
	cfg.Badger.GCInterval = "0"
	cfg.Pebble.SyncWrites = false

	s, err := storage.Open(cfg, logger.Discard())
	if err != nil {
		b.Fatalf("open %s: %v", engine, err)
	}
	b.Cleanup(func() { s.Close() })
	return s
}

// validIDs returns count distinct ids whose names pass the rule chain,
// starting from "AAA".
func validIDs(count int) []uint64 {
	ids := make([]uint64, 0, count)
	codec := naming.Codec()
	for id := naming.IDRange().Min; len(ids) < count; id++ {
		if naming.Validate(codec.Decode(id)) == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// prefillStore inserts count valid tokens and returns their names.
func prefillStore(b *testing.B, ctx context.Context, store storage.Store, count int) []string {
	b.Helper()
	codec := naming.Codec()
	names := make([]string, 0, count)
	for _, id := range validIDs(count) {
		name := codec.Decode(id)
		if err := store.Insert(ctx, name, domain.FlagLocked); err != nil {
			b.Fatalf("prefill %s: %v", name, err)
		}
		names = append(names, name)
	}
	return names
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithRecordCounts runs a benchmark function with various store sizes.
func runWithRecordCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("records_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
