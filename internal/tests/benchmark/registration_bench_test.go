package benchmark

import (
	"context"
	"testing"

	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/core/service"
	"github.com/yndnr/artifact-go/internal/storage"
)

// BenchmarkRegister measures the full workflow (range, decode, rules,
// upsert) on every engine. Ids cycle, so later iterations are updates.
func BenchmarkRegister(b *testing.B) {
	ids := validIDs(4096)

	for _, engine := range storage.Engines {
		b.Run(engine, func(b *testing.B) {
			ctx := context.Background()
			svc := service.NewRegistrationService(naming, openStore(b, engine))

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := svc.Register(ctx, ids[i%len(ids)], domain.FlagLocked); err != nil {
					b.Fatalf("Register: %v", err)
				}
			}
		})
	}
}

// BenchmarkRegisterParallel measures contention on the same key space.
func BenchmarkRegisterParallel(b *testing.B) {
	ids := validIDs(256)

	for _, engine := range []string{storage.EngineMemory, storage.EngineBadger, storage.EnginePebble} {
		b.Run(engine, func(b *testing.B) {
			ctx := context.Background()
			svc := service.NewRegistrationService(naming, openStore(b, engine))

			b.ReportAllocs()
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					if _, err := svc.Register(ctx, ids[i%len(ids)], domain.Flags(i%4)); err != nil {
						b.Errorf("Register: %v", err)
						return
					}
					i++
				}
			})
		})
	}
}

func BenchmarkLookup(b *testing.B) {
	for _, engine := range storage.Engines {
		b.Run(engine, func(b *testing.B) {
			runWithRecordCounts(b, RecordCounts[:2], func(b *testing.B, count int) {
				ctx := context.Background()
				store := openStore(b, engine)
				names := prefillStore(b, ctx, store, count)
				svc := service.NewRegistrationService(naming, store)

				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := svc.Lookup(ctx, names[i%len(names)]); err != nil {
						b.Fatalf("Lookup: %v", err)
					}
				}
				b.StopTimer()
				reportMemory(b, "heap")
			})
		})
	}
}

func BenchmarkList(b *testing.B) {
	for _, engine := range []string{storage.EngineMemory, storage.EngineBadger, storage.EnginePebble} {
		b.Run(engine, func(b *testing.B) {
			ctx := context.Background()
			store := openStore(b, engine)
			prefillStore(b, ctx, store, RecordCounts[0])
			svc := service.NewRegistrationService(naming, store)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := svc.List(ctx, "AA"); err != nil {
					b.Fatalf("List: %v", err)
				}
			}
		})
	}
}
