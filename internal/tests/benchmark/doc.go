// Package benchmark provides performance benchmarks for the naming
// codec, the rule chain and token registration on every storage engine.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Only one engine:
//
//	go test -bench='BenchmarkRegister/badger' -benchmem ./internal/tests/benchmark/...
//
// Compare results:
//
//	go test -bench=. -benchmem -count=5 ./internal/tests/benchmark/... | tee new.txt
//	benchstat old.txt new.txt
package benchmark
