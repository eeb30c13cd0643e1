// Package shutdown coordinates process termination for the CLI.
//
// WithSignals derives a context that is canceled on SIGINT or SIGTERM,
// which long-running commands check between work items. A Handler runs
// the registered cleanup hooks (closing the token store, exporting
// metrics) exactly once, in reverse registration order.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("store", store.Close)
//	defer h.Shutdown()
package shutdown
