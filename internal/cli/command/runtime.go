package command

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/artifact-go/internal/cli/config"
	"github.com/yndnr/artifact-go/internal/cli/output"
	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/core/service"
	"github.com/yndnr/artifact-go/internal/infra/shutdown"
	"github.com/yndnr/artifact-go/internal/storage"
	"github.com/yndnr/artifact-go/internal/telemetry/logger"
	"github.com/yndnr/artifact-go/internal/telemetry/metric"
)

const (
	runtimeKey      = "runtime"
	shutdownTimeout = 10 * time.Second
)

// Runtime holds everything a command needs. One Runtime lives for one
// process invocation, or for a whole shell session.
type Runtime struct {
	Config  *config.Config
	Logger  logger.Logger
	Metrics *metric.Registry
	Naming  *domain.Naming

	out      io.Writer
	errOut   io.Writer
	format   output.Format
	shutdown *shutdown.Handler

	mu      sync.Mutex
	service *service.RegistrationService
}

func newRuntime(c *cli.Context) (*Runtime, error) {
	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	nc, err := cfg.NamingConfig()
	if err != nil {
		return nil, err
	}
	naming, err := domain.NewNaming(nc)
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.CLI.Output)
	if err != nil {
		return nil, err
	}

	if cfg.Path != "" {
		log.Debug("configuration loaded", "path", cfg.Path)
	}

	return &Runtime{
		Config:   cfg,
		Logger:   log,
		Metrics:  metric.NewRegistry(),
		Naming:   naming,
		out:      c.App.Writer,
		errOut:   c.App.ErrWriter,
		format:   format,
		shutdown: shutdown.NewHandler(shutdownTimeout),
	}, nil
}

func setRuntime(c *cli.Context, rt *Runtime) {
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[runtimeKey] = rt
}

func runtimeFrom(c *cli.Context) *Runtime {
	rt, _ := c.App.Metadata[runtimeKey].(*Runtime)
	return rt
}

// mustRuntime returns the runtime set up by the Before hook.
func mustRuntime(c *cli.Context) (*Runtime, error) {
	rt := runtimeFrom(c)
	if rt == nil {
		return nil, errors.New("command runtime not initialized")
	}
	return rt, nil
}

// Context returns the context for one command execution: a fresh
// request id, the command name and the runtime's logger.
func (r *Runtime) Context(c *cli.Context) context.Context {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, r.Logger)
	ctx = logger.WithRequestID(ctx, ulid.Make().String())
	if c.Command != nil {
		ctx = logger.WithCommand(ctx, c.Command.FullName())
	}
	return ctx
}

// Service returns the registration service, opening the token store on
// first use.
func (r *Runtime) Service() (*service.RegistrationService, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.service != nil {
		return r.service, nil
	}

	store, err := storage.Open(r.Config.StorageConfig(), r.Logger)
	if err != nil {
		return nil, domain.ErrStoreFailure.WithCause(err)
	}
	if mr, ok := store.(storage.MetricsRegisterer); ok {
		if err := mr.RegisterMetrics(r.Metrics.Registerer()); err != nil {
			r.Logger.Warn("engine metrics not registered", "error", err)
		}
	}
	r.shutdown.OnClose("store", store.Close)

	r.service = service.NewRegistrationService(r.Naming, store, service.WithMetrics(r.Metrics))
	return r.service, nil
}

// OnClose registers fn to run when the runtime closes, before the store
// is closed.
func (r *Runtime) OnClose(name string, fn func() error) {
	r.shutdown.OnClose(name, fn)
}

// Print writes data in the configured output format.
func (r *Runtime) Print(data any) error {
	return output.NewFormatter(r.format).Format(r.out, data)
}

// Close exports metrics and releases the store. Metric export failures
// are logged, not returned.
func (r *Runtime) Close() error {
	m := r.Config.Metrics
	if m.Textfile != "" {
		if err := r.Metrics.WriteTextfile(m.Textfile); err != nil {
			r.Logger.Warn("metrics textfile not written", "path", m.Textfile, "error", err)
		}
	}
	if m.Pushgateway != "" {
		if err := r.Metrics.Push(m.Pushgateway, m.Job); err != nil {
			r.Logger.Warn("metrics not pushed", "url", logger.RedactString(m.Pushgateway), "error", err)
		}
	}
	return r.shutdown.Shutdown()
}
