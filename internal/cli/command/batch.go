package command

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/artifact-go/internal/cli/output"
	"github.com/yndnr/artifact-go/internal/core/domain"
	"github.com/yndnr/artifact-go/internal/infra/shutdown"
	"github.com/yndnr/artifact-go/internal/telemetry/logger"
)

// batchItem is one parsed line of a batch file.
type batchItem struct {
	line  int
	id    uint64
	flags domain.Flags
}

type batchSummary struct {
	Total       int  `json:"total" yaml:"total"`
	Created     int  `json:"created" yaml:"created"`
	Updated     int  `json:"updated" yaml:"updated"`
	Failed      int  `json:"failed" yaml:"failed"`
	Interrupted bool `json:"interrupted" yaml:"interrupted"`
}

// BatchCommand returns the batch subcommand group.
func BatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Bulk operations",
		Subcommands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register the ids listed in a file (one \"ID [FLAGS]\" per line, - for stdin)",
				Description: "Blank lines and lines starting with # are ignored. Lines without\n" +
					"flags use --flags. SIGINT stops the batch after the current item.",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "rate",
						Usage: "Maximum registrations per second (0 = unlimited)",
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Keep going after a failed registration",
					},
					&cli.StringFlag{
						Name:    "flags",
						Aliases: []string{"f"},
						Usage:   "Default flags for lines without any",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not show a progress bar",
					},
				},
				Action: batchRegister,
			},
		},
	}
}

func batchRegister(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	path, err := singleArg(c, "FILE")
	if err != nil {
		return err
	}
	if c.Float64("rate") < 0 {
		return domain.ErrInvalidArgument.WithDetails("--rate must not be negative")
	}
	defaults, err := domain.ParseFlags(c.String("flags"))
	if err != nil {
		return err
	}

	items, err := readBatch(path, c.App.Reader, defaults)
	if err != nil {
		return err
	}

	svc, err := rt.Service()
	if err != nil {
		return err
	}

	ctx, stop := shutdown.WithSignals(rt.Context(c))
	defer stop()
	log := logger.L(ctx)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if r := c.Float64("rate"); r > 0 {
		limiter = rate.NewLimiter(rate.Limit(r), 1)
	}

	var bar *output.ProgressBar
	if !c.Bool("quiet") {
		bar = output.NewProgressBar(rt.errOut, "registering", len(items))
	}

	summary := batchSummary{Total: len(items)}
	var firstErr error
	for _, item := range items {
		if err := limiter.Wait(ctx); err != nil {
			summary.Interrupted = true
			break
		}

		reg, err := svc.Register(ctx, item.id, item.flags)
		switch {
		case err != nil:
			summary.Failed++
			log.Warn("batch item failed", "line", item.line, "id", item.id, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("line %d: %w", item.line, err)
			}
		case reg.Created:
			summary.Created++
		default:
			summary.Updated++
		}
		if bar != nil {
			bar.Increment(err == nil)
		}

		if err != nil && !c.Bool("continue-on-error") {
			break
		}
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
	}
	if bar != nil {
		bar.Finish()
	}

	log.Info("batch finished",
		"total", summary.Total,
		"created", summary.Created,
		"updated", summary.Updated,
		"failed", summary.Failed,
		"interrupted", summary.Interrupted,
	)
	if err := rt.Print(summary); err != nil {
		return err
	}

	switch {
	case firstErr != nil && !c.Bool("continue-on-error"):
		return firstErr
	case summary.Interrupted:
		return fmt.Errorf("batch interrupted after %d of %d items",
			summary.Created+summary.Updated+summary.Failed, summary.Total)
	case summary.Failed > 0:
		return fmt.Errorf("%d of %d registrations failed, first: %w", summary.Failed, summary.Total, firstErr)
	}
	return nil
}

// readBatch parses a batch file. Parse errors abort before anything is
// registered.
func readBatch(path string, stdin io.Reader, defaults domain.Flags) ([]batchItem, error) {
	var r io.Reader
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parseBatch(r, defaults)
}

func parseBatch(r io.Reader, defaults domain.Flags) ([]batchItem, error) {
	var items []batchItem
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: %w", line,
				domain.ErrInvalidArgument.WithDetails("want \"ID [FLAGS]\""))
		}
		id, err := parseID(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		flags := defaults
		if len(fields) == 2 {
			flags, err = domain.ParseFlags(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		items = append(items, batchItem{line: line, id: id, flags: flags})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return items, nil
}
