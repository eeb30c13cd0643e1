package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/artifact-go/internal/core/domain"
)

// tokenView is the printed form of a stored token.
type tokenView struct {
	ID      uint64       `json:"id" yaml:"id"`
	Token   string       `json:"token" yaml:"token"`
	Display string       `json:"display,omitempty" yaml:"display,omitempty"`
	Flags   domain.Flags `json:"flags" yaml:"flags"`
}

func (rt *Runtime) tokenView(rec domain.TokenRecord) tokenView {
	v := tokenView{Token: rec.Name, Flags: rec.Flags}
	if id, err := rt.Naming.Codec().Encode(rec.Name); err == nil {
		v.ID = id
	}
	if d := domain.DisplayName(rec.Name); d != rec.Name {
		v.Display = d
	}
	return v
}

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	flagsUsage := "Flags as a number or names (LOCKED,NAMESPACE)"

	return &cli.Command{
		Name:  "token",
		Usage: "Manage token records",
		Subcommands: []*cli.Command{
			{
				Name:      "register",
				Usage:     "Register the token encoded by an id",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "flags", Aliases: []string{"f"}, Usage: flagsUsage},
				},
				Action: tokenRegister,
			},
			{
				Name:      "create",
				Usage:     "Register a token by name",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "flags", Aliases: []string{"f"}, Usage: flagsUsage, Value: "LOCKED"},
				},
				Action: tokenCreate,
			},
			{
				Name:      "update",
				Usage:     "Replace the flags of a registered token",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "flags", Aliases: []string{"f"}, Usage: flagsUsage, Required: true},
				},
				Action: tokenUpdate,
			},
			{
				Name:      "get",
				Usage:     "Show a registered token",
				ArgsUsage: "NAME",
				Action:    tokenGet,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List registered tokens",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Aliases: []string{"p"}, Usage: "Only tokens starting with this prefix"},
				},
				Action: tokenList,
			},
		},
	}
}

func tokenRegister(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	arg, err := singleArg(c, "ID")
	if err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	flags, err := domain.ParseFlags(c.String("flags"))
	if err != nil {
		return err
	}

	svc, err := rt.Service()
	if err != nil {
		return err
	}
	reg, err := svc.Register(rt.Context(c), id, flags)
	if err != nil {
		return err
	}
	return rt.Print(reg)
}

func tokenCreate(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	name, err := nameArg(c)
	if err != nil {
		return err
	}
	flags, err := domain.ParseFlags(c.String("flags"))
	if err != nil {
		return err
	}

	svc, err := rt.Service()
	if err != nil {
		return err
	}
	reg, err := svc.RegisterName(rt.Context(c), name, flags)
	if err != nil {
		return err
	}
	return rt.Print(reg)
}

func tokenUpdate(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	name, err := nameArg(c)
	if err != nil {
		return err
	}
	flags, err := domain.ParseFlags(c.String("flags"))
	if err != nil {
		return err
	}

	svc, err := rt.Service()
	if err != nil {
		return err
	}
	reg, err := svc.SetFlags(rt.Context(c), name, flags)
	if err != nil {
		return err
	}
	return rt.Print(reg)
}

func tokenGet(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	name, err := nameArg(c)
	if err != nil {
		return err
	}

	svc, err := rt.Service()
	if err != nil {
		return err
	}
	rec, err := svc.Lookup(rt.Context(c), name)
	if err != nil {
		return err
	}
	return rt.Print(rt.tokenView(*rec))
}

func tokenList(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}

	svc, err := rt.Service()
	if err != nil {
		return err
	}
	prefix := strings.ToUpper(strings.TrimSpace(c.String("prefix")))
	records, err := svc.List(rt.Context(c), prefix)
	if err != nil {
		return err
	}

	views := make([]tokenView, 0, len(records))
	for _, rec := range records {
		views = append(views, rt.tokenView(rec))
	}
	return rt.Print(views)
}

// singleArg returns the only positional argument.
func singleArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 {
		return "", domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("expected exactly one %s argument", name))
	}
	return c.Args().First(), nil
}

// nameArg returns the token name argument, trimmed and uppercased.
func nameArg(c *cli.Context) (string, error) {
	arg, err := singleArg(c, "NAME")
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(arg)), nil
}

// parseID parses a decimal or 0x-prefixed token id.
func parseID(s string) (uint64, error) {
	id, err := domain.ParseUint(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}
