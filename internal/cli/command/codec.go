package command

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/artifact-go/internal/core/domain"
)

type codecView struct {
	ID      uint64 `json:"id" yaml:"id"`
	Token   string `json:"token" yaml:"token"`
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
}

type validationView struct {
	Token string `json:"token" yaml:"token"`
	Valid bool   `json:"valid" yaml:"valid"`
	Code  string `json:"code,omitempty" yaml:"code,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

type rangeView struct {
	Alphabet string `json:"alphabet" yaml:"alphabet"`
	Base     int    `json:"base" yaml:"base"`
	MinID    uint64 `json:"min_id" yaml:"min_id"`
	MaxID    uint64 `json:"max_id" yaml:"max_id"`
	MinName  string `json:"min_name" yaml:"min_name"`
	MaxName  string `json:"max_name" yaml:"max_name"`
}

// CodecCommand returns the codec subcommand group. None of its commands
// open the token store.
func CodecCommand() *cli.Command {
	rawFlag := &cli.BoolFlag{
		Name:  "raw",
		Usage: "Skip the naming rules and only run the codec",
	}

	return &cli.Command{
		Name:  "codec",
		Usage: "Convert between token names and ids",
		Subcommands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "Print the id of a token name",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{rawFlag},
				Action:    codecEncode,
			},
			{
				Name:      "decode",
				Usage:     "Print the token name of an id",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{rawFlag},
				Action:    codecDecode,
			},
			{
				Name:      "validate",
				Usage:     "Check a token name against the naming rules",
				ArgsUsage: "NAME",
				Action:    codecValidate,
			},
			{
				Name:   "range",
				Usage:  "Print the admissible id range",
				Action: codecRange,
			},
		},
	}
}

func codecEncode(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	arg, err := singleArg(c, "NAME")
	if err != nil {
		return err
	}

	var id uint64
	if c.Bool("raw") {
		id, err = rt.Naming.EncodeRaw(arg)
		if err != nil {
			return err
		}
	} else {
		id, err = rt.Naming.IDForName(arg)
		if err != nil {
			return err
		}
	}
	return rt.Print(newCodecView(id, arg))
}

func codecDecode(c *cli.Context) error {
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

	var name string
	if c.Bool("raw") {
		name = rt.Naming.Codec().Decode(id)
	} else {
		name, err = rt.Naming.NameForID(id)
		if err != nil {
			return err
		}
	}
	return rt.Print(newCodecView(id, name))
}

func newCodecView(id uint64, name string) codecView {
	v := codecView{ID: id, Token: name}
	if d := domain.DisplayName(name); d != name {
		v.Display = d
	}
	return v
}

// codecValidate prints the verdict and returns the violation, if any,
// so the exit status reflects it.
func codecValidate(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	arg, err := singleArg(c, "NAME")
	if err != nil {
		return err
	}

	verr := rt.Naming.Validate(arg)
	v := validationView{Token: arg, Valid: verr == nil}
	if verr != nil {
		v.Code = domain.GetErrorCode(verr)
		v.Error = verr.Error()
	}
	if err := rt.Print(v); err != nil {
		return err
	}
	return verr
}

func codecRange(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}

	codec := rt.Naming.Codec()
	r := rt.Naming.IDRange()
	return rt.Print(rangeView{
		Alphabet: strings.ToLower(codec.Alphabet().Name()),
		Base:     int(codec.Alphabet().Base()),
		MinID:    r.Min,
		MaxID:    r.Max,
		MinName:  codec.Decode(r.Min),
		MaxName:  codec.Decode(r.Max),
	})
}
