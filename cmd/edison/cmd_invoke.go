package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/gg/gslice"
	"github.com/urfave/cli/v3"

	"github.com/edisonhq/edison/internal/skill"
)

var (
	invokeHwd = &InvokeRunner{}
	askHwd    = &AskRunner{}
)

type InvokeRunner struct{}

func (r *InvokeRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:      "invoke",
		Usage:     "Call one exported method on one skill",
		ArgsUsage: "<slug> <method> [args...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "skills-dir",
				Usage: "Directory containing skill folders",
			},
			&cli.StringFlag{
				Name:  "default",
				Usage: "Value printed when the skill cannot answer",
				Value: "N/A",
			},
			&cli.BoolFlag{
				Name:  "private",
				Usage: "Include underscore-prefixed names (tooling/debugging)",
			},
		},
		Action: r.run,
	}
}

func (r *InvokeRunner) run(_ context.Context, cmd *cli.Command) error {
	rest := cmd.Args().Slice()
	if len(rest) < 2 {
		return errors.New("usage: edison invoke <slug> <method> [args...]")
	}

	reg := skill.NewRegistry(skillsDir(cmd), nil)

	var opts []skill.CallOpt
	if cmd.Bool("private") {
		opts = append(opts, skill.IncludePrivate())
	}

	args := gslice.Map(rest[2:], func(s string) any { return any(s) })
	result := reg.Invoke(rest[0], rest[1], args, cmd.String("default"), opts...)
	fmt.Printf("%v\n", result)
	return nil
}

type AskRunner struct{}

func (r *AskRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Try a method across every loaded skill until one answers",
		ArgsUsage: "<method> [args...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "skills-dir",
				Usage: "Directory containing skill folders",
			},
			&cli.StringFlag{
				Name:  "default",
				Usage: "Value printed when no skill answers",
				Value: "N/A",
			},
		},
		Action: r.run,
	}
}

func (r *AskRunner) run(_ context.Context, cmd *cli.Command) error {
	rest := cmd.Args().Slice()
	if len(rest) < 1 {
		return errors.New("usage: edison ask <method> [args...]")
	}

	reg := skill.NewRegistry(skillsDir(cmd), nil)

	args := gslice.Map(rest[1:], func(s string) any { return any(s) })
	result := reg.InvokeFirstAvailable(rest[0], args, cmd.String("default"))
	fmt.Printf("%v\n", result)
	return nil
}
