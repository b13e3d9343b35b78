package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/edisonhq/edison/internal/config"
	"github.com/edisonhq/edison/internal/consts"
	"github.com/edisonhq/edison/internal/skill"
)

var skillsHwd = &SkillsRunner{}

type SkillsRunner struct{}

func (r *SkillsRunner) cmd() *cli.Command {
	dirFlag := &cli.StringFlag{
		Name:  "skills-dir",
		Usage: "Directory containing skill folders",
	}

	return &cli.Command{
		Name:  "skills",
		Usage: "Inspect and maintain the skill registry",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every discovered skill and its state",
				Flags:  []cli.Flag{dirFlag},
				Action: r.list,
			},
			{
				Name:  "exports",
				Usage: "Show the externally callable commands of loaded skills",
				Flags: []cli.Flag{
					dirFlag,
					&cli.BoolFlag{
						Name:  "private",
						Usage: "Include underscore-prefixed names (tooling/debugging)",
					},
				},
				Action: r.exports,
			},
			{
				Name:   "status",
				Usage:  "Report per-skill API readiness and aggregated config keys",
				Flags:  []cli.Flag{dirFlag},
				Action: r.status,
			},
			{
				Name:  "sync",
				Usage: "Reconcile declared command lists with the implementations",
				Flags: []cli.Flag{
					dirFlag,
					&cli.BoolFlag{
						Name:  "only-missing",
						Usage: "Leave non-empty hand-curated command lists untouched",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report what would change without writing",
					},
				},
				Action: r.sync,
			},
		},
	}
}

func skillsDir(cmd *cli.Command) string {
	if dir := strings.TrimSpace(cmd.String("skills-dir")); dir != "" {
		return dir
	}
	return consts.DefaultSkillsDir()
}

func (r *SkillsRunner) list(_ context.Context, cmd *cli.Command) error {
	reg := skill.NewRegistry(skillsDir(cmd), nil)

	defs := reg.Descriptors()
	if defs.Len() == 0 {
		fmt.Println("No skills found.")
		return nil
	}

	for _, d := range defs.All() {
		state := "enabled"
		if !d.Enabled {
			state = "disabled"
		} else if _, loaded := reg.Instance(d.Slug); !loaded {
			state = "broken"
		}
		fmt.Printf("%-16s %-10s %s\n", d.Slug, state, d.Description)
	}
	return nil
}

func (r *SkillsRunner) exports(_ context.Context, cmd *cli.Command) error {
	reg := skill.NewRegistry(skillsDir(cmd), nil)
	includePrivate := cmd.Bool("private")

	slugs := cmd.Args().Slice()
	if len(slugs) == 0 {
		slugs = reg.InstanceSlugs()
	}

	for _, slug := range slugs {
		if _, ok := reg.Instance(slug); !ok {
			fmt.Printf("%s: not loaded\n", slug)
			continue
		}
		commands := reg.ExportedCommands(slug, includePrivate)
		fmt.Printf("%s: %s\n", slug, strings.Join(commands, ", "))
	}
	return nil
}

func (r *SkillsRunner) status(_ context.Context, cmd *cli.Command) error {
	reg := skill.NewRegistry(skillsDir(cmd), nil)

	// Host values are optional here; without a config file only environment
	// variables are consulted.
	cfg, err := config.Load(consts.DefaultConfigPath())
	if err != nil {
		cfg = &config.Config{}
	}

	for _, line := range reg.APIStatus(cfg, false) {
		fmt.Println(line)
	}

	if required := reg.RequiredConfigKeys(false); len(required) > 0 {
		fmt.Printf("\nRequired config keys: %s\n", strings.Join(required, ", "))
	}
	if optional := reg.OptionalConfigKeys(false); len(optional) > 0 {
		fmt.Printf("Optional config keys: %s\n", strings.Join(optional, ", "))
	}
	return nil
}

func (r *SkillsRunner) sync(_ context.Context, cmd *cli.Command) error {
	dir := skillsDir(cmd)
	if strings.TrimSpace(dir) == "" {
		return errors.New("--skills-dir is required")
	}

	res := skill.SyncMetadata(dir, cmd.Bool("only-missing"), cmd.Bool("dry-run"))
	fmt.Printf("updated: %s\n", strings.Join(res.Updated, ", "))
	fmt.Printf("skipped: %s\n", strings.Join(res.Skipped, ", "))
	fmt.Printf("failed:  %s\n", strings.Join(res.Failed, ", "))
	return nil
}
