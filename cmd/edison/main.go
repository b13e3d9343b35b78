package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/edisonhq/edison/internal/pkg/logs"

	// Built-in skill implementations register themselves with the service
	// factory on import.
	_ "github.com/edisonhq/edison/skills/news"
	_ "github.com/edisonhq/edison/skills/notes"
	_ "github.com/edisonhq/edison/skills/reminder"
	_ "github.com/edisonhq/edison/skills/weather"
)

func main() {
	cmd := &cli.Command{
		Name:  "edison",
		Usage: "A personal assistant built from pluggable skills",
		Commands: []*cli.Command{
			gwHwd.cmd(),
			skillsHwd.cmd(),
			invokeHwd.cmd(),
			askHwd.cmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logs.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}
