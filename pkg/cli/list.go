package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func framesCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "frames",
		Usage: "List captured frames, newest first",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			frames, err := uc.ListFrames(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list frames")
			}

			printFrames(c.Root().Writer, frames)
			return nil
		},
	}
}

func suggestionsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "suggestions",
		Usage: "List generated suggestions, newest first",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			suggestions, err := uc.ListSuggestions(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list suggestions")
			}

			printSuggestions(c.Root().Writer, suggestions)
			return nil
		},
	}
}
