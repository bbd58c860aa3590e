package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/urfave/cli/v3"
)

var (
	errFrameNotFound      = goerr.New("frame not found")
	errSuggestionNotFound = goerr.New("suggestion not found")
)

func frameCommand() *cli.Command {
	var (
		cfg     config
		frameID model.FrameID
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "frame-id",
			Aliases:     []string{"id"},
			Usage:       "Frame ID to trace",
			Sources:     cli.EnvVars("PIPETRACE_FRAME_ID"),
			Destination: (*string)(&frameID),
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "frame",
		Usage: "Show everything the pipeline recorded about a frame",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			tr, err := uc.GetFrameTrace(ctx, frameID)
			if err != nil {
				return goerr.Wrap(err, "failed to trace frame")
			}
			if tr == nil {
				return goerr.Wrap(errFrameNotFound, "no stage knows the frame", goerr.V("frame_id", frameID))
			}

			return printJSON(c.Root().Writer, tr)
		},
	}
}

func suggestionCommand() *cli.Command {
	var (
		cfg          config
		suggestionID model.SuggestionID
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "suggestion-id",
			Aliases:     []string{"id"},
			Usage:       "Suggestion ID to trace",
			Sources:     cli.EnvVars("PIPETRACE_SUGGESTION_ID"),
			Destination: (*string)(&suggestionID),
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "suggestion",
		Usage: "Show the generation, scoring, deduplication and live state of a suggestion",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			tr, err := uc.GetSuggestionTrace(ctx, suggestionID)
			if err != nil {
				return goerr.Wrap(err, "failed to trace suggestion")
			}
			if tr == nil {
				return goerr.Wrap(errSuggestionNotFound, "no generation batch holds the suggestion",
					goerr.V("suggestion_id", suggestionID))
			}

			return printJSON(c.Root().Writer, tr)
		},
	}
}
