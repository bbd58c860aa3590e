package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/usecase/judge"
	"github.com/urfave/cli/v3"
)

func judgeCommand() *cli.Command {
	var (
		cfg          config
		suggestionID model.SuggestionID
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "suggestion-id",
			Aliases:     []string{"id"},
			Usage:       "Suggestion ID to judge",
			Sources:     cli.EnvVars("PIPETRACE_SUGGESTION_ID"),
			Destination: (*string)(&suggestionID),
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "judge",
		Usage: "Ask Gemini whether a suggestion is grounded in the frames it came from",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			stop := startSpinner("judging suggestion...")
			judgement, err := judge.New(uc, gemini).Evaluate(ctx, suggestionID)
			stop()
			if err != nil {
				return goerr.Wrap(err, "failed to judge suggestion")
			}

			return printJSON(c.Root().Writer, judgement)
		},
	}
}
