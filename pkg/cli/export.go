package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/usecase/export"
	"github.com/urfave/cli/v3"
)

func exportCommand() *cli.Command {
	var (
		cfg     config
		dataset string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "dataset",
			Usage:       "BigQuery dataset receiving the frames and suggestions tables",
			Sources:     cli.EnvVars("PIPETRACE_DATASET"),
			Destination: &dataset,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, bigqueryFlags(&cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export frame and suggestion summaries to BigQuery",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			bq, err := cfg.newBigQuery(ctx)
			if err != nil {
				return err
			}

			stop := startSpinner("exporting summaries...")
			result, err := export.New(uc, bq).Run(ctx, dataset)
			stop()
			if err != nil {
				return goerr.Wrap(err, "failed to export")
			}

			fmt.Fprintf(c.Root().Writer, "run %s: %d frames, %d suggestions\n",
				result.RunID, result.Frames, result.Suggestions)
			return nil
		},
	}
}
