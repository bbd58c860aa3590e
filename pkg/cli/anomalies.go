package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func anomaliesCommand() *cli.Command {
	var (
		cfg    config
		asJSON bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print anomalies as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "anomalies",
		Usage: "Report stage records that reference data no other stage knows about",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			anomalies, err := uc.CheckIntegrity(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to check integrity")
			}

			if asJSON {
				return printJSON(c.Root().Writer, anomalies)
			}
			printAnomalies(c.Root().Writer, anomalies)
			return nil
		},
	}
}
