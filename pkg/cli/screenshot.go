package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var errScreenshotNotFound = goerr.New("screenshot not found")

func screenshotCommand() *cli.Command {
	var (
		cfg     config
		frameID model.FrameID
		output  string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "frame-id",
			Aliases:     []string{"id"},
			Usage:       "Frame ID whose screenshot to fetch",
			Sources:     cli.EnvVars("PIPETRACE_FRAME_ID"),
			Destination: (*string)(&frameID),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Write the decoded image to this file instead of printing the data URI",
			Destination: &output,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "screenshot",
		Usage: "Fetch the screenshot of a frame",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			uri, err := uc.GetScreenshot(ctx, frameID)
			if err != nil {
				return goerr.Wrap(err, "failed to get screenshot")
			}
			if uri == "" {
				return goerr.Wrap(errScreenshotNotFound, "no image stored for frame", goerr.V("frame_id", frameID))
			}

			if output == "" {
				fmt.Fprintf(c.Root().Writer, "%s\n", uri)
				return nil
			}

			data, err := decodeDataURI(uri)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return goerr.Wrap(err, "failed to write screenshot", goerr.V("path", output))
			}
			logging.From(ctx).Info("screenshot saved", "frame_id", frameID, "path", output, "bytes", len(data))
			return nil
		},
	}
}

func decodeDataURI(uri string) ([]byte, error) {
	_, encoded, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return nil, goerr.New("not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode screenshot")
	}
	return data, nil
}
