package cli

import (
	"context"

	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Version is reported by the MCP server
var Version = "dev"

type Error struct {
	Code    int
	Message string
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "pipetrace",
		Usage: "Inspect and evaluate the suggestion pipeline's per-stage outputs",
		Commands: []*cli.Command{
			framesCommand(),
			suggestionsCommand(),
			frameCommand(),
			suggestionCommand(),
			screenshotCommand(),
			anomaliesCommand(),
			exportCommand(),
			judgeCommand(),
			mcpCommand(),
			shellCommand(),
		},
	}
}

func Run(ctx context.Context, argv []string) *Error {
	if err := newApp().Run(ctx, argv); err != nil {
		logging.From(ctx).Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
