package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/service/mcp"
	"github.com/urfave/cli/v3"
)

const shellHelp = `commands:
  frames                  list frames
  suggestions             list suggestions
  frame <frame-id>        trace a frame
  suggestion <id>         trace a suggestion
  screenshot <frame-id>   print the screenshot data URI
  anomalies               check cross-stage integrity
  help                    show this message
  exit                    leave the shell
`

func shellCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "shell",
		Usage: "Browse traces interactively",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			var historyFile string
			if home, err := os.UserHomeDir(); err == nil {
				historyFile = filepath.Join(home, ".pipetrace_history")
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "pipetrace> ",
				HistoryFile:     historyFile,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				AutoComplete: readline.NewPrefixCompleter(
					readline.PcItem("frames"),
					readline.PcItem("suggestions"),
					readline.PcItem("frame"),
					readline.PcItem("suggestion"),
					readline.PcItem("screenshot"),
					readline.PcItem("anomalies"),
					readline.PcItem("help"),
					readline.PcItem("exit"),
				),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to start readline")
			}
			defer rl.Close()

			sh := &shell{tracer: uc, w: c.Root().Writer}
			fmt.Fprintf(sh.w, "Type 'help' for commands, 'exit' to quit.\n")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read line")
				}

				quit, err := sh.exec(ctx, line)
				if err != nil {
					fmt.Fprintf(sh.w, "error: %s\n", err.Error())
				}
				if quit {
					return nil
				}
			}
		},
	}
}

type shell struct {
	tracer mcp.Tracer
	w      io.Writer
}

// exec runs one shell line and reports whether the shell should exit
func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	arg := func() (string, error) {
		if len(fields) < 2 {
			return "", goerr.New("missing argument", goerr.V("command", fields[0]))
		}
		return fields[1], nil
	}

	switch fields[0] {
	case "exit", "quit":
		return true, nil

	case "help":
		fmt.Fprint(s.w, shellHelp)

	case "frames":
		frames, err := s.tracer.ListFrames(ctx)
		if err != nil {
			return false, err
		}
		printFrames(s.w, frames)

	case "suggestions":
		suggestions, err := s.tracer.ListSuggestions(ctx)
		if err != nil {
			return false, err
		}
		printSuggestions(s.w, suggestions)

	case "frame":
		id, err := arg()
		if err != nil {
			return false, err
		}
		tr, err := s.tracer.GetFrameTrace(ctx, model.FrameID(id))
		if err != nil {
			return false, err
		}
		if tr == nil {
			return false, goerr.Wrap(errFrameNotFound, "no stage knows the frame", goerr.V("frame_id", id))
		}
		return false, printJSON(s.w, tr)

	case "suggestion":
		id, err := arg()
		if err != nil {
			return false, err
		}
		tr, err := s.tracer.GetSuggestionTrace(ctx, model.SuggestionID(id))
		if err != nil {
			return false, err
		}
		if tr == nil {
			return false, goerr.Wrap(errSuggestionNotFound, "no generation batch holds the suggestion", goerr.V("suggestion_id", id))
		}
		return false, printJSON(s.w, tr)

	case "screenshot":
		id, err := arg()
		if err != nil {
			return false, err
		}
		uri, err := s.tracer.GetScreenshot(ctx, model.FrameID(id))
		if err != nil {
			return false, err
		}
		if uri == "" {
			return false, goerr.Wrap(errScreenshotNotFound, "no image stored for frame", goerr.V("frame_id", id))
		}
		fmt.Fprintf(s.w, "%s\n", uri)

	case "anomalies":
		anomalies, err := s.tracer.CheckIntegrity(ctx)
		if err != nil {
			return false, err
		}
		printAnomalies(s.w, anomalies)

	default:
		return false, goerr.New("unknown command", goerr.V("command", fields[0]))
	}

	return false, nil
}
