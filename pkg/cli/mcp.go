package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/service/mcp"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Serve streamable HTTP on this address instead of stdio",
			Sources:     cli.EnvVars("PIPETRACE_MCP_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve trace tools over the Model Context Protocol",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// stdout carries the protocol, so logs must stay structured on stderr
			cfg.logJSON = true
			ctx = cfg.setupLogger(ctx)

			uc, closer, err := cfg.newTrace(ctx)
			if err != nil {
				return err
			}
			defer closer()

			server := mcp.NewServer(uc, Version)

			if addr == "" {
				logging.From(ctx).Info("serving MCP on stdio")
				if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
					return goerr.Wrap(err, "mcp server stopped")
				}
				return nil
			}

			return serveHTTP(ctx, addr, server)
		},
	}
}

func serveHTTP(ctx context.Context, addr string, server *mcpsdk.Server) error {
	handler := mcpsdk.NewStreamableHTTPHandler(func(r *http.Request) *mcpsdk.Server {
		return server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.From(ctx).Info("serving MCP over HTTP", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "mcp http server stopped", goerr.V("addr", addr))
		}
		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shut down mcp http server")
		}
		return nil
	}
}
