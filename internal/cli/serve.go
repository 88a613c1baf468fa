package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/klotskigraph/internal/server"
	"github.com/matzehuels/klotskigraph/pkg/cache"
	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
	"github.com/matzehuels/klotskigraph/pkg/packed"
	"github.com/matzehuels/klotskigraph/pkg/pipeline"
)

// serveCommand creates the serve command for publishing an artifact over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		puzzleName string
		positions  string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve [artifact]",
		Short: "Serve a packed artifact over HTTP",
		Long: `Serve a packed artifact over HTTP.

Pass an artifact produced by 'pack', or use --puzzle to enumerate and pack a
built-in puzzle on startup. Endpoints:

  GET /healthz      liveness
  GET /version      build info
  GET /graph/meta   header summary as JSON
  GET /graph.bin    raw packed bytes
  GET /graph        packed bytes, zstd or gzip per Accept-Encoding
  GET /graph.json   decoded state space`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Serve.Addr
			}

			var (
				data []byte
				err  error
			)
			switch {
			case len(args) == 1:
				data, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read %s: %w", args[0], err)
				}
			case puzzleName != "":
				data, err = c.buildArtifact(ctx, puzzleName, positions, noCache)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("pass an artifact file or --puzzle")
			}
			return c.runServe(ctx, data, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config or :8080)")
	cmd.Flags().StringVarP(&puzzleName, "puzzle", "p", "", "enumerate and serve a built-in puzzle")
	cmd.Flags().StringVar(&positions, "positions", "", "node positions JSON file for --puzzle")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	registerFlagCompletions(cmd, map[string][]string{"puzzle": klotski.PresetNames()})
	return cmd
}

// buildArtifact runs the full pipeline for a preset. Its cache entries are
// scoped so they never collide with enumerate or pack runs.
func (c *CLI) buildArtifact(ctx context.Context, name, positions string, noCache bool) ([]byte, error) {
	p, err := resolvePuzzle(name, "")
	if err != nil {
		return nil, err
	}
	opts := pipeline.Options{
		Puzzle:   p,
		MaxNodes: c.Config.Limits.MaxNodes,
		MaxEdges: c.Config.Limits.MaxEdges,
		Codecs:   []string{packed.CodecRaw},
		Logger:   loggerFromContext(ctx),
	}
	if positions != "" {
		if opts.Layout, err = graph.ReadLayoutFile(positions); err != nil {
			return nil, fmt.Errorf("load positions %s: %w", positions, err)
		}
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "serve:"+p.Name+":")

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	return res.Artifacts.Raw, nil
}

func (c *CLI) runServe(ctx context.Context, data []byte, addr string) error {
	logger := loggerFromContext(ctx)

	a, err := server.NewArtifact(data)
	if err != nil {
		return fmt.Errorf("load artifact: %w", err)
	}
	meta := a.Meta()
	printSuccess("Serving %d states on %s", meta.Nodes, addr)
	printNextStep("Fetch", "curl -H 'Accept-Encoding: gzip' http://localhost"+addr+"/graph")

	return server.New(a, logger).ListenAndServe(ctx, addr)
}
