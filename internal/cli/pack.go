package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/packed"
	"github.com/matzehuels/klotskigraph/pkg/pipeline"
)

// packCommand creates the pack command for building the binary artifact.
func (c *CLI) packCommand() *cobra.Command {
	var (
		statespace string
		positions  string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Encode a state space and its 3D layout as a binary artifact",
		Long: `Encode a state space and its 3D layout as a binary artifact.

The pack command reads a state-space JSON file (produced by 'enumerate') and an
optional node positions file, then writes the fixed-layout binary graph:

  <output>.bin     uncompressed, for debugging
  <output>.<ext>   one file per --codec (.gz, .zst, .zz)

States without a position are packed at the origin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPack(cmd.Context(), statespace, positions, output, opts, noCache)
		},
	}

	cmd.Flags().StringVar(&statespace, "statespace", defaultStateSpaceFile("classic"), "state space JSON file")
	cmd.Flags().StringVar(&positions, "positions", "", "node positions JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "klotski_packed", "output path without extension")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-encode and overwrite cached artifacts")
	cmd.Flags().StringSliceVar(&opts.Codecs, "codec", []string{packed.DefaultCodec},
		"compression codecs: "+strings.Join(packed.CodecNames(), ", "))
	cmd.Flags().Float64Var(&opts.Scale, "scale", packed.DefaultScale, "position quantization scale")

	registerFlagCompletions(cmd, map[string][]string{"codec": packed.CodecNames()})
	return cmd
}

// runPack loads the inputs, packs them, and writes one file per output.
func (c *CLI) runPack(ctx context.Context, statespace, positions, output string, opts pipeline.Options, noCache bool) error {
	if err := errors.ValidateOutputPath(output); err != nil {
		return err
	}
	doc, err := graph.ReadGraphFile(statespace)
	if err != nil {
		return fmt.Errorf("load state space %s: %w", statespace, err)
	}
	opts.InputSize = fileSize(statespace)

	if positions != "" {
		layout, err := graph.ReadLayoutFile(positions)
		if err != nil {
			return fmt.Errorf("load positions %s: %w", positions, err)
		}
		opts.Layout = layout
		opts.InputSize += fileSize(positions)
	}
	opts.Logger = loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Packing graph...")
	spinner.Start()

	out, cacheHit, err := runner.PackWithCacheInfo(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Pack failed")
		return fmt.Errorf("pack: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	rawPath := output + ".bin"
	if err := os.WriteFile(rawPath, out.Raw, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", rawPath, err)
	}
	paths := []string{rawPath}
	for _, s := range out.Stats {
		codec, err := packed.CodecByName(s.Codec)
		if err != nil {
			return err
		}
		path := output + codec.Ext()
		if path == rawPath {
			continue
		}
		if err := os.WriteFile(path, out.Compressed[s.Codec], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Pack complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(doc.Nodes), len(doc.Edges), cacheHit)
	for _, s := range out.Stats {
		printNewline()
		printPackStats(s)
	}
	printNewline()
	printNextStep("Inspect", appName+" inspect "+paths[len(paths)-1])

	return nil
}

// fileSize returns the size of path, or 0 if it cannot be read.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
