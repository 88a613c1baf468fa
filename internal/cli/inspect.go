package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/packed"
)

// inspectCommand creates the inspect command for reading packed artifacts.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		output string
		show   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [artifact]",
		Short: "Decode a packed artifact and print its header",
		Long: `Decode a packed artifact and print its header.

The codec is detected from the file contents, so raw (.bin), gzip, zlib and
zstd artifacts are all accepted. Use -o to convert the artifact back into
state-space JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], output, show)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the decoded graph as JSON")
	cmd.Flags().BoolVar(&show, "show", false, "print the board of the first state")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, output string, show bool) error {
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	g, codec, err := packed.Open(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", input, err)
	}
	logger.Debug("decoded artifact", "file", input, "codec", codec.Name(), "bytes", len(data))

	h := g.Header
	printSuccess("KLGR v%d", h.Version)
	printKeyValue("codec", codec.Name())
	printKeyValue("size", formatBytes(len(data)))
	printKeyValue("board", fmt.Sprintf("%dx%d", h.BoardWidth, h.BoardHeight))
	printKeyValue("pieces", fmt.Sprintf("%d", h.PieceCount))
	printKeyValue("states", fmt.Sprintf("%d", h.NodeCount))
	printKeyValue("moves", fmt.Sprintf("%d", h.EdgeCount))
	printKeyValue("scale", fmt.Sprintf("%g", h.Scale()))

	doc := g.ToGraph()
	if show && len(doc.Nodes) > 0 {
		kg, err := graph.ToKlotski(doc)
		if err != nil {
			return err
		}
		s, err := kg.State(0)
		if err != nil {
			return err
		}
		printNewline()
		printBoard(s.String())
	}

	if output != "" {
		out, err := doc.Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, out, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printNewline()
		printFile(output)
	}
	return nil
}
