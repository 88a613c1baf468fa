package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/klotskigraph/pkg/graph"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
	"github.com/matzehuels/klotskigraph/pkg/store"
)

// publishCommand creates the publish command for archiving a state space.
func (c *CLI) publishCommand() *cobra.Command {
	var (
		cfg    store.MongoConfig
		name   string
		policy string
	)

	cmd := &cobra.Command{
		Use:   "publish [statespace.json]",
		Short: "Archive a state space in MongoDB",
		Long: `Archive a state space in MongoDB.

The record is keyed by a new id and indexed by the hash of the puzzle's
starting layout, so later runs can fetch the latest graph for a puzzle.
Connection settings default to the [mongo] section of the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.URI == "" {
				cfg.URI = c.Config.Mongo.URI
			}
			if cfg.Database == "" {
				cfg.Database = c.Config.Mongo.Database
			}
			if cfg.Collection == "" {
				cfg.Collection = c.Config.Mongo.Collection
			}
			ctx := cmd.Context()
			s, err := store.NewMongoStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))
			return c.runPublish(ctx, s, args[0], name, policy)
		},
	}

	cmd.Flags().StringVar(&cfg.URI, "mongo-uri", "", "MongoDB connection string")
	cmd.Flags().StringVar(&cfg.Database, "database", "", "database name (default: klotskigraph)")
	cmd.Flags().StringVar(&cfg.Collection, "collection", "", "collection name (default: graphs)")
	cmd.Flags().StringVar(&name, "name", "", "puzzle name (default: detected from the starting layout)")
	cmd.Flags().StringVar(&policy, "policy", "geometry", "identity policy the graph was enumerated with")

	registerFlagCompletions(cmd, map[string][]string{"policy": policyNames})
	return cmd
}

// runPublish saves the graph in input to s.
func (c *CLI) runPublish(ctx context.Context, s store.GraphStore, input, name, policy string) error {
	logger := loggerFromContext(ctx)

	doc, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load state space %s: %w", input, err)
	}
	p, err := startPuzzle(doc)
	if err != nil {
		return err
	}
	if name == "" {
		name = p.Name
	}
	pol, err := klotski.ParsePolicy(policy)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Publishing...")
	spinner.Start()
	id, err := s.Save(ctx, &store.Record{
		Puzzle:     name,
		PuzzleHash: p.Hash(),
		Policy:     pol.String(),
		Graph:      doc,
	})
	if err != nil {
		spinner.StopWithError("Publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	spinner.Stop()
	logger.Debug("published graph", "id", id, "puzzle", name, "hash", p.Hash())

	printSuccess("Published %s", name)
	printKeyValue("id", id)
	printStats(len(doc.Nodes), len(doc.Edges), false)
	return nil
}

// startPuzzle rebuilds the puzzle from the graph's first node, which is
// always the starting layout. A layout that matches a preset takes its name.
func startPuzzle(doc graph.Graph) (klotski.Puzzle, error) {
	kg, err := graph.ToKlotski(doc)
	if err != nil {
		return klotski.Puzzle{}, err
	}
	s, err := kg.State(0)
	if err != nil {
		return klotski.Puzzle{}, err
	}
	p := klotski.Puzzle{Name: "custom", Board: s.Board(), Pieces: s.Pieces()}
	for _, preset := range klotski.Presets() {
		if preset.Hash() == p.Hash() {
			return preset, nil
		}
	}
	return p, nil
}
