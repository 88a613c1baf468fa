package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/klotskigraph/pkg/errors"
	"github.com/matzehuels/klotskigraph/pkg/klotski"
	"github.com/matzehuels/klotskigraph/pkg/observability"
	"github.com/matzehuels/klotskigraph/pkg/pipeline"
)

var policyNames = []string{klotski.PolicyGeometry.String(), klotski.PolicyIdentity.String()}

const (
	defaultDumpFile  = "visited_states_visualization.txt"
	defaultDumpEvery = 50000
)

// enumerateCommand creates the enumerate command for exploring a puzzle.
func (c *CLI) enumerateCommand() *cobra.Command {
	var (
		puzzleName string
		puzzleFile string
		output     string
		noCache    bool
		show       bool
		dump       bool
		dumpFile   string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Explore every reachable layout of a sliding-block puzzle",
		Long: `Explore every reachable layout of a sliding-block puzzle.

The enumerate command runs a breadth-first search from the puzzle's starting
layout and writes the resulting state graph as JSON. Pick a built-in puzzle
with --puzzle, load one from a TOML file with --puzzle-file, or choose
interactively when running in a terminal.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolvePuzzle(puzzleName, puzzleFile)
			if err != nil {
				return err
			}
			if len(p.Pieces) == 0 {
				return nil
			}
			opts.Puzzle = p
			if dump {
				opts.DumpEvery = defaultDumpEvery
			}
			if opts.DumpEvery > 0 {
				opts.Dump = dumpWriter(dumpFile, opts.Policy)
			}
			return c.runEnumerate(ctx, opts, output, noCache, show)
		},
	}

	cmd.Flags().StringVarP(&puzzleName, "puzzle", "p", "", "built-in puzzle: simple, classic")
	cmd.Flags().StringVar(&puzzleFile, "puzzle-file", "", "load the puzzle from a TOML file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: klotski_<puzzle>_statespace.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute and overwrite the cached graph")
	cmd.Flags().BoolVar(&show, "show", false, "print the starting board")

	cmd.Flags().StringVar(&opts.Policy, "policy", "geometry", "identity policy: geometry, identity")
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", 0, "abort after this many states (default: config or 2000000)")
	cmd.Flags().IntVar(&opts.MaxEdges, "max-edges", 0, "abort after this many moves (default: config or 20000000)")
	cmd.Flags().IntVar(&opts.ProgressEvery, "progress-every", klotski.DefaultProgressEvery, "log progress every N expanded states")
	cmd.Flags().BoolVar(&opts.CheckInvariants, "check-invariants", false, "re-validate every generated state")

	cmd.Flags().BoolVar(&dump, "dump", false, "dump visited states every 50000 expansions")
	cmd.Flags().IntVar(&opts.DumpEvery, "dump-every", 0, "dump visited states every N expansions")
	cmd.Flags().StringVar(&dumpFile, "dump-file", defaultDumpFile, "file overwritten by each dump")

	registerFlagCompletions(cmd, map[string][]string{
		"puzzle": klotski.PresetNames(),
		"policy": policyNames,
	})
	return cmd
}

// runEnumerate explores the puzzle and writes the graph JSON.
func (c *CLI) runEnumerate(ctx context.Context, opts pipeline.Options, output string, noCache, show bool) error {
	logger := loggerFromContext(ctx)

	if opts.MaxNodes <= 0 {
		opts.MaxNodes = c.Config.Limits.MaxNodes
	}
	if opts.MaxEdges <= 0 {
		opts.MaxEdges = c.Config.Limits.MaxEdges
	}
	opts.Logger = logger

	if show {
		s, err := opts.Puzzle.State()
		if err != nil {
			return err
		}
		printBoard(s.String())
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// On a terminal the explorer's progress lines are replaced by a live
	// spinner unless debug logging was requested.
	var spinner *Spinner
	if interactive() && logger.GetLevel() > log.DebugLevel {
		spinner = newSpinnerWithContext(ctx, "Exploring "+opts.Puzzle.Name+"...")
		quiet := logger.With()
		quiet.SetLevel(log.WarnLevel)
		opts.Logger = quiet
		observability.SetExploreHooks(exploreProgress{spinner: spinner})
		defer observability.SetExploreHooks(observability.NoopExploreHooks{})
		spinner.Start()
	}

	prog := newProgress(logger)
	doc, cacheHit, err := runner.EnumerateWithCacheInfo(ctx, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return fmt.Errorf("enumerate %s: %w", opts.Puzzle.Name, err)
	}
	prog.done("enumerated state space",
		"puzzle", opts.Puzzle.Name,
		"states", len(doc.Nodes),
		"moves", len(doc.Edges),
		"cached", cacheHit)

	outputPath := output
	if outputPath == "" {
		outputPath = defaultStateSpaceFile(opts.Puzzle.Name)
	}
	if err := errors.ValidateOutputPath(outputPath); err != nil {
		return err
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("State space complete")
	printFile(outputPath)
	printStats(len(doc.Nodes), len(doc.Edges), cacheHit)
	printNewline()
	printNextStep("Pack", appName+" pack --statespace "+outputPath+" --positions node_positions.json")

	return nil
}

// resolvePuzzle picks the puzzle from a file, a preset name, or the
// interactive picker, in that order. Outside a terminal it falls back to
// the simple preset. A zero Puzzle means the user quit the picker.
func resolvePuzzle(name, file string) (klotski.Puzzle, error) {
	switch {
	case file != "":
		return klotski.LoadPuzzleFile(file)
	case name != "":
		return klotski.PresetByName(name)
	case interactive():
		p, ok, err := choosePreset(klotski.Presets())
		if err != nil || !ok {
			return klotski.Puzzle{}, err
		}
		return p, nil
	}
	return klotski.Simple(), nil
}

func defaultStateSpaceFile(puzzle string) string {
	return "klotski_" + puzzle + "_statespace.json"
}

// dumpWriter returns an explorer dump callback that rewrites path with every
// visited state and its fingerprint.
func dumpWriter(path, policyName string) func([]*klotski.State) error {
	return func(visited []*klotski.State) error {
		policy, err := klotski.ParsePolicy(policyName)
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		w := bufio.NewWriter(f)
		for _, s := range visited {
			fmt.Fprintf(w, "State Hash: %s\n%s\n\n", s.FingerprintWith(policy), s.String())
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
