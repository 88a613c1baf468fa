package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the klotskigraph CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
//
// Example:
//
//	func main() {
//	    ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer cancel()
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return newRootCommand(New(os.Stderr, LogInfo)).ExecuteContext(ctx)
}

// newRootCommand adds the --verbose flag to c's root command.
func newRootCommand(c *CLI) *cobra.Command {
	var verbose bool
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	configure := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		if configure != nil {
			return configure(cmd, args)
		}
		return nil
	}
	return root
}
