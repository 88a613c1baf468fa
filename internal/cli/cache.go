package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/klotskigraph/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the state space and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached graphs and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cc, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			defer cc.Close()

			var count int
			switch cc := cc.(type) {
			case *cache.FileCache:
				count, err = cc.Clear()
				if err == nil {
					defer printDetail("Directory: %s", cc.Dir())
				}
			case *cache.RedisCache:
				count, err = cc.Clear(ctx)
				if err == nil {
					defer printDetail("Redis: %s", c.Config.Cache.Redis)
				}
			default:
				printInfo("Cache is disabled")
				return nil
			}
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Redis != "" {
				fmt.Fprintln(cmd.OutOrStdout(), c.Config.Cache.Redis)
				return nil
			}
			dir := c.Config.Cache.Dir
			if dir == "" {
				var err error
				if dir, err = cacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
