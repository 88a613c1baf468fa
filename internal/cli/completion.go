package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCommand prints shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell and load it from your profile.

  bash        source <(klotskigraph completion bash)
  zsh         klotskigraph completion zsh > "${fpath[1]}/_klotskigraph"
  fish        klotskigraph completion fish > ~/.config/fish/completions/klotskigraph.fish
  powershell  klotskigraph completion powershell | Out-String | Invoke-Expression

Puzzle names and codecs complete as flag values.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// registerFlagCompletions offers fixed values for flags that take one of a
// known set.
func registerFlagCompletions(cmd *cobra.Command, values map[string][]string) {
	for flag, vals := range values {
		_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(vals, cobra.ShellCompDirectiveNoFileComp))
	}
}
