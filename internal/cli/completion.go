package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/visast/pkg/pipeline"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for visast and print it to stdout.

  $ source <(visast completion bash)
  $ visast completion zsh > "${fpath[1]}/_visast"
  $ visast completion fish | source
  PS> visast completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// registerCompletions adds value completion for flags with a closed set of
// values, and file completion for Python inputs.
func registerCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("plotter", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.Plotters(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("config", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
	root.ValidArgsFunction = pythonFiles
	for _, sub := range root.Commands() {
		if sub.Name() == "render" || sub.Name() == "explore" {
			sub.ValidArgsFunction = pythonFiles
		}
	}
}

func pythonFiles(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"py"}, cobra.ShellCompDirectiveFilterFileExt
}
