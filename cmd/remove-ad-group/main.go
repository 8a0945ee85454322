package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the command and returns the process exit code. Results and
// diagnostics are both written to out.
func run(args []string, out io.Writer) int {
	root := rootCmd()
	root.SetOut(out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		renderError(root.OutOrStdout(), err)
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	root := removeCmd()
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.AddCommand(versionCmd())
	return root
}
