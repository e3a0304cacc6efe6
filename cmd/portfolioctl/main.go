package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Drive the portfolio state layer from a terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("output", "o", "yaml", "Output format (yaml, json)")

	rootCmd.AddCommand(themeCmd())
	rootCmd.AddCommand(slugCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(blogCmd())
	rootCmd.AddCommand(adminCmd())
	return rootCmd
}
