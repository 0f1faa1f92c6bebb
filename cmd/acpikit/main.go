package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "acpikit",
	Short:         "Inspect ACPI firmware tables and exercise the interpreter substrate",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		processGlobalFlags()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.StringP("output", "o", "", "Output format (json, text)")
	viper.BindPFlag("log-level", pf.Lookup("log-level"))
	viper.BindPFlag("no-color", pf.Lookup("no-color"))
	viper.BindPFlag("output", pf.Lookup("output"))
	viper.BindEnv("no-color", "NO_COLOR")

	rootCmd.RegisterFlagCompletionFunc("output",
		func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp
		})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}
