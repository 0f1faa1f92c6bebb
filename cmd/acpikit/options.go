package main

import (
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Returns the logger the commands hand to the substrate, honoring the
// log-level and no-color flags.
func getLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	writer := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: viper.GetBool("no-color"),
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func getTableData(cmd *cobra.Command, args []string) ([]byte, error) {
	// Determine where the table bytes come from. Two possibilities:
	// 1. --stdin (read table from stdin)
	// 2. path as args[0]
	var stdinFlagSet bool
	if f := cmd.Flags().Lookup("stdin"); f != nil && f.Changed {
		stdinFlagSet = true
	}
	pathSupplied := len(args) > 0
	if pathSupplied && stdinFlagSet {
		return nil, errors.New("multiple input sources specified")
	}
	if stdinFlagSet {
		return io.ReadAll(os.Stdin)
	}
	if pathSupplied {
		return os.ReadFile(args[0])
	}
	return nil, errors.New("a table file is required (or pass --stdin)")
}
