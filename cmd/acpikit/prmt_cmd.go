package main

import (
	"github.com/spf13/cobra"

	"github.com/acpikit/acpikit/table"
)

var prmtCmd = &cobra.Command{
	Use:   "prmt [file]",
	Short: "Decode a platform runtime mechanism table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := getTableData(cmd, args)
		if err != nil {
			return err
		}
		log := getLogger()
		reg := table.NewRegistry(log)
		t, err := reg.Install(data)
		if err != nil {
			return err
		}
		prmt, err := table.ParsePRMT(t, &log)
		if err != nil {
			return err
		}
		return printResult(prmt)
	},
}

func init() {
	prmtCmd.Flags().Bool("stdin", false, "Read table data from stdin")
	rootCmd.AddCommand(prmtCmd)
}
