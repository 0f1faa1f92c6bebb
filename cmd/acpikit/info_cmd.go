package main

import (
	"github.com/spf13/cobra"

	"github.com/acpikit/acpikit/table"
)

type tableInfo struct {
	Signature       string `json:"signature"`
	Length          uint32 `json:"length"`
	Revision        uint8  `json:"revision"`
	OEMID           string `json:"oem_id"`
	OEMTableID      string `json:"oem_table_id"`
	OEMRevision     uint32 `json:"oem_revision"`
	CreatorID       uint32 `json:"creator_id"`
	CreatorRevision uint32 `json:"creator_revision"`
	Checksum        string `json:"checksum"`
}

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show a table's system description header",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := getTableData(cmd, args)
		if err != nil {
			return err
		}
		header, err := table.ParseHeader(data)
		if err != nil {
			return err
		}
		body := data
		if int(header.Length) <= len(data) {
			body = data[:header.Length]
		}
		checksum := "ok"
		if err := table.VerifyChecksum(body); err != nil {
			checksum = err.Error()
		}
		return printResult(tableInfo{
			Signature:       header.Signature,
			Length:          header.Length,
			Revision:        header.Revision,
			OEMID:           header.OEMID,
			OEMTableID:      header.OEMTableID,
			OEMRevision:     header.OEMRevision,
			CreatorID:       header.CreatorID,
			CreatorRevision: header.CreatorRevision,
			Checksum:        checksum,
		})
	},
}

func init() {
	infoCmd.Flags().Bool("stdin", false, "Read table data from stdin")
	rootCmd.AddCommand(infoCmd)
}
