package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/acpikit/acpikit/subtable"
	"github.com/acpikit/acpikit/table"
)

type walkResult struct {
	Signature string         `json:"signature"`
	Family    string         `json:"family"`
	Entries   int            `json:"entries"`
	Types     map[string]int `json:"types"`
}

func countEntry(e subtable.Entry, arg any) error {
	counts := arg.(map[uint16]int)
	counts[e.Type()]++
	return nil
}

// tallyProcs discovers the distinct entry types present in data and builds
// one counting proc per type, all sharing one tally map. Entry types are
// 16-bit in some families, so the proc set comes from the table itself
// rather than a fixed byte range.
func tallyProcs(data []byte, params subtable.Params) ([]subtable.Proc, map[uint16]int, error) {
	types, err := subtable.Types(data, params)
	if err != nil {
		return nil, nil, err
	}
	counts := make(map[uint16]int, len(types))
	procs := make([]subtable.Proc, 0, len(types))
	for _, typ := range types {
		procs = append(procs, subtable.Proc{
			ID:         typ,
			HandlerArg: countEntry,
			Arg:        counts,
		})
	}
	return procs, counts, nil
}

var walkCmd = &cobra.Command{
	Use:   "walk [file]",
	Short: "Walk a table's typed entries and tally them by type",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := getTableData(cmd, args)
		if err != nil {
			return err
		}

		signature, _ := cmd.Flags().GetString("signature")
		if signature == "" && len(data) >= 4 {
			signature = string(data[0:4])
		}
		headerSize, _ := cmd.Flags().GetInt("header-size")
		maxLength, _ := cmd.Flags().GetInt("max-length")
		maxEntries, _ := cmd.Flags().GetInt("max-entries")

		log := getLogger()
		params := subtable.Params{
			Signature:  signature,
			HeaderSize: headerSize,
			MaxLength:  maxLength,
			MaxEntries: maxEntries,
			Logger:     &log,
		}
		procs, counts, err := tallyProcs(data, params)
		if err != nil {
			return err
		}
		total, err := subtable.ParseEntries(data, procs, params)
		if err != nil {
			return err
		}

		types := make([]uint16, 0, len(counts))
		for t := range counts {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		byType := make(map[string]int, len(counts))
		for _, t := range types {
			byType[fmt.Sprintf("%#04x", t)] = counts[t]
		}

		return printResult(walkResult{
			Signature: signature,
			Family:    subtable.FamilyFor(signature).String(),
			Entries:   total,
			Types:     byType,
		})
	},
}

func init() {
	walkCmd.Flags().Bool("stdin", false, "Read table data from stdin")
	walkCmd.Flags().String("signature", "", "Override the table signature used to pick the entry layout")
	walkCmd.Flags().Int("header-size", table.HeaderSize, "Offset of the first entry")
	walkCmd.Flags().Int("max-length", 0, "Walk at most this many table bytes (0 = declared length)")
	walkCmd.Flags().Int("max-entries", 0, "Handle at most this many entries (0 = all)")
	rootCmd.AddCommand(walkCmd)
}
