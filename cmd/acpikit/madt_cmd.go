package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acpikit/acpikit/subtable"
	"github.com/acpikit/acpikit/table"
)

type madtResult struct {
	LocalAPICAddress string                    `json:"local_apic_address"`
	PCATCompatible   bool                      `json:"pcat_compatible"`
	Processors       []table.LocalAPIC         `json:"processors"`
	IOAPICs          []table.IOAPIC            `json:"io_apics"`
	Overrides        []table.InterruptOverride `json:"interrupt_overrides"`
	Entries          int                       `json:"entries"`
}

var madtCmd = &cobra.Command{
	Use:   "madt [file]",
	Short: "Decode an interrupt controller (APIC) table",
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
		madt, err := table.ParseMADT(t)
		if err != nil {
			return err
		}

		result := madtResult{
			LocalAPICAddress: fmt.Sprintf("%#x", madt.LocalAPICAddress),
			PCATCompatible:   madt.Flags&table.MADTFlagPCATCompat != 0,
		}
		procs := []subtable.Proc{
			{ID: table.MADTEntryLocalAPIC, Handler: func(e subtable.Entry) error {
				apic, err := table.DecodeLocalAPIC(e)
				if err != nil {
					return err
				}
				result.Processors = append(result.Processors, apic)
				return nil
			}},
			{ID: table.MADTEntryIOAPIC, Handler: func(e subtable.Entry) error {
				io, err := table.DecodeIOAPIC(e)
				if err != nil {
					return err
				}
				result.IOAPICs = append(result.IOAPICs, io)
				return nil
			}},
			{ID: table.MADTEntryInterruptOverride, Handler: func(e subtable.Entry) error {
				ovr, err := table.DecodeInterruptOverride(e)
				if err != nil {
					return err
				}
				result.Overrides = append(result.Overrides, ovr)
				return nil
			}},
		}
		count, err := madt.Walk(procs, &log)
		if err != nil {
			return err
		}
		result.Entries = count
		return printResult(result)
	},
}

func init() {
	madtCmd.Flags().Bool("stdin", false, "Read table data from stdin")
	rootCmd.AddCommand(madtCmd)
}
