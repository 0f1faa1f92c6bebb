package main

import (
	"github.com/spf13/cobra"

	"github.com/acpikit/acpikit/osi"
)

type interfaceMatch struct {
	Name      string `json:"name"`
	Supported bool   `json:"supported"`
	Value     uint32 `json:"value,omitempty"`
	Feature   bool   `json:"feature,omitempty"`
}

var interfacesCmd = &cobra.Command{
	Use:   "interfaces [name]",
	Short: "List the default interface support strings, or match one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := osi.NewRegistry(getLogger())
		if len(args) == 1 {
			iface, ok := reg.Lookup(args[0])
			return printResult(interfaceMatch{
				Name:      args[0],
				Supported: ok,
				Value:     iface.Value,
				Feature:   iface.Feature,
			})
		}
		return printResult(reg.List())
	},
}

func init() {
	rootCmd.AddCommand(interfacesCmd)
}
