package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/acpikit/acpikit"
	"github.com/acpikit/acpikit/cache"
	"github.com/acpikit/acpikit/host"
	"github.com/acpikit/acpikit/hw"
	"github.com/acpikit/acpikit/ns"
	"github.com/acpikit/acpikit/object"
	"github.com/acpikit/acpikit/table"
)

type cacheReport struct {
	Name        string `json:"name"`
	Requests    uint64 `json:"requests"`
	Hits        uint64 `json:"hits"`
	Allocated   uint64 `json:"allocated"`
	Freed       uint64 `json:"freed"`
	MaxOccupied uint64 `json:"max_occupied"`
	Depth       int    `json:"depth"`
}

func reportCache[T any](c *cache.Cache[T]) cacheReport {
	stats := c.Stats()
	return cacheReport{
		Name:        c.Name(),
		Requests:    stats.Requests,
		Hits:        stats.Hits,
		Allocated:   stats.TotalAllocated,
		Freed:       stats.TotalFreed,
		MaxOccupied: stats.MaxOccupied,
		Depth:       c.Depth(),
	}
}

type upResult struct {
	Stage          string             `json:"stage"`
	HardwareMode   string             `json:"hardware_mode"`
	NamespaceNodes int                `json:"namespace_nodes"`
	Interfaces     int                `json:"interfaces"`
	Tables         int                `json:"tables"`
	StateCache     cacheReport        `json:"state_cache"`
	WalkCache      cacheReport        `json:"walk_cache"`
	Devices        ns.DeviceInitStats `json:"devices"`
	CleanShutdown  bool               `json:"clean_shutdown"`
	ShutdownError  string             `json:"shutdown_error,omitempty"`
}

// coupleSim wires the simulator's SMI command port to its SCI enable bit,
// so the mode transition sees responsive hardware.
func coupleSim(sim *host.Simulator, fadt *table.FADT) {
	sim.OnPortWrite = func(w host.PortWrite) {
		if w.Port != fadt.SMICommand {
			return
		}
		switch uint8(w.Value) {
		case fadt.AcpiEnable:
			sim.SetBit(host.BitSCIEnable, 1)
		case fadt.AcpiDisable:
			sim.SetBit(host.BitSCIEnable, 0)
		}
	}
}

// exercise drives a nested method invocation through the pools so the
// cache counters have something to show.
func exercise(s *acpikit.Subsystem, depth int) error {
	pools := s.Pools()
	owner, err := s.OwnerIDs().Allocate()
	if err != nil {
		return err
	}
	defer s.OwnerIDs().Release(owner)

	thread, err := pools.NewThread()
	if err != nil {
		return err
	}
	defer thread.Release()

	for i := 0; i < depth; i++ {
		ws, err := pools.NewWalkState(owner, nil, nil, thread)
		if err != nil {
			return err
		}
		if err := ws.Begin(); err != nil {
			return err
		}
		if err := ws.PushOperand(object.NewInteger(uint64(i))); err != nil {
			return err
		}
	}
	for thread.Current() != nil {
		ws := thread.PopWalkState()
		if _, err := ws.PopOperand(); err != nil {
			return err
		}
		if err := ws.Complete(); err != nil {
			return err
		}
		ws.Delete()
	}
	return nil
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Run the full subsystem lifecycle against simulated hardware",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := getLogger()
		sim := host.NewSimulator()
		s := acpikit.New(
			acpikit.WithHost(sim),
			acpikit.WithLogger(log),
		)
		if err := s.Initialize(); err != nil {
			return err
		}

		install := func(flag string) (bool, error) {
			path, _ := cmd.Flags().GetString(flag)
			if path == "" {
				return false, nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return false, err
			}
			_, err = s.InstallTable(data)
			return err == nil, err
		}
		haveFADT, err := install("fadt")
		if err != nil {
			return err
		}
		haveFACS, err := install("facs")
		if err != nil {
			return err
		}
		extra, _ := cmd.Flags().GetStringArray("table")
		for _, path := range extra {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if _, err := s.InstallTable(data); err != nil {
				return err
			}
		}

		if haveFADT {
			t, _ := s.Tables().Lookup(table.SignatureFADT, 1)
			fadt, err := table.ParseFADT(t)
			if err != nil {
				return err
			}
			coupleSim(sim, fadt)
		}

		if err := s.Enable(acpikit.InitOptions{
			NoHardwareEnable: !haveFADT,
			NoFACSInit:       !haveFACS,
		}); err != nil {
			return err
		}
		if err := s.InitializeObjects(acpikit.InitOptions{}); err != nil {
			return err
		}

		if depth, _ := cmd.Flags().GetInt("exercise"); depth > 0 {
			if err := exercise(s, depth); err != nil {
				return err
			}
		}

		mode := "skipped"
		if haveFADT {
			m, err := hw.GetMode(sim, s.FADT())
			if err != nil {
				return err
			}
			mode = m.String()
		}

		result := upResult{
			Stage:          s.Stage().String(),
			HardwareMode:   mode,
			NamespaceNodes: s.Namespace().Size(),
			Interfaces:     s.Interfaces().Len(),
			Tables:         s.Tables().Len(),
			StateCache:     reportCache(s.Pools().States().Cache()),
			WalkCache:      reportCache(s.Pools().WalkCache()),
			Devices:        s.DeviceStats(),
		}

		if err := s.Shutdown(); err != nil {
			result.ShutdownError = err.Error()
		} else {
			result.CleanShutdown = true
		}
		return printResult(result)
	},
}

func init() {
	upCmd.Flags().String("fadt", "", "Fixed description table to install")
	upCmd.Flags().String("facs", "", "Firmware control structure to install")
	upCmd.Flags().StringArray("table", nil, "Additional table to install (repeatable)")
	upCmd.Flags().Int("exercise", 3, "Nested walk-states to drive through the pools (0 = none)")
	rootCmd.AddCommand(upCmd)
}
