package harness

import (
	"fmt"
	"os"

	"dastgah/pkg/color"
	"dastgah/pkg/frame"
	"dastgah/pkg/machine"
	"dastgah/pkg/signal"
	"dastgah/pkg/trap"

	"github.com/charmbracelet/log"
)

type Harness struct {
	Help       bool   // Show help message
	Verbose    bool   // Enable verbose output
	NoColor    bool   // Disable colored output
	ConfigFile string // Path to the JSON configuration file
	TableFile  string // Path to a binary frame-descriptor table
	TraceFile  string // Path to the trace script
}

// Run replays the trace file through the allocation and signal runtime,
// reporting what the run did.
func (opts *Harness) Run() error {
	log.Info("Processing trace", "file", opts.TraceFile)

	cfg := DefaultConfig()
	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			log.Fatal("Failed to read config", "file", opts.ConfigFile, "error", err)
		}
		cfg, err = ParseConfig(data)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	input, err := os.ReadFile(opts.TraceFile)
	if err != nil {
		log.Fatal("Failed to read trace", "file", opts.TraceFile, "error", err)
	}

	tr, err := ParseTrace(string(input))
	if err != nil {
		fmt.Println(color.BrightRedText("=== Trace Errors ==="))
		fmt.Println(err)
		return fmt.Errorf("trace parsing failed")
	}

	dir, err := opts.buildDirectory(tr)
	if err != nil {
		return fmt.Errorf("descriptor table: %w", err)
	}

	// One-time process setup; a no-op on architectures without
	// hardware-trap checks.
	trap.Init()

	m := machine.NewMachine(dir, cfg.HeapTop, cfg.HeapLimit,
		machine.WithCollectPlan(cfg.CollectPlan))

	for _, sig := range cfg.Ignored {
		if _, err := m.Signals().SetAction(sig, signal.ActionIgnore); err != nil {
			return fmt.Errorf("registering %s: %w", signal.Name(sig), err)
		}
	}
	for _, sig := range cfg.Managed {
		if _, err := m.Signals().SetAction(sig, signal.ActionRuntimeManaged); err != nil {
			return fmt.Errorf("registering %s: %w", signal.Name(sig), err)
		}
	}

	m.Load(tr.Events)
	if err := m.Run(); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	opts.report(m)
	return nil
}

// buildDirectory loads the binary table when one is given, otherwise
// builds a directory from the sites declared in the trace.
func (opts *Harness) buildDirectory(tr *Trace) (*frame.Directory, error) {
	if opts.TableFile != "" {
		data, err := os.ReadFile(opts.TableFile)
		if err != nil {
			log.Fatal("Failed to read table", "file", opts.TableFile, "error", err)
		}
		return frame.DecodeTable(data)
	}

	capacity := 2
	for capacity <= 2*len(tr.Sites) {
		capacity *= 2
	}

	dir, err := frame.NewDirectory(capacity)
	if err != nil {
		return nil, err
	}
	for _, d := range tr.Sites {
		if err := dir.Insert(d); err != nil {
			return nil, err
		}
	}
	return dir, nil
}

// report prints the run summary.
func (opts *Harness) report(m *machine.Machine) {
	fmt.Println(color.GreenText("\n=== Replay Summary ==="))
	fmt.Printf("%s %d\n", color.CyanText("allocation sites completed:"), len(m.Allocated()))
	fmt.Printf("%s %d\n", color.CyanText("collector interrupts:"), m.Collections())
	fmt.Printf("%s %d (headroom %d words)\n", color.CyanText("final cursor:"), m.Context().YoungPtr, m.Context().Headroom())

	if drained := m.Drained(); len(drained) > 0 {
		fmt.Println(color.GreenText("\n=== Signals Drained ==="))
		for _, sig := range drained {
			fmt.Println(color.YellowText(signal.Name(sig)))
		}
	}
	if defaulted := m.Defaulted(); len(defaulted) > 0 {
		fmt.Println(color.BrightRedText("\n=== Signals Without Handler ==="))
		for _, sig := range defaulted {
			fmt.Println(color.YellowText(signal.Name(sig)))
		}
	}

	if opts.Verbose {
		fmt.Println(color.GreenText("\n=== Executed Sites ==="))
		if len(m.Allocated()) == 0 {
			fmt.Println(color.GrayText("No allocation sites executed."))
		} else {
			for i, addr := range m.Allocated() {
				fmt.Printf("%s: %s\n",
					color.CyanText(fmt.Sprintf("%d", i)),
					color.BlueText(fmt.Sprintf("%#x", uintptr(addr))))
			}
		}
	}
}
