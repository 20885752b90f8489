package main

import (
	"dastgah/internal/harness"
	"dastgah/internal/logger"
	"dastgah/pkg/color"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Main entry point for the Dastgah runtime replay tool.
func main() {
	options := harness.Harness{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.StringVar(&options.ConfigFile, "c", "", "JSON configuration file")
	flag.StringVar(&options.TableFile, "t", "", "Binary frame-descriptor table")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <trace>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) == 0 {
		log.Fatal("No trace file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.TraceFile = args[0]

	err := options.Run()
	if err != nil {
		log.Fatal("Replay failed", "error", err)
	}
}
