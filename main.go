package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcel-blanc/waveview/internal/extractor"
	"github.com/marcel-blanc/waveview/internal/ui"
)

func usage() {
	fmt.Fprintf(os.Stderr, `waveview — terminal audio waveform viewer

Usage:
  waveview <file>      visualize an audio file (%s)
  waveview --record    visualize the microphone live (requires ffmpeg)

Options:
  --bars N             target bar count for file extraction (default %d)
`, extractor.SupportedExtsList(), extractor.DefaultBarCount)
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		usage()
		os.Exit(1)
	}

	program := tea.NewProgram(ui.New(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (ui.Config, error) {
	var cfg ui.Config

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--record":
			cfg.Record = true
		case arg == "--bars":
			if i+1 >= len(args) {
				return cfg, fmt.Errorf("--bars needs a value")
			}
			i++
			n := 0
			if _, err := fmt.Sscanf(args[i], "%d", &n); err != nil || n < 1 {
				return cfg, fmt.Errorf("invalid bar count %q", args[i])
			}
			cfg.TargetBars = n
		case strings.HasPrefix(arg, "-"):
			return cfg, fmt.Errorf("unknown flag %s", arg)
		case cfg.Path != "":
			return cfg, fmt.Errorf("only one file may be given")
		default:
			cfg.Path = arg
		}
	}

	if cfg.Record && cfg.Path != "" {
		return cfg, fmt.Errorf("--record does not take a file")
	}
	if !cfg.Record && cfg.Path == "" {
		return cfg, fmt.Errorf("no input given")
	}

	if cfg.Path != "" {
		info, err := os.Stat(cfg.Path)
		if err != nil {
			return cfg, err
		}
		if info.IsDir() {
			return cfg, fmt.Errorf("%s is a directory", cfg.Path)
		}
		ext := strings.ToLower(filepath.Ext(cfg.Path))
		if !extractor.IsSupportedExt(ext) {
			return cfg, fmt.Errorf("unsupported format %s (supported: %s)", ext, extractor.SupportedExtsList())
		}
	}
	return cfg, nil
}
