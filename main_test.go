package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgs(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := parseArgs(nil); err == nil {
		t.Error("no args: expected error")
	}
	if _, err := parseArgs([]string{"--record", wav}); err == nil {
		t.Error("--record with file: expected error")
	}
	if _, err := parseArgs([]string{filepath.Join(dir, "missing.wav")}); err == nil {
		t.Error("missing file: expected error")
	}
	if _, err := parseArgs([]string{dir}); err == nil {
		t.Error("directory: expected error")
	}
	if _, err := parseArgs([]string{"--bars", "zero", wav}); err == nil {
		t.Error("bad bar count: expected error")
	}

	cfg, err := parseArgs([]string{"--bars", "64", wav})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.Path != wav || cfg.TargetBars != 64 {
		t.Errorf("cfg = %+v, want path %s bars 64", cfg, wav)
	}

	cfg, err = parseArgs([]string{"--record"})
	if err != nil {
		t.Fatalf("parseArgs --record: %v", err)
	}
	if !cfg.Record {
		t.Error("Record not set")
	}
}
