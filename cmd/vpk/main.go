// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

// Command vpk inspects and extracts VPK (Valve Pak) container sets.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/titanpak/vpk"
)

var logLevel string

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "vpk",
	Short: "Inspect and extract VPK container sets",
	Long: `vpk - utilities for VPK (Valve Pak) container sets.

Supports directory files in version 1, version 2, and the Respawn layout.
A VPK set is addressed by its directory file ("pak_dir.vpk"); the numbered
archives ("pak_000.vpk", ...) are resolved next to it.

Examples:
  vpk info pak_dir.vpk
  vpk list --format yaml pak_dir.vpk
  vpk extract --include "scripts/**" pak_dir.vpk ./out/`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// setupLogging configures the global slog logger with a colorized console handler.
func setupLogging(levelStr string) {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))
}

// openDirFile opens and parses a directory file, returning the parsed pak
// plus the archive directory and set name derived from the path.
func openDirFile(dirPath string) (vpk.Pak, string, string, error) {
	f, err := os.Open(dirPath)
	if err != nil {
		return nil, "", "", err
	}
	defer func() { _ = f.Close() }()

	pak, err := vpk.OpenPak(f)
	if err != nil {
		return nil, "", "", err
	}

	archiveDir := filepath.Dir(dirPath)
	vpkName := strings.TrimSuffix(filepath.Base(dirPath), "_dir.vpk")

	return pak, archiveDir, vpkName, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
