// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/woozymasta/pathrules"

	"github.com/titanpak/vpk"
)

var (
	extractInclude []string
	extractExclude []string
	extractWorkers int
	extractMmap    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <dir_vpk> <output_dir>",
	Short: "Extract files from a VPK set to a directory",
	Long: `Extract files from a VPK set to a directory.

Include and exclude patterns are ordered path rules; the last matching rule
wins and an empty rule set extracts everything. Respawn audio assets are
reconstructed with their RIFF headers; CAM sidecars next to the archives
are picked up automatically.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pak, archiveDir, vpkName, err := openDirFile(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}

		if rp, ok := pak.(*vpk.VPKRespawn); ok {
			if err := rp.ReadAllCams(archiveDir, vpkName, vpk.NewCamCache()); err != nil {
				slog.Warn("some CAM sidecars could not be read", "error", err)
			}
		}

		opts := vpk.ExtractOptions{
			MaxWorkers: extractWorkers,
			Context:    cmd.Context(),
			Filter:     buildFilterRules(extractInclude, extractExclude),
			OnFileDone: func(filePath, outputPath string) {
				slog.Debug("extracted", "file", filePath, "output", outputPath)
			},
		}
		if len(extractInclude) > 0 {
			// Explicit includes switch the default to exclude-everything-else.
			opts.FilterMatcherOptions = pathrules.MatcherOptions{
				CaseInsensitive: true,
				DefaultAction:   pathrules.ActionExclude,
			}
		}

		if extractMmap {
			maps, err := vpk.OpenArchiveMaps(archiveDir, vpkName, vpk.ReferencedArchives(pak))
			if err != nil {
				return fmt.Errorf("map archives: %w", err)
			}
			defer func() { _ = vpk.CloseArchiveMaps(maps) }()

			opts.Maps = maps
		}

		res, err := vpk.ExtractAll(pak, archiveDir, vpkName, args[1], opts)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}

		slog.Info("done", "extracted", res.Extracted, "skipped", res.Skipped)
		return nil
	},
}

// buildFilterRules turns include/exclude pattern flags into ordered rules,
// excludes after includes so excludes win on overlap.
func buildFilterRules(include, exclude []string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(include)+len(exclude))
	for _, pattern := range include {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionInclude, Pattern: pattern})
	}
	for _, pattern := range exclude {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionExclude, Pattern: pattern})
	}

	return rules
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringArrayVarP(&extractInclude, "include", "i", nil, "include pattern (repeatable)")
	extractCmd.Flags().StringArrayVarP(&extractExclude, "exclude", "e", nil, "exclude pattern (repeatable)")
	extractCmd.Flags().IntVarP(&extractWorkers, "workers", "w", 0, "extraction workers (0 = GOMAXPROCS)")
	extractCmd.Flags().BoolVar(&extractMmap, "mmap", false, "read archives through memory maps")
}
