// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/titanpak/vpk"
)

var infoFormat string

// pakInfo is the serializable summary printed by the info command.
type pakInfo struct {
	Format    string   `json:"format" yaml:"format"`
	FileCount int      `json:"file_count" yaml:"file_count"`
	Archives  []uint16 `json:"archives" yaml:"archives"`
	Header    any      `json:"header" yaml:"header"`
}

var infoCmd = &cobra.Command{
	Use:   "info <dir_vpk>",
	Short: "Show directory file header and summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pak, _, _, err := openDirFile(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}

		info := pakInfo{
			Format:    pak.Format().String(),
			FileCount: len(pak.Paths()),
			Archives:  vpk.ReferencedArchives(pak),
		}

		switch v := pak.(type) {
		case *vpk.VPKVersion1:
			info.Header = v.Header
		case *vpk.VPKVersion2:
			info.Header = v.Header
		case *vpk.VPKRespawn:
			info.Header = v.Header
		}

		return printFormatted(info, infoFormat)
	},
}

// printFormatted writes v to stdout in the requested output format.
func printFormatted(v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer func() { _ = enc.Close() }()
		return enc.Encode(v)
	case "text":
		_, err := fmt.Printf("%+v\n", v)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "text", "output format (text, json, yaml)")
}
