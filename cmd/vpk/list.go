// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list <dir_vpk>",
	Short: "List the logical paths in a VPK set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pak, _, _, err := openDirFile(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}

		paths := pak.Paths()
		if listFormat == "text" {
			for _, path := range paths {
				fmt.Println(path)
			}

			return nil
		}

		return printFormatted(paths, listFormat)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "output format (text, json, yaml)")
}
