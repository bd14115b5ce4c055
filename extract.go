// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Titanpak Authors
// Source: github.com/titanpak/vpk

package vpk

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/woozymasta/pathrules"
)

// extractWorkItem stores one selected file with its prepared output path.
type extractWorkItem struct {
	filePath string
	outPath  string
}

// ExtractAll writes the pak's files to dstDir, parallelized by MaxWorkers.
// Filter rules select which files are written; logical paths are validated
// against traversal before any output is created. On failure it returns the
// first encountered error.
func ExtractAll(p Pak, archiveDir, vpkName, dstDir string, opts ExtractOptions) (*ExtractResult, error) {
	opts.applyDefaults()
	if err := opts.Context.Err(); err != nil {
		return nil, err
	}

	matcher, err := newExtractMatcher(opts.Filter, opts.FilterMatcherOptions)
	if err != nil {
		return nil, err
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}

	result := &ExtractResult{}
	workItems := make([]extractWorkItem, 0)
	for _, filePath := range p.Paths() {
		if matcher != nil && !matcher.Included(filePath, false) {
			result.Skipped++
			continue
		}

		normalized, err := normalizeExtractPath(filePath)
		if err != nil {
			return nil, fmt.Errorf("normalize path %s: %w", filePath, err)
		}

		workItems = append(workItems, extractWorkItem{
			filePath: filePath,
			outPath:  filepath.Join(dstRootAbs, filepath.FromSlash(normalized)),
		})
	}

	if len(workItems) == 0 {
		return result, nil
	}

	taskCh := make(chan extractWorkItem, len(workItems))
	errCh := make(chan error, len(workItems))
	ctx, cancel := context.WithCancel(opts.Context)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			for task := range taskCh {
				err := extractOne(p, archiveDir, vpkName, task, opts)
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		})
	}

	for _, task := range workItems {
		select {
		case <-ctx.Done():
			close(taskCh)
			wg.Wait()
			return nil, ctx.Err()
		case taskCh <- task:
		}
	}

	close(taskCh)
	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if err != nil && first == nil {
			first = err
		}
	}

	if first != nil {
		return nil, first
	}

	result.Extracted = len(workItems)
	return result, nil
}

// extractOne writes one selected file, preferring mapped archives when the
// caller supplied them.
func extractOne(p Pak, archiveDir, vpkName string, task extractWorkItem, opts ExtractOptions) error {
	var err error
	if opts.Maps != nil {
		err = p.ExtractFileMemMap(opts.Maps, vpkName, task.filePath, task.outPath)
		if errors.Is(err, ErrMemoryMapNotFound) {
			err = p.ExtractFile(archiveDir, vpkName, task.filePath, task.outPath)
		}
	} else {
		err = p.ExtractFile(archiveDir, vpkName, task.filePath, task.outPath)
	}

	if err != nil {
		return err
	}

	if opts.OnFileDone != nil {
		opts.OnFileDone(task.filePath, task.outPath)
	}

	return nil
}

// newExtractMatcher compiles extraction filter rules; an empty rule set
// selects everything and compiles to nil.
func newExtractMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*pathrules.Matcher, error) {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := strings.TrimSpace(strings.ReplaceAll(rule.Pattern, `\`, `/`))
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	if len(normalized) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(normalized, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidFilterPattern, err)
	}

	return matcher, nil
}

// normalizeExtractPath cleans a logical pak path for filesystem use and
// rejects absolute or traversal inputs.
func normalizeExtractPath(filePath string) (string, error) {
	raw := strings.TrimSpace(filePath)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasWindowsAbsDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, `/`), nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with a drive-root prefix like C:/.
func hasWindowsAbsDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}

	return isASCIIAlpha(path[0]) && path[1] == ':' && path[2] == '/'
}

// isASCIIAlpha reports whether b is an ASCII latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
