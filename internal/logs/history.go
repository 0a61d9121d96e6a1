// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// RotatedFile represents a rotated log file.
type RotatedFile struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModTime    time.Time `json:"mod_time"`
	Compressed bool      `json:"compressed"`
	Index      int       `json:"index"` // Rotation number, higher is older
}

// HistoryReader reads the whole history of a rotating log: the rotated
// files oldest first, then the current file.
type HistoryReader struct {
	current    string // Path of the live log
	pattern    string // Glob for rotated files, relative to the live log's directory
	decompress string // Overrides the command picked from the file extension
}

// NewHistoryReader creates a reader for the live log at current.
func NewHistoryReader(current, rotatedPattern, decompress string) *HistoryReader {
	return &HistoryReader{
		current:    current,
		pattern:    rotatedPattern,
		decompress: decompress,
	}
}

// ListRotatedFiles returns the rotated files, newest first.
func (h *HistoryReader) ListRotatedFiles() ([]RotatedFile, error) {
	if h.pattern == "" {
		return nil, nil
	}

	pattern := h.pattern
	// If pattern is relative, make it relative to the log directory
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(filepath.Dir(h.current), pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob pattern: %w", err)
	}

	var files []RotatedFile
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, RotatedFile{
			Name:       filepath.Base(match),
			Path:       match,
			Size:       info.Size(),
			ModTime:    info.ModTime(),
			Compressed: h.decompress != "" || DecompressCommand(match) != "",
			Index:      rotationIndex(filepath.Base(match)),
		})
	}

	// Lower rotation number is newer; fall back to modification time
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Index != files[j].Index {
			return files[i].Index < files[j].Index
		}
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

// ReadAll returns the concatenated contents of every rotated file, oldest
// first, followed by the current file. Files are read concurrently.
func (h *HistoryReader) ReadAll(ctx context.Context) (string, error) {
	files, err := h.ListRotatedFiles()
	if err != nil {
		return "", err
	}

	ordered := make([]RotatedFile, 0, len(files)+1)
	for i := len(files) - 1; i >= 0; i-- {
		ordered = append(ordered, files[i])
	}
	ordered = append(ordered, RotatedFile{
		Name: filepath.Base(h.current),
		Path: h.current,
	})

	contents := make([][]byte, len(ordered))
	g, ctx := errgroup.WithContext(ctx)
	for i, file := range ordered {
		g.Go(func() error {
			data, err := h.readFile(ctx, file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file.Name, err)
			}
			contents[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var out strings.Builder
	for _, data := range contents {
		out.Write(data)
	}
	return out.String(), nil
}

// readFile reads a single file, decompressing it if needed.
func (h *HistoryReader) readFile(ctx context.Context, file RotatedFile) ([]byte, error) {
	if !file.Compressed {
		return os.ReadFile(file.Path)
	}

	if h.decompress == "" && hasAnySuffix(file.Path, ".gz", ".gzip") {
		f, err := os.Open(file.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	}

	decompressCmd := h.decompress
	if decompressCmd == "" {
		decompressCmd = DecompressCommand(file.Path)
	}
	if decompressCmd == "" {
		return nil, fmt.Errorf("no decompress command for %s", file.Path)
	}

	parts := strings.Fields(decompressCmd)
	cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], file.Path)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", parts[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// rotationIndex extracts N from names like "system.log.N" or "system.log.N.gz".
// Names without a number sort after numbered ones.
func rotationIndex(name string) int {
	for _, part := range strings.Split(name, ".") {
		if n, err := strconv.Atoi(part); err == nil {
			return n
		}
	}
	return int(^uint(0) >> 1)
}

// DecompressCommand returns the decompress command for a file based on its extension.
func DecompressCommand(filename string) string {
	switch {
	case hasAnySuffix(filename, ".zst", ".zstd"):
		return "zstd -dc"
	case hasAnySuffix(filename, ".gz", ".gzip"):
		return "gzip -dc"
	case hasAnySuffix(filename, ".bz2", ".bzip2"):
		return "bzip2 -dc"
	case hasAnySuffix(filename, ".xz"):
		return "xz -dc"
	default:
		return ""
	}
}

// hasAnySuffix checks if s ends with any of the given suffixes.
func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
