package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const batchCacheVersion = 1

// analyzedExport is what one batch run learned about a statement export.
type analyzedExport struct {
	SHA256       string    `json:"sha256"`
	Narrative    string    `json:"narrative"`
	Transactions int       `json:"transactions"`
	DroppedRows  int       `json:"dropped_rows"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// batchCache maps export paths to their last analysis so unchanged exports
// are skipped on the next run.
type batchCache struct {
	Version int                       `json:"version"`
	Exports map[string]analyzedExport `json:"exports"`
}

func newBatchCache() *batchCache {
	return &batchCache{Version: batchCacheVersion, Exports: make(map[string]analyzedExport)}
}

// readBatchCache returns an empty cache when path does not exist or was
// written by another cache version.
func readBatchCache(path string) (*batchCache, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0) {
		return newBatchCache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read batch cache: %w", err)
	}

	var cache batchCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("failed to parse batch cache: %w", err)
	}
	if cache.Version != batchCacheVersion || cache.Exports == nil {
		return newBatchCache(), nil
	}
	return &cache, nil
}

// fresh reports whether export was analyzed with the same content and its
// narrative file is still on disk.
func (c *batchCache) fresh(export, sum string) (analyzedExport, bool) {
	entry, ok := c.Exports[export]
	if !ok || sum == "" || entry.SHA256 != sum {
		return entry, false
	}
	if _, err := os.Stat(entry.Narrative); err != nil {
		return entry, false
	}
	return entry, true
}

// write replaces path atomically so an interrupted run never leaves a
// truncated cache behind.
func (c *batchCache) write(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".analyze_cache-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create batch cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write batch cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write batch cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace batch cache: %w", err)
	}
	return nil
}

func sha256File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open export: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to hash export: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
