// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hub fetches google/wmt24pp reference data from the Hugging Face
// hub and caches it under the cache-home directory. Downloads are skipped
// when a cached copy exists; offline mode forbids the network entirely.
package hub

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/esa-pipeline/internal/httputil"
	"github.com/pdiddy/esa-pipeline/pkg/types"
)

const (
	// DefaultEndpoint is the public Hugging Face hub.
	DefaultEndpoint = "https://huggingface.co"

	// dataset is the wmt24pp repository on the hub.
	dataset = "google/wmt24pp"

	// cacheSubdir is our slice of the cache-home directory.
	cacheSubdir = "esa-pipeline"
	refsSubdir  = "wmt24pp"
)

// langsToCode maps WMT24 ESA language pairs to wmt24pp configuration codes.
// Only these six pairs have post-edited references.
var langsToCode = map[string]string{
	"en-cs": "en-cs_CZ",
	"en-ja": "en-ja_JP",
	"en-zh": "en-zh_CN",
	"en-is": "en-is_IS",
	"en-uk": "en-uk_UA",
	"en-ru": "en-ru_RU",
}

// Code returns the wmt24pp configuration code for a language pair.
func Code(langs string) (string, bool) {
	code, ok := langsToCode[langs]
	return code, ok
}

// Pairs returns the supported language pairs in sorted order.
func Pairs() []string {
	pairs := make([]string, 0, len(langsToCode))
	for lp := range langsToCode {
		pairs = append(pairs, lp)
	}
	sort.Strings(pairs)
	return pairs
}

// CachePath returns where the reference file for langs lives under the
// cache root.
func CachePath(cacheDir, langs string) (string, error) {
	code, ok := Code(langs)
	if !ok {
		return "", fmt.Errorf("no wmt24pp references for language pair %q", langs)
	}
	return filepath.Join(cacheDir, cacheSubdir, refsSubdir, code+".jsonl"), nil
}

// IndexDir returns the directory for the reference index database under
// the cache root.
func IndexDir(cacheDir string) string {
	return filepath.Join(cacheDir, cacheSubdir, "index")
}

// Client fetches and parses wmt24pp reference files.
type Client struct {
	http *http.Client
	cfg  types.HubConfig
}

// NewClient creates a hub client from config, filling in endpoint and
// timeout defaults.
func NewClient(cfg types.HubConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Fetch ensures the reference file for langs is in the cache and returns
// its path. A cached file is never re-downloaded. In offline mode a cache
// miss is an error instead of a download.
func (c *Client) Fetch(ctx context.Context, langs string, w io.Writer) (string, error) {
	path, err := CachePath(c.cfg.CacheDir, langs)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "cached: %s\n", langs)
		return path, nil
	}

	if c.cfg.Offline {
		return "", fmt.Errorf("offline and %s references not cached at %s", langs, path)
	}

	code, _ := Code(langs)
	url := fmt.Sprintf("%s/datasets/%s/resolve/main/%s.jsonl", c.cfg.Endpoint, dataset, code)

	fmt.Fprintf(w, "downloading: %s (%s)\n", langs, code)
	if err := httputil.Download(ctx, c.http, url, path, c.cfg.UserAgent, c.cfg.Token); err != nil {
		return "", fmt.Errorf("fetching %s references: %w", langs, err)
	}
	return path, nil
}

// FetchRows ensures the reference file for langs is cached and returns its
// parsed rows.
func (c *Client) FetchRows(ctx context.Context, langs string, w io.Writer) ([]types.ReferenceRow, error) {
	path, err := c.Fetch(ctx, langs, w)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

// References loads the source-to-target reference map for langs, fetching
// the file when it is not cached. Rows flagged as bad sources are excluded.
func (c *Client) References(ctx context.Context, langs string, w io.Writer) (map[string]string, error) {
	rows, err := c.FetchRows(ctx, langs, w)
	if err != nil {
		return nil, err
	}
	return ReferenceMap(rows), nil
}

// maxLineBytes bounds a single jsonl line; reference segments are long but
// never this long.
const maxLineBytes = 4 * 1024 * 1024

// ParseRows reads wmt24pp jsonl rows from r. Blank lines are ignored; a
// malformed line is an error carrying its line number.
func ParseRows(r io.Reader) ([]types.ReferenceRow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var rows []types.ReferenceRow
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row types.ReferenceRow
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	return rows, nil
}

// ReferenceMap builds the source-to-target lookup from parsed rows,
// excluding bad sources.
func ReferenceMap(rows []types.ReferenceRow) map[string]string {
	refs := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.IsBadSource {
			continue
		}
		refs[row.Source] = row.Target
	}
	return refs
}
