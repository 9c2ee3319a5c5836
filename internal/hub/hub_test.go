// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hub

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/esa-pipeline/pkg/types"
)

const sampleRefs = `{"lp":"en-cs_CZ","domain":"news","document_id":"d1","segment_id":1,"is_bad_source":false,"source":"Hello.","target":"Ahoj."}
{"lp":"en-cs_CZ","domain":"news","document_id":"d1","segment_id":2,"is_bad_source":true,"source":"Bad one.","target":"Spatny."}

{"lp":"en-cs_CZ","domain":"social","document_id":"d2","segment_id":1,"is_bad_source":false,"source":"Bye.","target":"Nashle."}
`

func TestCode(t *testing.T) {
	tests := []struct {
		langs string
		want  string
		ok    bool
	}{
		{"en-cs", "en-cs_CZ", true},
		{"en-ja", "en-ja_JP", true},
		{"en-zh", "en-zh_CN", true},
		{"en-de", "", false},
		{"cs-en", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.langs, func(t *testing.T) {
			got, ok := Code(tt.langs)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Code(%q) = %q, %v; want %q, %v", tt.langs, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPairs(t *testing.T) {
	want := []string{"en-cs", "en-is", "en-ja", "en-ru", "en-uk", "en-zh"}
	got := Pairs()
	if len(got) != len(want) {
		t.Fatalf("Pairs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Pairs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseRows(t *testing.T) {
	rows, err := ParseRows(strings.NewReader(sampleRefs))
	if err != nil {
		t.Fatalf("ParseRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0].Source != "Hello." || rows[0].Target != "Ahoj." {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if !rows[1].IsBadSource {
		t.Error("rows[1] should be flagged as bad source")
	}
}

func TestParseRowsMalformed(t *testing.T) {
	_, err := ParseRows(strings.NewReader("{\"lp\":\"en-cs_CZ\"}\nnot json\n"))
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name line 2", err)
	}
}

func TestReferenceMap(t *testing.T) {
	rows, err := ParseRows(strings.NewReader(sampleRefs))
	if err != nil {
		t.Fatal(err)
	}
	refs := ReferenceMap(rows)
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2 (bad source excluded)", len(refs))
	}
	if refs["Hello."] != "Ahoj." {
		t.Errorf("refs[Hello.] = %q", refs["Hello."])
	}
	if _, ok := refs["Bad one."]; ok {
		t.Error("bad source leaked into reference map")
	}
}

func TestFetchDownloadsAndCaches(t *testing.T) {
	var hits int
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		gotPath = r.URL.Path
		w.Write([]byte(sampleRefs))
	}))
	defer ts.Close()

	cacheDir := t.TempDir()
	c := NewClient(types.HubConfig{
		Endpoint: ts.URL,
		CacheDir: cacheDir,
	})

	var out bytes.Buffer
	path, err := c.Fetch(context.Background(), "en-cs", &out)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotPath != "/datasets/google/wmt24pp/resolve/main/en-cs_CZ.jsonl" {
		t.Errorf("request path = %q", gotPath)
	}
	if !strings.Contains(out.String(), "downloading: en-cs") {
		t.Errorf("output = %q", out.String())
	}

	// Second fetch hits the cache, not the server.
	out.Reset()
	path2, err := c.Fetch(context.Background(), "en-cs", &out)
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if path2 != path {
		t.Errorf("cache path changed: %q vs %q", path2, path)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
	if !strings.Contains(out.String(), "cached: en-cs") {
		t.Errorf("output = %q", out.String())
	}
}

func TestFetchOfflineCacheMiss(t *testing.T) {
	c := NewClient(types.HubConfig{
		CacheDir: t.TempDir(),
		Offline:  true,
	})
	_, err := c.Fetch(context.Background(), "en-cs", os.Stderr)
	if err == nil {
		t.Fatal("expected offline cache-miss error")
	}
	if !strings.Contains(err.Error(), "offline") {
		t.Errorf("error = %q", err)
	}
}

func TestFetchUnknownPair(t *testing.T) {
	c := NewClient(types.HubConfig{CacheDir: t.TempDir()})
	_, err := c.Fetch(context.Background(), "en-de", os.Stderr)
	if err == nil || !strings.Contains(err.Error(), "en-de") {
		t.Errorf("error = %v", err)
	}
}

func TestReferences(t *testing.T) {
	cacheDir := t.TempDir()
	path, err := CachePath(cacheDir, "en-cs")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(sampleRefs), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewClient(types.HubConfig{CacheDir: cacheDir, Offline: true})
	var out bytes.Buffer
	refs, err := c.References(context.Background(), "en-cs", &out)
	if err != nil {
		t.Fatalf("References() error = %v", err)
	}
	if refs["Bye."] != "Nashle." {
		t.Errorf("refs = %v", refs)
	}
}
