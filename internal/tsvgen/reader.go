// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tsvgen

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pdiddy/esa-pipeline/pkg/types"
)

// maxLineBytes bounds a single jsonl line.
const maxLineBytes = 4 * 1024 * 1024

// ReadAnnotations decodes WMT24 ESA annotations from jsonl. Blank lines
// are ignored. An annotation with an empty source segment is corrupt input
// and aborts the read.
func ReadAnnotations(r io.Reader) ([]types.Annotation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var anns []types.Annotation
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ann types.Annotation
		if err := json.Unmarshal(line, &ann); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if ann.Src == "" {
			return nil, fmt.Errorf("line %d: empty source segment", lineNo)
		}
		anns = append(anns, ann)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	return anns, nil
}
