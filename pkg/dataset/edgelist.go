package dataset

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-centrality/pkg/graph"
)

// readChunkSize is the block size used when scanning the mapped file
const readChunkSize = 1 << 20

// LoadEdgeList parses a tab-separated edge list (src<TAB>dst per line, no
// header) into edges. Lines starting with '#' are comments; blank lines are
// skipped. The file is memory-mapped and scanned in blocks so large datasets
// avoid a second in-heap copy.
func LoadEdgeList(path string) ([]graph.Edge, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping edge list: %w", err)
	}
	defer r.Close()

	edges := make([]graph.Edge, 0, 1024)
	chunk := make([]byte, readChunkSize)
	var carry []byte
	lineNo := 0

	for off := int64(0); off < int64(r.Len()); off += readChunkSize {
		n, err := r.ReadAt(chunk, off)
		if n == 0 && err != nil {
			return nil, fmt.Errorf("reading edge list: %w", err)
		}

		block := chunk[:n]
		start := 0
		for i, b := range block {
			if b != '\n' {
				continue
			}
			line := block[start:i]
			if len(carry) > 0 {
				line = append(carry, line...)
				carry = carry[:0]
			}
			start = i + 1
			lineNo++
			edge, ok, err := parseEdgeLine(line, lineNo)
			if err != nil {
				return nil, err
			}
			if ok {
				edges = append(edges, edge)
			}
		}
		carry = append(carry, block[start:]...)
	}

	// Final line without a trailing newline
	if len(carry) > 0 {
		lineNo++
		edge, ok, err := parseEdgeLine(carry, lineNo)
		if err != nil {
			return nil, err
		}
		if ok {
			edges = append(edges, edge)
		}
	}

	return edges, nil
}

// parseEdgeLine parses one line, reporting ok=false for comments and blanks
func parseEdgeLine(line []byte, lineNo int) (graph.Edge, bool, error) {
	line = trimCR(line)
	if len(line) == 0 || line[0] == '#' {
		return graph.Edge{}, false, nil
	}

	tab := -1
	for i, b := range line {
		if b == '\t' {
			tab = i
			break
		}
	}
	if tab <= 0 || tab == len(line)-1 {
		return graph.Edge{}, false, fmt.Errorf("%w: line %d: %q", ErrBadEdgeLine, lineNo, line)
	}

	src, err := strconv.ParseUint(string(line[:tab]), 10, 64)
	if err != nil {
		return graph.Edge{}, false, fmt.Errorf("%w: line %d: %v", ErrBadEdgeLine, lineNo, err)
	}
	dst, err := strconv.ParseUint(string(line[tab+1:]), 10, 64)
	if err != nil {
		return graph.Edge{}, false, fmt.Errorf("%w: line %d: %v", ErrBadEdgeLine, lineNo, err)
	}

	return graph.Edge{Src: src, Dst: dst}, true, nil
}

func trimCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}
