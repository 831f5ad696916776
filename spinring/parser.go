// Package spinring parses the SPIN ring configuration file format from
// spec.md §6: whitespace-separated (router_id, direction) token pairs
// describing a traversal order, with an implicit first node the parser
// must infer and append.
package spinring

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/nocsim/garnet"
)

// Parse reads a ring file from r and returns the closed ring
// (garnet.RingNode slice with the first node duplicated at the end,
// ready to hand to garnet.SpinConfig.Ring). numRows is needed to
// validate the implicit-first-node rule (spec.md §6).
func Parse(r io.Reader, numRows int) ([]garnet.RingNode, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		tok := strings.TrimSpace(sc.Text())
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, garnet.NewConfigError("spin ring: reading config: %v", err)
	}
	if len(tokens)%2 != 0 {
		return nil, garnet.NewConfigError("spin ring: odd token count %d, expected (router_id, direction) pairs", len(tokens))
	}

	var nodes []garnet.RingNode
	for i := 0; i < len(tokens); i += 2 {
		id, err := strconv.Atoi(tokens[i])
		if err != nil {
			return nil, garnet.NewConfigError("spin ring: invalid router id %q: %v", tokens[i], err)
		}
		dir, err := garnet.DirectionFromToken(tokens[i+1])
		if err != nil {
			return nil, garnet.NewConfigError("spin ring: %v", err)
		}
		nodes = append(nodes, garnet.RingNode{RouterID: id, Inport: dir})
	}
	if len(nodes) == 0 {
		return nil, garnet.NewConfigError("spin ring: config is empty")
	}

	var implicitFirst garnet.RingNode
	last := nodes[len(nodes)-1]
	switch last.RouterID {
	case 1:
		implicitFirst = garnet.RingNode{RouterID: 0, Inport: garnet.East}
	case numRows:
		implicitFirst = garnet.RingNode{RouterID: 0, Inport: garnet.North}
	default:
		return nil, garnet.NewConfigError("spin ring: last listed router %d is adjacent to neither router 1 nor router %d; ring does not close on router 0", last.RouterID, numRows)
	}

	ring := make([]garnet.RingNode, 0, len(nodes)+2)
	ring = append(ring, implicitFirst)
	ring = append(ring, nodes...)
	ring = append(ring, implicitFirst) // close the loop
	return ring, nil
}
