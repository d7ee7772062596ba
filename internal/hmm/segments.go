package hmm

import (
	"strconv"
	"strings"
)

// Segment is a maximal run of one label. Start and End are inclusive,
// 0-based residue indices.
type Segment struct {
	Start int
	End   int
	Label Label
}

func (s Segment) Len() int { return s.End - s.Start + 1 }

// Summarize groups a path into maximal runs of identical labels. The runs are
// in position order, contiguous, and cover the whole path.
func Summarize(path Path) []Segment {
	if len(path) == 0 {
		return nil
	}
	var segs []Segment
	start := 0
	for i := 1; i <= len(path); i++ {
		if i == len(path) || path[i] != path[start] {
			segs = append(segs, Segment{Start: start, End: i - 1, Label: path[start]})
			start = i
		}
	}
	return segs
}

// Topology renders segments in the compact TMHMM notation, e.g.
// "i7-29o44-66i": the side of the first residue, then every helix as a
// 1-based inclusive range followed by the side it leads to.
func Topology(segs []Segment) string {
	var b strings.Builder
	side := byte(0)
	emit := func(l Label) {
		c := sideSymbol(l)
		if c != side {
			b.WriteByte(c)
			side = c
		}
	}
	for _, s := range segs {
		if s.Label != LabelMembrane {
			emit(s.Label)
			continue
		}
		b.WriteString(strconv.Itoa(s.Start + 1))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(s.End + 1))
		side = 0
	}
	return b.String()
}

func sideSymbol(l Label) byte {
	if l.Class() == Inside {
		return 'i'
	}
	return 'o'
}
