package hmm

import (
	"fmt"
	"strings"
)

// Class is a coarse topology class. Posterior columns are indexed by Class.
type Class uint8

const (
	Inside Class = iota
	Membrane
	Outside

	// NumClasses is the number of posterior columns.
	NumClasses = 3
)

func (c Class) String() string {
	switch c {
	case Inside:
		return "inside"
	case Membrane:
		return "membrane"
	case Outside:
		return "outside"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Label is the externally visible per-residue symbol: 'i', 'M', 'o' or 'O'.
// 'o' and 'O' are two flavours of the same Outside class.
type Label byte

const (
	LabelInside   Label = 'i'
	LabelMembrane Label = 'M'
	LabelOutside  Label = 'o'
	LabelOutGlob  Label = 'O'
)

// ParseLabel accepts the label symbols used in model files.
func ParseLabel(s string) (Label, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("invalid label %q", s)
	}
	l := Label(s[0])
	if !l.Valid() {
		return 0, fmt.Errorf("invalid label %q", s)
	}
	return l, nil
}

func (l Label) Valid() bool {
	switch l {
	case LabelInside, LabelMembrane, LabelOutside, LabelOutGlob:
		return true
	}
	return false
}

func (l Label) Class() Class {
	switch l {
	case LabelInside:
		return Inside
	case LabelMembrane:
		return Membrane
	default:
		return Outside
	}
}

// PrettyName is the name used in summary files.
func (l Label) PrettyName() string {
	if l == LabelMembrane {
		return "transmembrane helix"
	}
	return l.Class().String()
}

func (l Label) String() string { return string(l) }

// Path is a per-residue label sequence.
type Path []Label

func (p Path) String() string {
	var b strings.Builder
	b.Grow(len(p))
	for _, l := range p {
		b.WriteByte(byte(l))
	}
	return b.String()
}

// Count returns how many residues carry label l.
func (p Path) Count(l Label) int {
	n := 0
	for _, x := range p {
		if x == l {
			n++
		}
	}
	return n
}

// CountClass returns how many residues fall in class c.
func (p Path) CountClass(c Class) int {
	n := 0
	for _, x := range p {
		if x.Class() == c {
			n++
		}
	}
	return n
}
