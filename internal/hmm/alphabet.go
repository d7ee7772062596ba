package hmm

// DefaultAlphabet is the twenty standard amino acids in the order used by
// TMHMM model files.
const DefaultAlphabet = "ACDEFGHIKLMNPQRSTVWY"

// Alphabet maps residue bytes to emission columns. The wildcard column is
// always the last one, at index Len().
type Alphabet struct {
	symbols string
	index   [256]int16
}

// NewAlphabet builds an alphabet from distinct symbols. Lower-case residues
// are folded to upper case on lookup.
func NewAlphabet(symbols string) (*Alphabet, error) {
	a := &Alphabet{symbols: symbols}
	for i := range a.index {
		a.index[i] = -1
	}
	if symbols == "" {
		return nil, formatErrorf("", "header", "empty alphabet")
	}
	for i := 0; i < len(symbols); i++ {
		c := upper(symbols[i])
		if a.index[c] >= 0 {
			return nil, formatErrorf("", "header", "duplicate alphabet symbol %q", symbols[i])
		}
		a.index[c] = int16(i)
	}
	return a, nil
}

func (a *Alphabet) Len() int { return len(a.symbols) }

func (a *Alphabet) Symbols() string { return a.symbols }

// Wildcard is the emission column shared by all unknown residues.
func (a *Alphabet) Wildcard() int { return len(a.symbols) }

// Index returns the emission column for residue c and whether c is a known
// symbol. Unknown residues map to the wildcard column.
func (a *Alphabet) Index(c byte) (int, bool) {
	i := a.index[upper(c)]
	if i < 0 {
		return a.Wildcard(), false
	}
	return int(i), true
}

// Encode maps a residue sequence to emission columns. Whitespace is not
// expected here; callers strip it while reading FASTA.
func (a *Alphabet) Encode(seq string) []int {
	out := make([]int, len(seq))
	for i := 0; i < len(seq); i++ {
		out[i], _ = a.Index(seq[i])
	}
	return out
}

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
