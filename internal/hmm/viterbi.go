package hmm

import "math"

// Decoding is the most likely state path for one sequence.
type Decoding struct {
	// States holds the sub-state index chosen at every residue.
	States []int
	// Path is States projected onto the state labels.
	Path Path
	// LogProb is the joint log-probability of the path and the sequence.
	LogProb float64
}

// Viterbi returns the maximum a posteriori joint state path for seq.
//
// The recursion runs in log space over the sparse predecessor lists, so the
// cost is O(N·E) time for E non-zero transitions and O(N·S) memory for the
// back-pointers. Zero-probability transitions never appear in the lists and
// are therefore never selected. When several predecessors (or final states)
// reach the same score, the lowest state index wins.
//
// Residues outside the alphabet use the wildcard emission.
func Viterbi(m *Model, seq string) (Decoding, error) {
	if len(seq) == 0 {
		return Decoding{}, ErrEmptySequence
	}
	return viterbi(m, m.alphabet.Encode(seq))
}

func viterbi(m *Model, obs []int) (Decoding, error) {
	n, ns := len(obs), len(m.states)
	negInf := math.Inf(-1)

	prev := make([]float64, ns)
	cur := make([]float64, ns)
	back := make([]int32, n*ns)

	for s := 0; s < ns; s++ {
		prev[s] = m.logStart[s] + m.logEmit[s][obs[0]]
		back[s] = -1
	}

	for i := 1; i < n; i++ {
		x := obs[i]
		row := back[i*ns : (i+1)*ns]
		for s := 0; s < ns; s++ {
			row[s] = -1
			e := m.logEmit[s][x]
			if math.IsInf(e, -1) {
				cur[s] = negInf
				continue
			}
			best, arg := negInf, int32(-1)
			// m.in[s] is sorted by predecessor index; strict > keeps the
			// lowest index on ties.
			for _, ed := range m.in[s] {
				if v := prev[ed.state] + ed.logp; v > best {
					best, arg = v, int32(ed.state)
				}
			}
			if arg < 0 {
				cur[s] = negInf
				continue
			}
			cur[s] = best + e
			row[s] = arg
		}
		prev, cur = cur, prev
	}

	best, last := negInf, -1
	for s := 0; s < ns; s++ {
		if prev[s] > best {
			best, last = prev[s], s
		}
	}
	if last < 0 {
		return Decoding{}, ErrImpossibleSequence
	}

	states := make([]int, n)
	states[n-1] = last
	for i := n - 1; i > 0; i-- {
		states[i-1] = int(back[i*ns+states[i]])
	}
	path := make(Path, n)
	for i, s := range states {
		path[i] = m.states[s].Label
	}
	return Decoding{States: states, Path: path, LogProb: best}, nil
}
