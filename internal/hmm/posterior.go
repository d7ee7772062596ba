package hmm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Posterior holds per-residue marginal probabilities of the three classes.
type Posterior struct {
	// Matrix is N×3; columns are indexed by Class (inside, membrane, outside).
	Matrix *mat.Dense
	// LogLikelihood is log P(sequence | model), summed over all paths.
	LogLikelihood float64
}

// Rows returns the number of residues covered.
func (p *Posterior) Rows() int {
	r, _ := p.Matrix.Dims()
	return r
}

// At returns the marginal probability that residue i is in class c.
func (p *Posterior) At(i int, c Class) float64 { return p.Matrix.At(i, int(c)) }

// Column copies the per-residue probabilities of class c.
func (p *Posterior) Column(c Class) []float64 {
	return mat.Col(nil, int(c), p.Matrix)
}

// Posteriors runs forward-backward for seq and sums the per-state marginals
// within each class.
//
// Both passes are kept in log space and combined with log-sum-exp, so
// sequences of thousands of residues do not underflow. Each output row sums
// to 1 up to rounding.
func Posteriors(m *Model, seq string) (*Posterior, error) {
	if len(seq) == 0 {
		return nil, ErrEmptySequence
	}
	return posteriors(m, m.alphabet.Encode(seq))
}

func posteriors(m *Model, obs []int) (*Posterior, error) {
	n, ns := len(obs), len(m.states)
	fwd := forward(m, obs)
	logZ := logSumExp(fwd[(n-1)*ns:])
	if math.IsInf(logZ, -1) {
		return nil, ErrImpossibleSequence
	}
	bwd := backward(m, obs)

	out := mat.NewDense(n, NumClasses, nil)
	scratch := make([]float64, 0, ns)
	for i := 0; i < n; i++ {
		f := fwd[i*ns : (i+1)*ns]
		b := bwd[i*ns : (i+1)*ns]
		for c := Class(0); c < NumClasses; c++ {
			scratch = scratch[:0]
			for _, s := range m.groups[c] {
				scratch = append(scratch, f[s]+b[s])
			}
			out.Set(i, int(c), math.Exp(logSumExp(scratch)-logZ))
		}
	}
	return &Posterior{Matrix: out, LogLikelihood: logZ}, nil
}

// forward returns the N×S table (row-major) of log P(x[0..i], state_i = s).
func forward(m *Model, obs []int) []float64 {
	n, ns := len(obs), len(m.states)
	fwd := make([]float64, n*ns)
	for s := 0; s < ns; s++ {
		fwd[s] = m.logStart[s] + m.logEmit[s][obs[0]]
	}
	terms := make([]float64, 0, ns)
	for i := 1; i < n; i++ {
		prev := fwd[(i-1)*ns : i*ns]
		cur := fwd[i*ns : (i+1)*ns]
		x := obs[i]
		for s := 0; s < ns; s++ {
			e := m.logEmit[s][x]
			if math.IsInf(e, -1) {
				cur[s] = e
				continue
			}
			terms = terms[:0]
			for _, ed := range m.in[s] {
				terms = append(terms, prev[ed.state]+ed.logp)
			}
			cur[s] = logSumExp(terms) + e
		}
	}
	return fwd
}

// backward returns the N×S table of log P(x[i+1..N-1] | state_i = s).
func backward(m *Model, obs []int) []float64 {
	n, ns := len(obs), len(m.states)
	bwd := make([]float64, n*ns)
	terms := make([]float64, 0, ns)
	for i := n - 2; i >= 0; i-- {
		next := bwd[(i+1)*ns : (i+2)*ns]
		cur := bwd[i*ns : (i+1)*ns]
		x := obs[i+1]
		for s := 0; s < ns; s++ {
			terms = terms[:0]
			for _, ed := range m.out[s] {
				terms = append(terms, ed.logp+m.logEmit[ed.state][x]+next[ed.state])
			}
			cur[s] = logSumExp(terms)
		}
	}
	return bwd
}

// logSumExp is floats.LogSumExp extended to the empty set.
func logSumExp(s []float64) float64 {
	if len(s) == 0 {
		return math.Inf(-1)
	}
	return floats.LogSumExp(s)
}
