package hmm

import "gonum.org/v1/gonum/floats"

// PredictOptions selects the optional parts of a prediction.
type PredictOptions struct {
	// Posterior enables the forward-backward pass. Without it Predict only
	// runs Viterbi.
	Posterior bool
}

// Prediction bundles everything computed for one sequence.
type Prediction struct {
	Decoding
	Segments  []Segment
	Posterior *Posterior // nil unless requested
	Stats     Stats
}

// Stats summarises a prediction the way TMHMM reports it.
type Stats struct {
	Length   int
	Helices  int
	Topology string
	// The fields below need the posterior and are zero without it.
	ExpectedHelixResidues float64 // sum of the membrane column
	ExpectedFirst60       float64 // same, over the first 60 residues
	ProbNIn               float64 // P(first residue is inside)
}

// first60 is the N-terminal window TMHMM uses to flag possible signal
// peptides.
const first60 = 60

// Predict decodes seq with m: the Viterbi path, its segments and, when
// requested, the class posteriors. The sequence is encoded once and shared
// by both passes.
func Predict(m *Model, seq string, opts PredictOptions) (Prediction, error) {
	if len(seq) == 0 {
		return Prediction{}, ErrEmptySequence
	}
	obs := m.alphabet.Encode(seq)
	dec, err := viterbi(m, obs)
	if err != nil {
		return Prediction{}, err
	}
	p := Prediction{Decoding: dec, Segments: Summarize(dec.Path)}
	p.Stats.Length = len(obs)
	p.Stats.Topology = Topology(p.Segments)
	for _, s := range p.Segments {
		if s.Label == LabelMembrane {
			p.Stats.Helices++
		}
	}
	if !opts.Posterior {
		return p, nil
	}
	post, err := posteriors(m, obs)
	if err != nil {
		return Prediction{}, err
	}
	p.Posterior = post
	col := post.Column(Membrane)
	p.Stats.ExpectedHelixResidues = floats.Sum(col)
	p.Stats.ExpectedFirst60 = floats.Sum(col[:min(first60, len(col))])
	p.Stats.ProbNIn = post.At(0, Inside)
	return p, nil
}
