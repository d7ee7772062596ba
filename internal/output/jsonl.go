package output

import (
	"encoding/json"
	"io"

	"topohmm/internal/fasta"
	"topohmm/internal/hmm"
	"topohmm/pkg/types"
)

// Result converts a prediction into its wire form.
func Result(rec fasta.Record, p hmm.Prediction) types.SequenceResult {
	res := types.SequenceResult{
		ID:          rec.ID,
		Description: rec.Description,
		Path:        p.Path.String(),
		LogProb:     p.LogProb,
		Segments:    make([]types.Segment, len(p.Segments)),
		Stats: types.Stats{
			Length:                p.Stats.Length,
			Helices:               p.Stats.Helices,
			Topology:              p.Stats.Topology,
			ExpectedHelixResidues: p.Stats.ExpectedHelixResidues,
			ExpectedFirst60:       p.Stats.ExpectedFirst60,
			ProbNIn:               p.Stats.ProbNIn,
		},
	}
	for i, s := range p.Segments {
		res.Segments[i] = types.Segment{Start: s.Start, End: s.End, Label: s.Label.String(), Name: s.Label.PrettyName()}
	}
	if p.Posterior != nil {
		res.Posterior = make([][3]float64, p.Posterior.Rows())
		for i := range res.Posterior {
			for c := hmm.Class(0); c < hmm.NumClasses; c++ {
				res.Posterior[i][c] = p.Posterior.At(i, c)
			}
		}
	}
	return res
}

// ErrorResult reports a per-record failure.
func ErrorResult(rec fasta.Record, err error) types.SequenceResult {
	return types.SequenceResult{ID: rec.ID, Description: rec.Description, Stats: types.Stats{Length: len(rec.Seq)}, Error: err.Error()}
}

// JSONWriter writes one SequenceResult per line.
type JSONWriter struct {
	enc *json.Encoder
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONWriter{enc: enc}
}

func (j *JSONWriter) Write(res types.SequenceResult) error { return j.enc.Encode(res) }
