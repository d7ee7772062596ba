package manager

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"topohmm/internal/fasta"
	"topohmm/internal/hmm"
	"topohmm/internal/output"
	"topohmm/pkg/types"
)

// Predict resolves the model, waits for admission and decodes every sequence
// of req in order. Validation failures reject the whole request; sequences
// the model cannot produce fail individually in their result.
func (m *Manager) Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	if err := validate(req); err != nil {
		return types.PredictResponse{}, err
	}
	inst, err := m.EnsureInstance(ctx, req.Model)
	if err != nil {
		return types.PredictResponse{}, err
	}
	release, err := m.beginPrediction(ctx)
	if err != nil {
		return types.PredictResponse{}, err
	}
	defer release()

	resp := types.PredictResponse{
		ID:      uuid.NewString(),
		Model:   inst.ID,
		Results: make([]types.SequenceResult, 0, len(req.Sequences)),
	}
	opts := hmm.PredictOptions{Posterior: req.Posterior}
	start := time.Now()
	residues := 0
	for i, in := range req.Sequences {
		if err := ctx.Err(); err != nil {
			return types.PredictResponse{}, err
		}
		rec := fasta.Record{ID: sequenceID(i, in), Description: in.Description, Seq: strings.Join(strings.Fields(in.Seq), "")}
		t0 := time.Now()
		p, err := hmm.Predict(inst.Model, rec.Seq, opts)
		predictDuration.WithLabelValues(inst.ID).Observe(time.Since(t0).Seconds())
		if err != nil {
			if !errors.Is(err, hmm.ErrImpossibleSequence) {
				return types.PredictResponse{}, err
			}
			sequencesTotal.WithLabelValues(inst.ID, "impossible").Inc()
			resp.Results = append(resp.Results, output.ErrorResult(rec, err))
			continue
		}
		sequencesTotal.WithLabelValues(inst.ID, "ok").Inc()
		residues += len(rec.Seq)
		resp.Results = append(resp.Results, output.Result(rec, p))
	}
	residuesTotal.WithLabelValues(inst.ID).Add(float64(residues))

	m.mu.Lock()
	inst.served += uint64(len(req.Sequences))
	inst.LastUsed = time.Now()
	m.mu.Unlock()
	m.sequencesTotal.Add(uint64(len(req.Sequences)))

	m.log.Debug().Str("id", resp.ID).Str("model", inst.ID).Int("sequences", len(req.Sequences)).
		Int("residues", residues).Dur("dur", time.Since(start)).Msg("predict done")
	return resp, nil
}

func validate(req types.PredictRequest) error {
	if len(req.Sequences) == 0 {
		return ErrBadRequest("at least one sequence is required")
	}
	seen := make(map[string]bool, len(req.Sequences))
	for i, s := range req.Sequences {
		if strings.TrimSpace(s.Seq) == "" {
			return ErrBadRequest("sequence " + strconv.Itoa(i+1) + ": " + hmm.ErrEmptySequence.Error())
		}
		id := sequenceID(i, s)
		if seen[id] {
			return ErrBadRequest("duplicate sequence id " + strconv.Quote(id))
		}
		seen[id] = true
	}
	return nil
}

// sequenceID names the i-th sequence; unnamed ones become seqN (1-based).
func sequenceID(i int, s types.SequenceInput) string {
	if s.ID != "" {
		return s.ID
	}
	return "seq" + strconv.Itoa(i+1)
}
