package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topohmm/internal/fasta"
	"topohmm/internal/hmm"
)

func topo(t *testing.T) *hmm.Model {
	t.Helper()
	m, err := hmm.LoadFile(filepath.Join("..", "hmm", "testdata", "topo.yaml"), hmm.Options{})
	require.NoError(t, err)
	return m
}

func randomRecords(n int) []fasta.Record {
	rng := rand.New(rand.NewSource(3))
	recs := make([]fasta.Record, n)
	for i := range recs {
		b := make([]byte, 1+rng.Intn(200))
		for k := range b {
			b[k] = hmm.DefaultAlphabet[rng.Intn(len(hmm.DefaultAlphabet))]
		}
		recs[i] = fasta.Record{ID: fmt.Sprintf("r%03d", i), Seq: string(b)}
	}
	return recs
}

func TestRunOrderedAndMatchesSerial(t *testing.T) {
	m := topo(t)
	recs := randomRecords(40)
	src := Slice(append([]fasta.Record(nil), recs...))

	var got []Item
	err := Run(context.Background(), Config{Threads: 8, Posterior: true}, m, &src, func(it Item) error {
		got = append(got, it)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, len(recs))
	for i, it := range got {
		require.Equal(t, i, it.Index)
		require.Equal(t, recs[i].ID, it.Record.ID)
		require.NoError(t, it.Err)
		want, err := hmm.Predict(m, recs[i].Seq, hmm.PredictOptions{Posterior: true})
		require.NoError(t, err)
		assert.Equal(t, want.Path.String(), it.Prediction.Path.String(), it.Record.ID)
		assert.Equal(t, want.Stats, it.Prediction.Stats, it.Record.ID)
	}
}

func TestRunReportsPerRecordErrors(t *testing.T) {
	src := Slice{{ID: "ok", Seq: "KKKK"}, {ID: "empty"}, {ID: "ok2", Seq: "LLLL"}}
	var ids []string
	var errs []error
	err := Run(context.Background(), Config{Threads: 2}, topo(t), &src, func(it Item) error {
		ids = append(ids, it.Record.ID)
		errs = append(errs, it.Err)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "empty", "ok2"}, ids)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], hmm.ErrEmptySequence)
	assert.NoError(t, errs[2])
}

func TestRunStopsOnVisitError(t *testing.T) {
	src := Slice(randomRecords(100))
	boom := errors.New("boom")
	calls := 0
	err := Run(context.Background(), Config{Threads: 4}, topo(t), &src, func(it Item) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestRunSourceError(t *testing.T) {
	r := fasta.NewReader(strings.NewReader(">a\nKK\n>a\nLL\n"))
	var n int
	err := Run(context.Background(), Config{Threads: 2}, topo(t), r, func(Item) error {
		n++
		return nil
	})
	assert.ErrorIs(t, err, fasta.ErrDuplicateID)
	assert.LessOrEqual(t, n, 1)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := Slice(randomRecords(10))
	err := Run(ctx, Config{Threads: 2}, topo(t), &src, func(Item) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
