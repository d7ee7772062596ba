// Package batch predicts many sequences in parallel and hands the results
// back in input order.
package batch

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"topohmm/internal/fasta"
	"topohmm/internal/hmm"
)

// Config controls a batch run.
type Config struct {
	Threads   int  // worker goroutines (>=1)
	Posterior bool // run forward-backward for every record
	Logger    zerolog.Logger
}

// Source yields records until io.EOF. *fasta.Reader satisfies it.
type Source interface {
	Next() (fasta.Record, error)
}

// Item is the outcome for one record. Err holds per-record decoding failures
// such as an empty sequence; the run continues past them.
type Item struct {
	Index      int
	Record     fasta.Record
	Prediction hmm.Prediction
	Err        error
}

// Run decodes every record from src with m and calls visit once per record,
// in input order. It stops at the first source or visit error, or when ctx
// is cancelled, and returns that error.
func Run(ctx context.Context, cfg Config, m *hmm.Model, src Source, visit func(Item) error) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Item, cfg.Threads*2)
	results := make(chan Item, cfg.Threads*2)
	opts := hmm.PredictOptions{Posterior: cfg.Posterior}

	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case it, ok := <-jobs:
					if !ok {
						return
					}
					start := time.Now()
					it.Prediction, it.Err = hmm.Predict(m, it.Record.Seq, opts)
					cfg.Logger.Debug().Str("id", it.Record.ID).Int("residues", len(it.Record.Seq)).
						Dur("dur", time.Since(start)).Err(it.Err).Msg("record decoded")
					select {
					case results <- it:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector: reorders results and feeds visit sequentially.
	var (
		verr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		pending := make(map[int]Item)
		next := 0
		for it := range results {
			if verr != nil {
				continue
			}
			pending[it.Index] = it
			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if err := visit(ready); err != nil {
					verr = err
					cancel()
					break
				}
			}
		}
	}()

	var serr error
	idx := 0
feed:
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			serr = err
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- Item{Index: idx, Record: rec}:
			idx++
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	switch {
	case verr != nil:
		return verr
	case serr != nil:
		return serr
	}
	return ctx.Err()
}

// Slice adapts a record slice to Source.
type Slice []fasta.Record

func (s *Slice) Next() (fasta.Record, error) {
	if len(*s) == 0 {
		return fasta.Record{}, io.EOF
	}
	rec := (*s)[0]
	*s = (*s)[1:]
	return rec, nil
}
