// Package hmm is the topology decoding engine: a labelled hidden Markov model
// and the two decoders that run over it. It is structured into small files by
// concern:
//
//   - label.go: Label ('i', 'M', 'o', 'O'), Class and Path.
//   - alphabet.go: residue to emission-column mapping with a wildcard column.
//   - spec.go: Spec, the logical schema of a serialized model.
//   - model.go: Model (immutable, arena of states with sorted adjacency
//     lists) and Compile, which validates a Spec and moves it to log space.
//   - loader.go: Load/LoadFile for YAML, JSON and TOML models.
//   - tmhmm.go: ParseTMHMM for the TMHMM text model format.
//   - viterbi.go: most likely state path.
//   - posterior.go: forward-backward class marginals.
//   - segments.go: run-length segmentation of a path.
//   - predict.go: Predict, combining the above with summary statistics.
//
// A compiled *Model is never mutated and may be shared by any number of
// goroutines. Decoding is pure and CPU-bound; parallelism across sequences is
// left to callers (see internal/batch and internal/manager).
package hmm
