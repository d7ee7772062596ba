package types

// Model represents a topology model discovered in the models directory.
type Model struct {
	// Stable identifier for the model (file name without extension).
	// example: tmhmm2
	ID string `json:"id" example:"tmhmm2"`
	// Human-friendly name declared by the model, or the ID.
	// example: TMHMM 2.0
	Name string `json:"name" example:"TMHMM 2.0"`
	// Absolute path to the model file on disk.
	// example: /srv/models/TMHMM2.0.model
	Path string `json:"path" example:"/srv/models/TMHMM2.0.model"`
	// Description syntax of the file: tmhmm, yaml, json or toml.
	// example: tmhmm
	Format string `json:"format" example:"tmhmm"`
	// Number of states, set once the model has been loaded.
	// example: 30
	States int `json:"states,omitempty" example:"30"`
}

// Segment is a maximal run of one label in a predicted path.
type Segment struct {
	// 0-based inclusive start residue.
	// example: 6
	Start int `json:"start" example:"6"`
	// 0-based inclusive end residue.
	// example: 28
	End int `json:"end" example:"28"`
	// Path label: i, M, o or O.
	// example: M
	Label string `json:"label" example:"M"`
	// Readable label name.
	// example: transmembrane helix
	Name string `json:"name" example:"transmembrane helix"`
}

// Stats summarizes one prediction.
type Stats struct {
	// Sequence length in residues.
	// example: 883
	Length int `json:"length" example:"883"`
	// Number of predicted helices.
	// example: 3
	Helices int `json:"helices" example:"3"`
	// Compact topology string.
	// example: i93-115o130-152i
	Topology string `json:"topology" example:"i93-115o130-152i"`
	// Expected number of residues in helices (posterior only).
	// example: 64.2
	ExpectedHelixResidues float64 `json:"expected_helix_residues,omitempty" example:"64.2"`
	// Expected helix residues within the first 60 (posterior only).
	// example: 0.01
	ExpectedFirst60 float64 `json:"expected_first60,omitempty" example:"0.01"`
	// Probability that the N-terminus is inside (posterior only).
	// example: 0.93
	ProbNIn float64 `json:"prob_n_in,omitempty" example:"0.93"`
}
