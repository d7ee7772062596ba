package hmm

// Spec is the logical schema of a serialized model. YAML, JSON and TOML model
// files decode straight into it; the TMHMM text format is translated into it.
// A Spec is only a description: Compile validates it and builds a Model.
type Spec struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Alphabet string `json:"alphabet,omitempty" yaml:"alphabet,omitempty" toml:"alphabet,omitempty"`
	// Wildcard optionally names a symbol outside the alphabet whose
	// emissions are listed explicitly. Without it the wildcard emission is 1.
	Wildcard    string           `json:"wildcard,omitempty" yaml:"wildcard,omitempty" toml:"wildcard,omitempty"`
	States      []StateSpec      `json:"states" yaml:"states" toml:"states"`
	Transitions []TransitionSpec `json:"transitions" yaml:"transitions" toml:"transitions"`
}

// StateSpec describes one state. Exactly one of Emissions and TiedEmissions
// must be set.
type StateSpec struct {
	Name          string             `json:"name" yaml:"name" toml:"name"`
	Label         string             `json:"label" yaml:"label" toml:"label"`
	Start         float64            `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	Emissions     map[string]float64 `json:"emissions,omitempty" yaml:"emissions,omitempty" toml:"emissions,omitempty"`
	TiedEmissions string             `json:"tied_emissions,omitempty" yaml:"tied_emissions,omitempty" toml:"tied_emissions,omitempty"`
}

// TransitionSpec is one entry of the sparse transition table.
type TransitionSpec struct {
	From string  `json:"from" yaml:"from" toml:"from"`
	To   string  `json:"to" yaml:"to" toml:"to"`
	Prob float64 `json:"p" yaml:"p" toml:"p"`
}
