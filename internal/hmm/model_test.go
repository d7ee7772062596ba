package hmm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toySpec mirrors testdata/toy.*: three states over the alphabet "HP".
func toySpec() Spec {
	return Spec{
		Name:     "toy",
		Alphabet: "HP",
		States: []StateSpec{
			{Name: "in", Label: "i", Start: 0.6, Emissions: map[string]float64{"H": 0.2, "P": 0.8}},
			{Name: "mem", Label: "M", Emissions: map[string]float64{"H": 0.9, "P": 0.1}},
			{Name: "out", Label: "o", Start: 0.4, Emissions: map[string]float64{"H": 0.3, "P": 0.7}},
		},
		Transitions: []TransitionSpec{
			{From: "in", To: "in", Prob: 0.8},
			{From: "in", To: "mem", Prob: 0.2},
			{From: "mem", To: "mem", Prob: 0.6},
			{From: "mem", To: "out", Prob: 0.3},
			{From: "mem", To: "in", Prob: 0.1},
			{From: "out", To: "out", Prob: 0.7},
			{From: "out", To: "mem", Prob: 0.3},
		},
	}
}

func mustCompile(t *testing.T, spec Spec) *Model {
	t.Helper()
	m, err := Compile(spec, Options{})
	require.NoError(t, err)
	return m
}

func TestCompileToy(t *testing.T) {
	m := mustCompile(t, toySpec())

	assert.Equal(t, "toy", m.Name())
	assert.Equal(t, 3, m.NumStates())
	assert.Equal(t, 7, m.NumTransitions())
	assert.Equal(t, 2, m.Alphabet().Len())

	i, ok := m.StateIndex("mem")
	require.True(t, ok)
	assert.Equal(t, LabelMembrane, m.State(i).Label)
	assert.InDelta(t, 0.9, m.State(i).Emission(0), 1e-12)
	assert.InDelta(t, 1.0, m.State(i).Emission(m.Alphabet().Wildcard()), 1e-12)

	assert.InDelta(t, 0.3, m.TransitionProb(i, 2), 1e-12)
	assert.Zero(t, m.TransitionProb(0, 2))
	for j := 0; j < m.NumStates(); j++ {
		assert.Positive(t, m.TransitionProb(i, j), "mem->%d", j)
	}

	assert.Equal(t, []int{0}, m.Group(Inside))
	assert.Equal(t, []int{1}, m.Group(Membrane))
	assert.Equal(t, []int{2}, m.Group(Outside))
}

func TestCompileExplicitWildcard(t *testing.T) {
	spec := toySpec()
	spec.Wildcard = "X"
	for i := range spec.States {
		spec.States[i].Emissions["X"] = 0.5
	}
	m := mustCompile(t, spec)
	assert.InDelta(t, 0.5, m.State(0).Emission(m.Alphabet().Wildcard()), 1e-12)

	spec.States[1].Emissions = map[string]float64{"H": 0.9, "P": 0.1}
	_, err := Compile(spec, Options{})
	require.True(t, IsModelFormat(err), "missing wildcard column must fail: %v", err)
}

func TestCompileTiedEmissions(t *testing.T) {
	spec := toySpec()
	spec.States[2].Emissions = nil
	spec.States[2].TiedEmissions = "in"
	m := mustCompile(t, spec)
	assert.Equal(t, m.State(0).Emission(0), m.State(2).Emission(0))
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"no states", func(s *Spec) { s.States = nil }},
		{"no transitions", func(s *Spec) { s.Transitions = nil }},
		{"undefined destination", func(s *Spec) { s.Transitions[0].To = "nowhere" }},
		{"undefined source", func(s *Spec) { s.Transitions[0].From = "nowhere" }},
		{"duplicate state", func(s *Spec) { s.States[2].Name = "in" }},
		{"unnamed state", func(s *Spec) { s.States[0].Name = "" }},
		{"bad label", func(s *Spec) { s.States[0].Label = "x" }},
		{"emissions do not sum to one", func(s *Spec) { s.States[0].Emissions["H"] = 0.5 }},
		{"negative emission", func(s *Spec) { s.States[0].Emissions = map[string]float64{"H": -0.2, "P": 1.2} }},
		{"unknown emission symbol", func(s *Spec) { s.States[0].Emissions["Z"] = 0 }},
		{"missing emissions", func(s *Spec) { s.States[1].Emissions = nil }},
		{"tie to undefined state", func(s *Spec) { s.States[1].Emissions = nil; s.States[1].TiedEmissions = "ghost" }},
		{"cyclic ties", func(s *Spec) {
			s.States[1].Emissions, s.States[1].TiedEmissions = nil, "out"
			s.States[2].Emissions, s.States[2].TiedEmissions = nil, "mem"
		}},
		{"missing start", func(s *Spec) { s.States[0].Start, s.States[2].Start = 0, 0 }},
		{"start does not sum to one", func(s *Spec) { s.States[0].Start = 0.9 }},
		{"row does not sum to one", func(s *Spec) { s.Transitions[0].Prob = 0.5 }},
		{"duplicate transition", func(s *Spec) { s.Transitions = append(s.Transitions, s.Transitions[0]) }},
		{"unreachable state", func(s *Spec) {
			s.States = append(s.States, StateSpec{Name: "orphan", Label: "O", Emissions: map[string]float64{"H": 1}})
			s.Transitions = append(s.Transitions, TransitionSpec{From: "orphan", To: "orphan", Prob: 1})
		}},
		{"bad wildcard", func(s *Spec) { s.Wildcard = "H" }},
		{"duplicate alphabet symbol", func(s *Spec) { s.Alphabet = "HPH" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := toySpec()
			tc.mutate(&spec)
			_, err := Compile(spec, Options{Source: "toy"})
			require.Error(t, err)
			var mfe *ModelFormatError
			require.ErrorAs(t, err, &mfe)
			assert.Equal(t, "toy", mfe.Source)
		})
	}
}

func TestCompileTolerance(t *testing.T) {
	spec := toySpec()
	spec.Transitions[0].Prob = 0.8005 // row sums to 1.0005
	_, err := Compile(spec, Options{})
	require.NoError(t, err, "within default tolerance")

	_, err = Compile(spec, Options{Tolerance: 1e-4})
	require.True(t, IsModelFormat(err))
}

func TestCompileLogSpace(t *testing.T) {
	spec := toySpec()
	spec.States[0].Emissions = map[string]float64{"H": 0, "P": 1}
	m := mustCompile(t, spec)
	assert.True(t, math.IsInf(m.logEmit[0][0], -1))
	assert.InDelta(t, math.Log(0.6), m.logStart[0], 1e-12)
	assert.True(t, math.IsInf(m.logStart[1], -1))
}

func TestLabels(t *testing.T) {
	for _, l := range []Label{LabelInside, LabelMembrane, LabelOutside, LabelOutGlob} {
		got, err := ParseLabel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseLabel("io")
	assert.Error(t, err)

	assert.Equal(t, Outside, LabelOutGlob.Class())
	assert.Equal(t, "outside", LabelOutGlob.PrettyName())
	assert.Equal(t, "transmembrane helix", LabelMembrane.PrettyName())
	assert.Equal(t, "inside", LabelInside.PrettyName())

	p := pathOf("iiMMoO")
	assert.Equal(t, "iiMMoO", p.String())
	assert.Equal(t, 1, p.Count(LabelOutGlob))
	assert.Equal(t, 2, p.CountClass(Outside))
}

func TestAlphabetEncode(t *testing.T) {
	a, err := NewAlphabet(DefaultAlphabet)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 19, a.Wildcard(), a.Wildcard()}, a.Encode("AaYXb"))
	i, known := a.Index('*')
	assert.False(t, known)
	assert.Equal(t, 20, i)
}

func pathOf(s string) Path {
	p := make(Path, len(s))
	for i := 0; i < len(s); i++ {
		p[i] = Label(s[i])
	}
	return p
}
