package hmm

import (
	"math"
	"sort"
)

// DefaultTolerance is the allowed deviation of a probability distribution
// from 1 when no tolerance is configured.
const DefaultTolerance = 1e-3

// Options tunes model compilation.
type Options struct {
	// Tolerance is the allowed |sum-1| for every distribution.
	// Zero means DefaultTolerance.
	Tolerance float64
	// Source names the origin of the model in error messages.
	Source string
}

func (o Options) tolerance() float64 {
	if o.Tolerance <= 0 {
		return DefaultTolerance
	}
	return o.Tolerance
}

// State is a read-only view of one model state with linear-space parameters.
type State struct {
	Index int
	Name  string
	Label Label
	Start float64
	emit  []float64
}

// Emission returns the linear emission probability of alphabet column sym
// (the wildcard column included).
func (s State) Emission(sym int) float64 { return s.emit[sym] }

type edge struct {
	state int
	prob  float64
	logp  float64
}

// Model is a compiled, immutable hidden Markov model. States live in an arena
// indexed by int; transitions are adjacency lists sorted by state index.
// A *Model is safe for concurrent use by any number of decoders.
type Model struct {
	name     string
	alphabet *Alphabet
	states   []State
	byName   map[string]int

	logStart []float64
	logEmit  [][]float64 // [state][column], wildcard column last
	in       [][]edge    // in[s]: predecessors of s
	out      [][]edge    // out[s]: successors of s
	groups   [NumClasses][]int
}

func (m *Model) Name() string { return m.name }

func (m *Model) Alphabet() *Alphabet { return m.alphabet }

func (m *Model) NumStates() int { return len(m.states) }

func (m *Model) State(i int) State { return m.states[i] }

// StateIndex resolves a state name.
func (m *Model) StateIndex(name string) (int, bool) {
	i, ok := m.byName[name]
	return i, ok
}

// Group returns the indices of the states of class c, in index order.
func (m *Model) Group(c Class) []int {
	return append([]int(nil), m.groups[c]...)
}

// TransitionProb returns the linear probability of moving from one state to
// another; zero when the transition does not exist.
func (m *Model) TransitionProb(from, to int) float64 {
	out := m.out[from]
	i := sort.Search(len(out), func(k int) bool { return out[k].state >= to })
	if i < len(out) && out[i].state == to {
		return out[i].prob
	}
	return 0
}

// NumTransitions counts the non-zero transitions.
func (m *Model) NumTransitions() int {
	n := 0
	for _, o := range m.out {
		n += len(o)
	}
	return n
}

// Compile validates a Spec and builds the Model. Every defect is reported as
// a *ModelFormatError.
func Compile(spec Spec, opts Options) (*Model, error) {
	src := opts.Source
	tol := opts.tolerance()

	symbols := spec.Alphabet
	if symbols == "" {
		symbols = DefaultAlphabet
	}
	alpha, err := NewAlphabet(symbols)
	if err != nil {
		err.(*ModelFormatError).Source = src
		return nil, err
	}
	var wildcard byte
	switch len(spec.Wildcard) {
	case 0:
	case 1:
		wildcard = upper(spec.Wildcard[0])
		if _, known := alpha.Index(wildcard); known {
			return nil, formatErrorf(src, "header", "wildcard %q is part of the alphabet", spec.Wildcard)
		}
	default:
		return nil, formatErrorf(src, "header", "wildcard must be a single symbol, got %q", spec.Wildcard)
	}

	if len(spec.States) == 0 {
		return nil, formatErrorf(src, "states", "missing states section")
	}
	if len(spec.Transitions) == 0 {
		return nil, formatErrorf(src, "transitions", "missing transitions section")
	}

	m := &Model{
		name:     spec.Name,
		alphabet: alpha,
		states:   make([]State, len(spec.States)),
		byName:   make(map[string]int, len(spec.States)),
	}
	for i, ss := range spec.States {
		if ss.Name == "" {
			return nil, formatErrorf(src, "states", "state %d has no name", i)
		}
		if _, dup := m.byName[ss.Name]; dup {
			return nil, formatErrorf(src, ss.Name, "duplicate state")
		}
		lbl, err := ParseLabel(ss.Label)
		if err != nil {
			return nil, formatErrorf(src, ss.Name, "%v", err)
		}
		if !finiteProb(ss.Start) {
			return nil, formatErrorf(src, ss.Name, "invalid start probability %v", ss.Start)
		}
		m.byName[ss.Name] = i
		m.states[i] = State{Index: i, Name: ss.Name, Label: lbl, Start: ss.Start}
	}

	if err := m.resolveEmissions(spec, wildcard, src, tol); err != nil {
		return nil, err
	}

	var startSum float64
	for _, s := range m.states {
		startSum += s.Start
	}
	if startSum == 0 {
		return nil, formatErrorf(src, "start", "missing start distribution")
	}
	if math.Abs(startSum-1) > tol {
		return nil, formatErrorf(src, "start", "start distribution sums to %g", startSum)
	}

	if err := m.buildTransitions(spec.Transitions, src, tol); err != nil {
		return nil, err
	}
	if err := m.checkReachable(src); err != nil {
		return nil, err
	}

	m.logStart = make([]float64, len(m.states))
	m.logEmit = make([][]float64, len(m.states))
	for i, s := range m.states {
		m.logStart[i] = safeLog(s.Start)
		row := make([]float64, len(s.emit))
		for k, p := range s.emit {
			row[k] = safeLog(p)
		}
		m.logEmit[i] = row
		c := s.Label.Class()
		m.groups[c] = append(m.groups[c], i)
	}
	return m, nil
}

func (m *Model) resolveEmissions(spec Spec, wildcard byte, src string, tol float64) error {
	width := m.alphabet.Len() + 1
	resolving := make([]bool, len(m.states))

	var resolve func(i int) error
	resolve = func(i int) error {
		st := &m.states[i]
		if st.emit != nil {
			return nil
		}
		ss := spec.States[i]
		if ss.TiedEmissions != "" {
			if len(ss.Emissions) > 0 {
				return formatErrorf(src, st.Name, "both emissions and tied_emissions given")
			}
			j, ok := m.byName[ss.TiedEmissions]
			if !ok {
				return formatErrorf(src, st.Name, "emissions tied to undefined state %q", ss.TiedEmissions)
			}
			if resolving[i] {
				return formatErrorf(src, st.Name, "cyclic emission ties")
			}
			resolving[i] = true
			if err := resolve(j); err != nil {
				return err
			}
			st.emit = m.states[j].emit
			return nil
		}
		if len(ss.Emissions) == 0 {
			return formatErrorf(src, st.Name, "missing emissions")
		}
		row := make([]float64, width)
		hasWildcard := false
		var sum float64
		for sym, p := range ss.Emissions {
			if len(sym) != 1 {
				return formatErrorf(src, st.Name, "invalid emission symbol %q", sym)
			}
			if !finiteProb(p) {
				return formatErrorf(src, st.Name, "invalid emission probability %v for %q", p, sym)
			}
			c := upper(sym[0])
			if wildcard != 0 && c == wildcard {
				row[width-1] = p
				hasWildcard = true
				continue
			}
			k, known := m.alphabet.Index(c)
			if !known {
				return formatErrorf(src, st.Name, "emission symbol %q not in alphabet", sym)
			}
			row[k] = p
			sum += p
		}
		if math.Abs(sum-1) > tol {
			return formatErrorf(src, st.Name, "emissions sum to %g", sum)
		}
		if !hasWildcard {
			if wildcard != 0 {
				return formatErrorf(src, st.Name, "missing wildcard emission %q", string(wildcard))
			}
			row[width-1] = 1
		}
		st.emit = row
		return nil
	}

	for i := range m.states {
		if err := resolve(i); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) buildTransitions(ts []TransitionSpec, src string, tol float64) error {
	n := len(m.states)
	m.in = make([][]edge, n)
	m.out = make([][]edge, n)
	rowSum := make([]float64, n)
	seen := make(map[[2]int]struct{}, len(ts))
	for _, t := range ts {
		from, ok := m.byName[t.From]
		if !ok {
			return formatErrorf(src, "transitions", "undefined source state %q", t.From)
		}
		to, ok := m.byName[t.To]
		if !ok {
			return formatErrorf(src, t.From, "transition to undefined state %q", t.To)
		}
		if !finiteProb(t.Prob) {
			return formatErrorf(src, t.From, "invalid transition probability %v to %q", t.Prob, t.To)
		}
		key := [2]int{from, to}
		if _, dup := seen[key]; dup {
			return formatErrorf(src, t.From, "duplicate transition to %q", t.To)
		}
		seen[key] = struct{}{}
		rowSum[from] += t.Prob
		if t.Prob == 0 {
			continue
		}
		lp := math.Log(t.Prob)
		m.out[from] = append(m.out[from], edge{state: to, prob: t.Prob, logp: lp})
		m.in[to] = append(m.in[to], edge{state: from, prob: t.Prob, logp: lp})
	}
	for i, sum := range rowSum {
		if math.Abs(sum-1) > tol {
			return formatErrorf(src, m.states[i].Name, "transitions sum to %g", sum)
		}
	}
	for i := range m.in {
		sortEdges(m.in[i])
		sortEdges(m.out[i])
	}
	return nil
}

// checkReachable requires every state to be reachable from a state with a
// non-zero start probability.
func (m *Model) checkReachable(src string) error {
	seen := make([]bool, len(m.states))
	queue := make([]int, 0, len(m.states))
	for i, s := range m.states {
		if s.Start > 0 {
			seen[i] = true
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, e := range m.out[s] {
			if !seen[e.state] {
				seen[e.state] = true
				queue = append(queue, e.state)
			}
		}
	}
	for i, ok := range seen {
		if !ok {
			return formatErrorf(src, m.states[i].Name, "state is unreachable from the start distribution")
		}
	}
	return nil
}

func sortEdges(es []edge) {
	sort.Slice(es, func(a, b int) bool { return es[a].state < es[b].state })
}

func finiteProb(p float64) bool {
	return p >= 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

func safeLog(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}
