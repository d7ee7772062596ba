package hmm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseTMHMM reads the TMHMM text model format into a Spec.
//
// The format is a list of brace-delimited sections. "header" carries the
// alphabet, "begin" is the silent start state whose trans line is the start
// distribution, and every other section is an emitting state:
//
//	in10 {
//	  trans in11: 0.99 in29: 0.01;
//	  only A: 0.07 C: 0.02 ...;
//	  label i;
//	}
//
// tied_trans X takes the probabilities of state X's transitions, in order,
// for the destinations listed on the state's own trans line (or X's
// destinations when the line is absent). tied_letter X shares X's emissions.
// end and type are accepted and ignored.
func ParseTMHMM(r io.Reader) (Spec, error) {
	toks, err := tokenizeTMHMM(r)
	if err != nil {
		return Spec{}, err
	}
	p := &tmhmmParser{toks: toks}
	return p.parse()
}

type tmhmmToken struct {
	text string
	line int
}

func tokenizeTMHMM(r io.Reader) ([]tmhmmToken, error) {
	var toks []tmhmmToken
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		s := sc.Text()
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		start := -1
		flush := func(end int) {
			if start >= 0 {
				toks = append(toks, tmhmmToken{text: s[start:end], line: line})
				start = -1
			}
		}
		for i := 0; i < len(s); i++ {
			switch c := s[i]; c {
			case '{', '}', ';', ':':
				flush(i)
				toks = append(toks, tmhmmToken{text: string(c), line: line})
			case ' ', '\t', '\r', '\v', '\f':
				flush(i)
			default:
				if start < 0 {
					start = i
				}
			}
		}
		flush(len(s))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return toks, nil
}

type tmhmmSection struct {
	name       string
	line       int
	trans      []string
	transProb  []float64 // nil when trans lists names only
	only       map[string]float64
	label      string
	tiedTrans  string
	tiedLetter string
	silent     bool
}

type tmhmmParser struct {
	toks []tmhmmToken
	pos  int
}

func (p *tmhmmParser) errorf(format string, args ...any) error {
	line := 0
	if p.pos < len(p.toks) {
		line = p.toks[p.pos].line
	} else if len(p.toks) > 0 {
		line = p.toks[len(p.toks)-1].line
	}
	return &ModelFormatError{Where: fmt.Sprintf("line %d", line), Reason: fmt.Sprintf(format, args...)}
}

func (p *tmhmmParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos].text
}

func (p *tmhmmParser) next() (string, error) {
	if p.pos >= len(p.toks) {
		return "", p.errorf("unexpected end of model")
	}
	t := p.toks[p.pos].text
	p.pos++
	return t, nil
}

func (p *tmhmmParser) expect(want string) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t != want {
		p.pos--
		return p.errorf("expected %q, got %q", want, t)
	}
	return nil
}

// word reads a single value terminated by ';'.
func (p *tmhmmParser) word() (string, error) {
	t, err := p.next()
	if err != nil {
		return "", err
	}
	if isPunct(t) {
		p.pos--
		return "", p.errorf("expected a value, got %q", t)
	}
	return t, p.expect(";")
}

func (p *tmhmmParser) number(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.pos--
		return 0, p.errorf("invalid number %q", s)
	}
	return v, nil
}

func (p *tmhmmParser) parse() (Spec, error) {
	var (
		spec     Spec
		sections []*tmhmmSection
		begin    *tmhmmSection
		sawHead  bool
	)
	for p.pos < len(p.toks) {
		name, _ := p.next()
		if isPunct(name) {
			p.pos--
			return spec, p.errorf("expected a section name, got %q", name)
		}
		line := p.toks[p.pos-1].line
		if err := p.expect("{"); err != nil {
			return spec, err
		}
		if name == "header" {
			alpha, err := p.header()
			if err != nil {
				return spec, err
			}
			spec.Alphabet = alpha
			sawHead = true
			continue
		}
		sec, err := p.state(name)
		if err != nil {
			return spec, err
		}
		sec.line = line
		if name == "begin" {
			begin = sec
			continue
		}
		sections = append(sections, sec)
	}
	if !sawHead {
		return spec, &ModelFormatError{Where: "header", Reason: "missing header section"}
	}
	if begin == nil {
		return spec, &ModelFormatError{Where: "begin", Reason: "missing begin section (start distribution)"}
	}
	if len(sections) == 0 {
		return spec, &ModelFormatError{Where: "states", Reason: "missing states"}
	}

	byName := make(map[string]*tmhmmSection, len(sections))
	for _, s := range sections {
		if _, dup := byName[s.name]; dup {
			return spec, &ModelFormatError{Where: s.name, Reason: "duplicate state"}
		}
		byName[s.name] = s
	}

	start := map[string]float64{}
	if begin.tiedTrans != "" || begin.transProb == nil {
		return spec, &ModelFormatError{Where: "begin", Reason: "start distribution needs explicit probabilities"}
	}
	for i, dst := range begin.trans {
		if _, ok := byName[dst]; !ok {
			return spec, &ModelFormatError{Where: "begin", Reason: fmt.Sprintf("start references undefined state %q", dst)}
		}
		start[dst] += begin.transProb[i]
	}

	for _, s := range sections {
		if s.silent {
			return spec, &ModelFormatError{Where: s.name, Reason: "silent states other than begin are not supported"}
		}
		ss := StateSpec{Name: s.name, Label: s.label, Start: start[s.name]}
		switch {
		case s.tiedLetter != "":
			ss.TiedEmissions = s.tiedLetter
		case s.only != nil:
			ss.Emissions = s.only
		}
		spec.States = append(spec.States, ss)

		dsts, probs, err := resolveTMHMMTrans(s, byName, map[string]bool{})
		if err != nil {
			return spec, err
		}
		for i, d := range dsts {
			spec.Transitions = append(spec.Transitions, TransitionSpec{From: s.name, To: d, Prob: probs[i]})
		}
	}
	return spec, nil
}

func resolveTMHMMTrans(s *tmhmmSection, byName map[string]*tmhmmSection, visiting map[string]bool) ([]string, []float64, error) {
	if s.tiedTrans == "" {
		if s.trans != nil && s.transProb == nil {
			return nil, nil, &ModelFormatError{Where: s.name, Reason: "transition probabilities missing and no tied_trans"}
		}
		return s.trans, s.transProb, nil
	}
	if visiting[s.name] {
		return nil, nil, &ModelFormatError{Where: s.name, Reason: "cyclic tied_trans"}
	}
	visiting[s.name] = true
	parent, ok := byName[s.tiedTrans]
	if !ok {
		return nil, nil, &ModelFormatError{Where: s.name, Reason: fmt.Sprintf("tied_trans references undefined state %q", s.tiedTrans)}
	}
	pdst, pprob, err := resolveTMHMMTrans(parent, byName, visiting)
	if err != nil {
		return nil, nil, err
	}
	if s.trans == nil {
		return pdst, pprob, nil
	}
	if s.transProb != nil {
		return s.trans, s.transProb, nil
	}
	if len(s.trans) != len(pprob) {
		return nil, nil, &ModelFormatError{Where: s.name, Reason: fmt.Sprintf("tied_trans %q has %d transitions, state lists %d", s.tiedTrans, len(pprob), len(s.trans))}
	}
	return s.trans, pprob, nil
}

func (p *tmhmmParser) header() (string, error) {
	var alphabet string
	for {
		key, err := p.next()
		if err != nil {
			return "", err
		}
		if key == "}" {
			return alphabet, nil
		}
		if key == "alphabet" {
			if alphabet, err = p.word(); err != nil {
				return "", err
			}
			continue
		}
		// Other header entries are informational.
		for {
			t, err := p.next()
			if err != nil {
				return "", err
			}
			if t == ";" {
				break
			}
		}
	}
}

func (p *tmhmmParser) state(name string) (*tmhmmSection, error) {
	sec := &tmhmmSection{name: name}
	for {
		key, err := p.next()
		if err != nil {
			return nil, err
		}
		switch key {
		case "}":
			return sec, nil
		case "trans":
			if sec.trans, sec.transProb, err = p.transList(); err != nil {
				return nil, err
			}
		case "only":
			if sec.only, err = p.emissionMap(); err != nil {
				return nil, err
			}
		case "label":
			if sec.label, err = p.word(); err != nil {
				return nil, err
			}
		case "tied_trans":
			if sec.tiedTrans, err = p.word(); err != nil {
				return nil, err
			}
		case "tied_letter":
			if sec.tiedLetter, err = p.word(); err != nil {
				return nil, err
			}
		case "letter":
			v, err := p.word()
			if err != nil {
				return nil, err
			}
			sec.silent = strings.EqualFold(v, "NULL")
		case "end", "type":
			if _, err := p.word(); err != nil {
				return nil, err
			}
		default:
			p.pos--
			return nil, p.errorf("unknown key %q in state %q", key, name)
		}
	}
}

// transList reads "a: 0.5 b: 0.5;" or the names-only form "a b;".
func (p *tmhmmParser) transList() ([]string, []float64, error) {
	var (
		names []string
		probs []float64
	)
	withProb := -1
	for {
		t, err := p.next()
		if err != nil {
			return nil, nil, err
		}
		if t == ";" {
			break
		}
		if isPunct(t) {
			p.pos--
			return nil, nil, p.errorf("unexpected %q in trans", t)
		}
		has := p.peek() == ":"
		if withProb < 0 {
			withProb = btoi(has)
		} else if withProb != btoi(has) {
			return nil, nil, p.errorf("trans mixes weighted and unweighted entries")
		}
		names = append(names, t)
		if has {
			p.pos++
			v, err := p.next()
			if err != nil {
				return nil, nil, err
			}
			f, err := p.number(v)
			if err != nil {
				return nil, nil, err
			}
			probs = append(probs, f)
		}
	}
	if names == nil {
		names = []string{}
	}
	return names, probs, nil
}

func (p *tmhmmParser) emissionMap() (map[string]float64, error) {
	out := map[string]float64{}
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t == ";" {
			return out, nil
		}
		if isPunct(t) {
			p.pos--
			return nil, p.errorf("unexpected %q in only", t)
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		v, err := p.next()
		if err != nil {
			return nil, err
		}
		f, err := p.number(v)
		if err != nil {
			return nil, err
		}
		out[t] = f
	}
}

func isPunct(t string) bool {
	return t == "{" || t == "}" || t == ";" || t == ":"
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
