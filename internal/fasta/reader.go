// Package fasta reads protein sequences in FASTA format.
package fasta

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one FASTA entry. ID is the header up to the first whitespace,
// Description is the remainder (possibly empty).
type Record struct {
	ID          string
	Description string
	Seq         string
}

// Header renders the record's header line without the leading '>'.
func (r Record) Header() string {
	if r.Description == "" {
		return r.ID
	}
	return r.ID + " " + r.Description
}

// ErrDuplicateID is returned when two records share an ID.
var ErrDuplicateID = errors.New("duplicate record id")

// Reader yields records one at a time. Lines starting with '#' are skipped.
type Reader struct {
	br      *bufio.Reader
	line    int
	pending string // header read ahead of the current record
	hasNext bool
	seen    map[string]struct{}
	done    bool
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64<<10), seen: make(map[string]struct{})}
}

// Next returns the next record, or io.EOF when the input is exhausted.
func (r *Reader) Next() (Record, error) {
	if r.done && !r.hasNext {
		return Record{}, io.EOF
	}
	var (
		rec   Record
		have  = r.hasNext
		parts []string
	)
	if have {
		rec = splitHeader(r.pending)
		r.hasNext = false
	}
	for !r.done {
		raw, err := r.br.ReadString('\n')
		if err != nil && err != io.EOF {
			return Record{}, err
		}
		if err == io.EOF {
			r.done = true
			if raw == "" {
				break
			}
		}
		r.line++
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, ">"):
			if have {
				r.pending, r.hasNext = line[1:], true
				return r.finish(rec, parts)
			}
			rec, have = splitHeader(line[1:]), true
		case line == "":
			continue
		default:
			if !have {
				return Record{}, fmt.Errorf("fasta: line %d: sequence data before first header", r.line)
			}
			parts = append(parts, line)
		}
	}
	if !have {
		return Record{}, io.EOF
	}
	return r.finish(rec, parts)
}

func (r *Reader) finish(rec Record, parts []string) (Record, error) {
	if rec.ID == "" {
		return Record{}, fmt.Errorf("fasta: line %d: empty header", r.line)
	}
	if _, dup := r.seen[rec.ID]; dup {
		return Record{}, fmt.Errorf("fasta: %w %q", ErrDuplicateID, rec.ID)
	}
	r.seen[rec.ID] = struct{}{}
	rec.Seq = strings.Join(parts, "")
	return rec, nil
}

func splitHeader(h string) Record {
	h = strings.TrimSpace(h)
	i := strings.IndexAny(h, " \t")
	if i < 0 {
		return Record{ID: h}
	}
	return Record{ID: h[:i], Description: strings.TrimSpace(h[i+1:])}
}

// ReadAll drains r.
func ReadAll(r io.Reader) ([]Record, error) {
	fr := NewReader(r)
	var out []Record
	for {
		rec, err := fr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// ReadFile loads every record of path. See Open for path conventions.
func ReadFile(path string) ([]Record, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadAll(rc)
}

// Open opens path for reading. "-" is stdin and a ".gz" suffix is
// decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}
