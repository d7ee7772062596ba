// Package output renders predictions as TMHMM-style result files or as
// JSON lines.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"topohmm/internal/fasta"
	"topohmm/internal/hmm"
)

// annotationWidth is the column at which annotation paths wrap.
const annotationWidth = 79

// posteriorHeader heads every posterior (.plot) file.
const posteriorHeader = "inside membrane outside"

// WriteSummary writes one "start end name" line per segment, 0-based and
// inclusive.
func WriteSummary(w io.Writer, segs []hmm.Segment) error {
	bw := bufio.NewWriter(w)
	for _, s := range segs {
		fmt.Fprintf(bw, "%d %d %s\n", s.Start, s.End, s.Label.PrettyName())
	}
	return bw.Flush()
}

// WriteAnnotation writes a FASTA-like record with the label path in place of
// the residues.
func WriteAnnotation(w io.Writer, rec fasta.Record, path hmm.Path) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, ">%s %s\n", rec.ID, rec.Description)
	s := path.String()
	for len(s) > annotationWidth {
		bw.WriteString(s[:annotationWidth])
		bw.WriteByte('\n')
		s = s[annotationWidth:]
	}
	if s != "" {
		bw.WriteString(s)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WritePosterior writes the header line and one "inside membrane outside"
// row per residue.
func WritePosterior(w io.Writer, p *hmm.Posterior) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(posteriorHeader)
	bw.WriteByte('\n')
	var buf []byte
	for i := 0; i < p.Rows(); i++ {
		buf = buf[:0]
		for c := hmm.Class(0); c < hmm.NumClasses; c++ {
			if c > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, p.At(i, c), 'g', -1, 64)
		}
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	return bw.Flush()
}

// ReadPosterior loads a file written by WritePosterior into an N×3 matrix.
func ReadPosterior(r io.Reader) (*mat.Dense, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("posterior: missing header")
	}
	if strings.Join(strings.Fields(sc.Text()), " ") != posteriorHeader {
		return nil, fmt.Errorf("posterior: unexpected header %q", sc.Text())
	}
	var data []float64
	line := 1
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != int(hmm.NumClasses) {
			return nil, fmt.Errorf("posterior: line %d: want %d columns, got %d", line, hmm.NumClasses, len(fields))
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("posterior: line %d: %w", line, err)
			}
			data = append(data, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("posterior: no rows")
	}
	return mat.NewDense(len(data)/int(hmm.NumClasses), int(hmm.NumClasses), data), nil
}

// WriteFiles writes <id>.summary, <id>.annotation and, when the prediction
// carries a posterior, <id>.plot into dir. It returns the paths written.
func WriteFiles(dir string, rec fasta.Record, p hmm.Prediction) ([]string, error) {
	base := filepath.Join(dir, FileStem(rec.ID))
	var written []string
	write := func(ext string, fn func(io.Writer) error) error {
		name := base + ext
		fh, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := fn(fh); err != nil {
			fh.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
		if err := fh.Close(); err != nil {
			return err
		}
		written = append(written, name)
		return nil
	}
	if err := write(".summary", func(w io.Writer) error { return WriteSummary(w, p.Segments) }); err != nil {
		return written, err
	}
	if err := write(".annotation", func(w io.Writer) error { return WriteAnnotation(w, rec, p.Path) }); err != nil {
		return written, err
	}
	if p.Posterior != nil {
		if err := write(".plot", func(w io.Writer) error { return WritePosterior(w, p.Posterior) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

// FileStem turns a record ID into a file name. IDs such as
// "sp|B9DFX7|HMA8_ARATH" are kept; path separators are replaced.
func FileStem(id string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")
	s := r.Replace(id)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}
