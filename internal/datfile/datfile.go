// Package datfile names and parses the tab-separated checkpoint files.
//
// Every data line is tab-separated. A '#' starts a comment that runs to the
// end of the line; blank and comment-only lines carry no data.
package datfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMalformed is returned for a data line that does not parse.
var ErrMalformed = errors.New("datfile: malformed line")

// Kind identifies one of the three files written per checkpoint.
type Kind string

const (
	KindSim    Kind = "sim"    // observed histogram
	KindBinom  Kind = "binom"  // binomial expectation and error bound
	KindNormal Kind = "normal" // scaled normal density curve
)

// Kinds lists every checkpoint file kind in write order.
func Kinds() []Kind { return []Kind{KindSim, KindBinom, KindNormal} }

// Name returns the file name for kind at (height, trials), e.g. sim_h5_b10.dat.
func Name(kind Kind, height int, trials int64) string {
	return fmt.Sprintf("%s_h%d_b%d.dat", kind, height, trials)
}

// Path joins dir and Name(kind, height, trials).
func Path(dir string, kind Kind, height int, trials int64) string {
	return filepath.Join(dir, Name(kind, height, trials))
}

// SimRow is one line of a sim file.
type SimRow struct {
	Row   int
	Count int64
}

// BinomRow is one line of a binom file.
type BinomRow struct {
	K         int
	Expected  float64
	Bound     float64
	Deviation float64
}

// BinomFile is a parsed binom file.
type BinomFile struct {
	Rows []BinomRow
	// Summary maps the text before ':' of each summary comment to its value,
	// e.g. "maximum deviation simulation/binomial over all k".
	Summary map[string]float64
}

// Point is one line of a normal file.
type Point struct {
	X, Y float64
}

// ReadSim parses a sim file.
func ReadSim(path string) ([]SimRow, error) {
	var rows []SimRow
	err := scan(path, func(fields []string, _ string) error {
		if len(fields) != 2 {
			return fmt.Errorf("want 2 fields, got %d", len(fields))
		}
		row, err := strconv.Atoi(fields[0])
		if err != nil {
			return err
		}
		count, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return err
		}
		rows = append(rows, SimRow{Row: row, Count: count})
		return nil
	}, nil)
	return rows, err
}

// ReadNormal parses a normal file.
func ReadNormal(path string) ([]Point, error) {
	var pts []Point
	err := scan(path, func(fields []string, _ string) error {
		if len(fields) != 2 {
			return fmt.Errorf("want 2 fields, got %d", len(fields))
		}
		v, err := parseFloats(fields)
		if err != nil {
			return err
		}
		pts = append(pts, Point{X: v[0], Y: v[1]})
		return nil
	}, nil)
	return pts, err
}

// ReadBinom parses a binom file, including its summary comments.
func ReadBinom(path string) (*BinomFile, error) {
	bf := &BinomFile{Summary: make(map[string]float64)}
	err := scan(path, func(fields []string, comment string) error {
		if len(fields) != 3 {
			return fmt.Errorf("want 3 fields, got %d", len(fields))
		}
		k, err := strconv.Atoi(fields[0])
		if err != nil {
			return err
		}
		v, err := parseFloats(fields[1:])
		if err != nil {
			return err
		}
		row := BinomRow{K: k, Expected: v[0], Bound: v[1]}
		if _, val, ok := splitComment(comment); ok {
			row.Deviation = val
		}
		bf.Rows = append(bf.Rows, row)
		return nil
	}, func(comment string) {
		if key, val, ok := splitComment(comment); ok {
			bf.Summary[key] = val
		}
	})
	if err != nil {
		return nil, err
	}
	return bf, nil
}

// scan calls data for every line carrying data, with the line's trailing
// comment, and onComment (if non-nil) for every comment-only line.
func scan(path string, data func(fields []string, comment string) error, onComment func(string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return scanReader(f, filepath.Base(path), data, onComment)
}

func scanReader(r io.Reader, name string, data func([]string, string) error, onComment func(string)) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		body, comment, _ := strings.Cut(line, "#")
		body = strings.TrimSpace(body)
		comment = strings.TrimSpace(comment)
		if body == "" {
			if comment != "" && onComment != nil {
				onComment(comment)
			}
			continue
		}
		fields := strings.Split(strings.TrimRight(body, "\t"), "\t")
		if err := data(fields, comment); err != nil {
			return fmt.Errorf("%s:%d: %w: %v", name, lineNo, ErrMalformed, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

// splitComment splits "label: value" and parses value.
func splitComment(comment string) (string, float64, bool) {
	key, val, ok := strings.Cut(comment, ":")
	if !ok {
		return "", 0, false
	}
	v, err := parseFloat(strings.TrimSpace(val))
	if err != nil {
		return "", 0, false
	}
	return strings.TrimSpace(key), v, true
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := parseFloat(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseFloat accepts Go's float syntax plus the "nan" and "inf" spellings
// the reporter writes.
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
