package piclut

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LutTable is a parsed 3D lookup lattice of dimension Size per axis.
//
// Entries is flat, Size^3 RGB triplets in .cube file order: red varies
// fastest, blue slowest. Values are stored exactly as parsed; the format
// nominally uses [0,1] but out-of-range values are preserved and propagate
// through sampling. A LutTable is immutable after construction and safe for
// concurrent reads.
type LutTable struct {
	Size    int
	Title   string
	Entries []float32 // len == Size*Size*Size*3
}

// ParseCubeFile parses a .cube format 3D LUT from a file.
func ParseCubeFile(path string) (*LutTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lut, err := ParseCube(f)
	if err != nil {
		// Attach the path to the structured parse errors.
		switch e := err.(type) {
		case *EncodingError:
			e.Path = path
		case *MissingSizeError:
			e.Path = path
		case *SizeMismatchError:
			e.Path = path
		}
		return nil, err
	}
	return lut, nil
}

// ParseCube parses the .cube format from a reader.
//
// Lines starting with '#' are comments. A line is a data row when its first
// character is a digit or '-'; every data row contributes exactly three
// floating point values. Directive lines (LUT_3D_SIZE, TITLE, DOMAIN_MIN,
// DOMAIN_MAX, ...) start with a letter; only LUT_3D_SIZE and TITLE are
// interpreted, the rest are skipped.
func ParseCube(r io.Reader) (*LutTable, error) {
	var (
		size    int
		title   string
		entries []float32
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if !utf8.ValidString(line) {
			return nil, &EncodingError{Line: lineNo}
		}
		if line == "" || line[0] == '#' {
			continue
		}

		if c := line[0]; c >= '0' && c <= '9' || c == '-' {
			fields := strings.Fields(line)
			if len(fields) != 3 {
				return nil, fmt.Errorf("cube: line %d: data row has %d fields, want 3", lineNo, len(fields))
			}
			for _, f := range fields {
				v, err := strconv.ParseFloat(f, 32)
				if err != nil {
					return nil, fmt.Errorf("cube: line %d: bad numeric value %q", lineNo, f)
				}
				entries = append(entries, float32(v))
			}
			continue
		}

		switch fields := strings.Fields(line); fields[0] {
		case "LUT_3D_SIZE":
			if len(fields) >= 2 {
				n, err := strconv.Atoi(fields[len(fields)-1])
				if err != nil {
					return nil, &MissingSizeError{}
				}
				size = n
			}
		case "TITLE":
			title = strings.Trim(strings.TrimPrefix(line, "TITLE"), " \t\"")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if size < 2 {
		return nil, &MissingSizeError{}
	}
	want := size * size * size * 3
	if len(entries) != want {
		return nil, &SizeMismatchError{Size: size, Want: want, Got: len(entries)}
	}

	return &LutTable{Size: size, Title: title, Entries: entries}, nil
}

// IdentityLut builds an identity lattice of the given size, mainly useful
// for baselines and tests.
func IdentityLut(size int) *LutTable {
	entries := make([]float32, 0, size*size*size*3)
	scale := 1.0 / float32(size-1)
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				entries = append(entries,
					float32(r)*scale, float32(g)*scale, float32(b)*scale)
			}
		}
	}
	return &LutTable{Size: size, Entries: entries}
}
