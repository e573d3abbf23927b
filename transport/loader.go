package transport

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// maxLineSize bounds a single line of an instance file.
var maxLineSize = 16 * 1024 * 1024

// Load reads the instance stored at path and balances it.
func Load(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	in, err := Parse(f)
	if err != nil {
		if _, ok := err.(*ParseError); ok {
			return nil, err
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	return Balance(in), nil
}

// Parse reads an instance in the flat text format:
//
//	n_sources n_destinations
//	supply_1 ... supply_n_sources
//	demand_1 ... demand_n_destinations
//	cost row for each source (n_destinations integers)
//
// Tokens are separated by any whitespace. Lines after the last cost row are
// ignored. The returned instance is not balanced.
//
// Parse returns a *ParseError for malformed content and the reader's error
// for anything else.
func Parse(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, maxLineSize)), maxLineSize)

	line := 0
	next := func(what string, want int) ([]int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				if errors.Is(err, bufio.ErrTooLong) {
					return nil, &ParseError{Line: line + 1, Msg: what + ": line longer than " + strconv.Itoa(maxLineSize) + " bytes"}
				}
				return nil, err
			}
			return nil, &ParseError{Line: line + 1, Msg: "missing " + what}
		}
		line++
		return parseInts(line, what, sc.Text(), want)
	}

	dims, err := next("dimensions", 2)
	if err != nil {
		return nil, err
	}
	nSources, nDestinations := dims[0], dims[1]
	if nSources <= 0 || nDestinations <= 0 {
		return nil, &ParseError{Line: 1, Msg: "source and destination counts must be positive"}
	}

	supplies, err := next("supplies", nSources)
	if err != nil {
		return nil, err
	}
	demands, err := next("demands", nDestinations)
	if err != nil {
		return nil, err
	}

	costs := make([][]int, nSources)
	for i := range costs {
		costs[i], err = next("cost row "+strconv.Itoa(i+1), nDestinations)
		if err != nil {
			return nil, err
		}
	}

	in := &Instance{Supplies: supplies, Demands: demands, Costs: costs}
	if err := checkAmounts(2, "supply", supplies); err != nil {
		return nil, err
	}
	if err := checkAmounts(3, "demand", demands); err != nil {
		return nil, err
	}
	return in, nil
}

// checkAmounts rejects negative amounts and totals that do not fit in an int.
func checkAmounts(line int, what string, amounts []int) error {
	total := 0
	for k, a := range amounts {
		if a < 0 {
			return &ParseError{Line: line, Msg: what + " " + strconv.Itoa(k+1) + " is negative"}
		}
		if a > math.MaxInt-total {
			return &ParseError{Line: line, Msg: "total " + what + " overflows"}
		}
		total += a
	}
	return nil
}

func parseInts(line int, what, text string, want int) ([]int, error) {
	fields := strings.Fields(text)
	if len(fields) != want {
		return nil, &ParseError{
			Line: line,
			Msg:  what + ": got " + strconv.Itoa(len(fields)) + " values, want " + strconv.Itoa(want),
		}
	}
	out := make([]int, want)
	for k, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, &ParseError{Line: line, Msg: what + ": " + strconv.Quote(f) + " is not an integer"}
		}
		out[k] = v
	}
	return out, nil
}
