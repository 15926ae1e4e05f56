package termsize

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Metrics knows the current terminal geometry.
//
// Size re-queries the terminal on every call, the window can be resized at
// any moment so values are never cached.
type Metrics interface {
	Size() (columns, rows int, err error)
}

// NewStdout returns Metrics measuring the terminal attached to stdout.
func NewStdout() Metrics { return stdoutMetrics{} }

type stdoutMetrics struct{}

func (stdoutMetrics) Size() (int, int, error) {
	columns, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("could not get terminal size: %w", err)
	}
	return columns, rows, nil
}

// Fixed returns Metrics that always report the same geometry. Useful for
// tests and non-interactive output.
func Fixed(columns, rows int) Metrics { return fixedMetrics{columns: columns, rows: rows} }

type fixedMetrics struct {
	columns int
	rows    int
}

func (f fixedMetrics) Size() (int, int, error) { return f.columns, f.rows, nil }
