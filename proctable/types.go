package proctable

import (
	"context"

	"emperror.dev/errors"
)

// Column layout of `top -b` task rows:
// PID USER PR NI VIRT RES SHR S %CPU %MEM TIME+ COMMAND
const (
	colPID     = 0
	colUser    = 1
	colCPU     = 8
	colMem     = 9
	colCommand = 11

	// MinColumns is the smallest field count a task row can have.
	MinColumns = colCommand + 1
)

var (
	ErrShortRow     = errors.NewPlain("row has fewer columns than a task row")
	ErrMalformedRow = errors.NewPlain("row columns do not hold task values")
)

type (
	// Source returns a point-in-time listing of the processes owned by username.
	Source interface {
		Snapshot(ctx context.Context, username string) ([]byte, error)
	}

	// Row is one task line of the listing.
	Row struct {
		PID     string  `json:"pid"`
		User    string  `json:"user"`
		CPU     float64 `json:"cpu"`
		Mem     float64 `json:"mem"`
		Command string  `json:"command"`
	}
)

// QueryError means the listing itself could not be produced, as opposed to a
// listing with no matching rows.
type QueryError struct {
	Command string
	Output  string
	Err     error
}

func (e *QueryError) Error() string {
	msg := e.Command + ": " + e.Err.Error()
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *QueryError) Unwrap() error { return e.Err }

// Timeout reports whether the query was cut short by its deadline.
func (e *QueryError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
