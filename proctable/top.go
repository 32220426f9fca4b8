package proctable

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"emperror.dev/errors"
	"golang.org/x/sys/unix"
)

const defaultTopBinary = "top"

type top struct {
	binary string
}

// NewTop returns a Source backed by a single batch iteration of top.
// An empty binary means "top" from PATH.
func NewTop(binary string) Source {
	if binary == "" {
		binary = defaultTopBinary
	}
	return &top{binary: binary}
}

// Snapshot runs `top -b -n 1 -u <username>` once and returns its stdout
func (t *top) Snapshot(ctx context.Context, username string) ([]byte, error) {
	args := []string{"-b", "-n", "1", "-u", username}
	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	// own process group: a terminal Ctrl+C reaches only us, the child is killed via ctx
	cmd.SysProcAttr = &unix.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Wrap(ctxErr, err.Error())
		}
		return nil, &QueryError{
			Command: t.binary + " " + strings.Join(args, " "),
			Output:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return stdout.Bytes(), nil
}
