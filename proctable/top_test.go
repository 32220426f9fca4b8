package proctable_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/l3lackShark/procmon/proctable"
)

func fakeTop(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "top")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestTopSnapshot(t *testing.T) {
	bin := fakeTop(t, `echo "args: $*"; echo "lc: $LC_ALL"`)

	out, err := proctable.NewTop(bin).Snapshot(context.Background(), "alice")
	require.NoError(t, err)
	assert.Contains(t, string(out), "args: -b -n 1 -u alice")
	assert.Contains(t, string(out), "lc: C")
}

func TestTopSnapshotRunsInOwnProcessGroup(t *testing.T) {
	if _, err := os.Stat("/proc/self/stat"); err != nil {
		t.Skip("no /proc")
	}
	// pid (comm) state ppid pgrp ...
	bin := fakeTop(t, `read -r pid comm state ppid pgrp rest < /proc/$$/stat; echo "$pid $pgrp"`)

	out, err := proctable.NewTop(bin).Snapshot(context.Background(), "alice")
	require.NoError(t, err)

	fields := strings.Fields(string(out))
	require.Len(t, fields, 2)
	assert.Equal(t, fields[0], fields[1], "child leads its own group")
	assert.NotEqual(t, strconv.Itoa(unix.Getpgrp()), fields[1])
}

func TestTopSnapshotFailure(t *testing.T) {
	bin := fakeTop(t, `echo "top: Invalid user" >&2; exit 1`)

	_, err := proctable.NewTop(bin).Snapshot(context.Background(), "nobody-here")
	require.Error(t, err)

	var qerr *proctable.QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "top: Invalid user", qerr.Output)
	assert.False(t, qerr.Timeout())
}

func TestTopSnapshotMissingBinary(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := proctable.NewTop(bin).Snapshot(context.Background(), "alice")

	var qerr *proctable.QueryError
	require.True(t, errors.As(err, &qerr))
}

func TestTopSnapshotTimeout(t *testing.T) {
	bin := fakeTop(t, `exec sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := proctable.NewTop(bin).Snapshot(ctx, "alice")

	var qerr *proctable.QueryError
	require.True(t, errors.As(err, &qerr))
	assert.True(t, qerr.Timeout())
}
