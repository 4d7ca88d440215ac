package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "policy.yml")
	require.NoError(t, os.WriteFile(path, []byte("roles: []\n"), 0o600))

	docs := make(chan *Document, 4)
	w := NewWatcher(path, func(d *Document) error {
		docs <- d
		return nil
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Keep writing until the watcher is up and has seen the full file; a
	// write event can fire while the file is still truncated.
	var got *Document
	deadline := time.After(5 * time.Second)
	for got == nil || len(got.Roles) != 2 {
		require.NoError(t, os.WriteFile(path, []byte(editorPolicy), 0o600))
		select {
		case got = <-docs:
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("watcher never reported the policy change")
		}
	}
	assert.Equal(t, "Editor", got.Roles[0].Name)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope", "policy.yml"), func(*Document) error { return nil }, nil)
	assert.Error(t, w.Run(context.Background()))
}
