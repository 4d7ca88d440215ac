package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/dbperm/pkg/config"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

const testPolicy = `roles:
  - name: Editor
    default: Write
    databases:
      db1: Read
    fields:
      db1_users_email: None
  - name: Viewer
    default: Read
`

func setup(t *testing.T) string {
	t.Helper()
	cfg = config.Default()
	path := filepath.Join(t.TempDir(), "policy.yml")
	require.NoError(t, os.WriteFile(path, []byte(testPolicy), 0o600))
	return path
}

func TestRunResolve(t *testing.T) {
	path := setup(t)
	ctx := context.Background()

	tests := []struct {
		role, node, explain string
		want                string
	}{
		{"Editor", "db1_orders_amount", "", "Read"},
		{"Editor", "db2_products", "", "Write"},
		{"Nobody", "db1", "", "None"},
		{"Editor", "db1_users_email", "text", "None: override on field:db1_users_email"},
		{"Editor", "db1_users_id", "text", "Read: inherited from database:db1"},
		{"Viewer", "db2", "text", "Read: default of role Viewer"},
		{"Nobody", "db2", "text", "None: unknown role Nobody"},
	}
	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.node+"/"+tt.explain, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runResolve(ctx, &out, path, tt.role, tt.node, tt.explain))
			assert.Equal(t, tt.want, strings.TrimSpace(out.String()))
		})
	}

	var out bytes.Buffer
	require.NoError(t, runResolve(ctx, &out, path, "Editor", "db1_users", "json"))
	var res permission.Resolution
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, permission.LevelRead, res.Level)
	assert.True(t, res.Inherited)

	assert.Error(t, runResolve(ctx, &out, path, "Editor", "db3", ""))
}

func TestRunResolve_LegacyInheritance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yml")
	require.NoError(t, os.WriteFile(path, []byte(`roles:
  - name: Editor
    default: Write
    databases:
      db1: Write
    tables:
      db1_users: Read
`), 0o600))
	cfg = config.Default()
	cfg.Inheritance = "legacy"

	var out bytes.Buffer
	require.NoError(t, runResolve(context.Background(), &out, path, "Editor", "db1_users_id", "text"))
	assert.Equal(t, "Read: inherited from table:db1_users", strings.TrimSpace(out.String()))
}

func TestRunResolve_NoSource(t *testing.T) {
	setup(t)
	err := runResolve(context.Background(), &bytes.Buffer{}, "", "Editor", "db1", "")
	assert.ErrorContains(t, err, "no policy file given")
}

func TestRunMatrix(t *testing.T) {
	path := setup(t)

	var out bytes.Buffer
	require.NoError(t, runMatrix(context.Background(), &out, path, "Editor", "markdown"))
	assert.Contains(t, out.String(), "| **Database1** | database | `db1` | Read | override |")
	assert.Contains(t, out.String(), "| Database2 | database | `db2` | Write | default |")

	assert.Error(t, runMatrix(context.Background(), &out, path, "Nobody", "text"))
	assert.Error(t, runMatrix(context.Background(), &out, path, "Editor", "pdf"))
}

func TestValidatePolicy(t *testing.T) {
	path := setup(t)

	var out bytes.Buffer
	require.NoError(t, validatePolicy(&out, path))
	assert.Equal(t, path+": 2 roles OK\n", out.String())

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("roles:\n  - name: X\n    default: Read\n    tables:\n      db1_ghosts: None\n"), 0o600))
	assert.ErrorContains(t, validatePolicy(&out, bad), "missing from the catalog")
}

func TestShowConfiguration(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	require.NoError(t, showConfiguration(&out, cfg, "text"))
	assert.Contains(t, out.String(), "inheritance")

	out.Reset()
	require.NoError(t, showConfiguration(&out, cfg, "json"))
	assert.True(t, json.Valid(out.Bytes()))
}

func TestWaitForServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	assert.NoError(t, waitForServer(srv.URL, 3, time.Millisecond))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.ErrorContains(t, waitForServer(down.URL, 2, time.Millisecond), "not ready after 2 attempts")
}
