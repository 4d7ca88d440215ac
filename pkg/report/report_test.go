package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/catalog"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

func viewerReport(t *testing.T) Report {
	t.Helper()
	ctx := context.Background()
	svc := authz.NewService(catalog.Sample())
	require.NoError(t, svc.CreateRole(ctx, "Viewer", permission.LevelRead))
	_, err := svc.SetOverride(ctx, "Viewer", "db1_users", permission.LevelNone)
	require.NoError(t, err)

	role, err := svc.Role("Viewer")
	require.NoError(t, err)
	entries, err := svc.Matrix(ctx, "Viewer")
	require.NoError(t, err)
	return Report{Role: role, Entries: entries}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, viewerReport(t).Render(&buf, FormatText))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Role: Viewer (default Read)", lines[0])
	assert.Len(t, lines, 2+15)
	assert.Regexp(t, `^  UserTable\s+db1_users\s+None\s+override$`, lines[3])
	assert.Regexp(t, `^    Email\s+db1_users_email\s+None\s+inherited from db1_users$`, lines[6])
	assert.Regexp(t, `^Database2\s+db2\s+Read\s+default$`, lines[12])
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, viewerReport(t).Render(&buf, FormatMarkdown))

	out := buf.String()
	assert.Contains(t, out, "## Viewer\n")
	assert.Contains(t, out, "| &nbsp;&nbsp;**UserTable** | table | `db1_users` | None | override |")
	assert.Contains(t, out, "| Database1 | database | `db1` | Read | default |")
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, viewerReport(t).Render(&buf, FormatHTML))

	out := buf.String()
	assert.Contains(t, out, "<h2>Viewer</h2>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<strong>UserTable</strong>")
	assert.Contains(t, out, "<code>db1_users_email</code>")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"TEXT", FormatText},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"html", FormatHTML},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
	assert.Equal(t, "text/html; charset=utf-8", FormatHTML.ContentType())
}
