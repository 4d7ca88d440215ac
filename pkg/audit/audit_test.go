package audit

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := NewLogger()
	l.SetWriter(buf)
	l.hostname = "host1"
	l.pid = 42
	l.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Log(context.Background(), CheckEvent{
		Subject:   "alice",
		Role:      "Editor",
		NodeID:    "db1_users",
		Privilege: "Write",
		Effective: "Read",
		Allowed:   false,
	})

	want := `<86>1 2025-03-01T12:00:00.000Z host1 dbperm 42 check ` +
		`[action@32473 operation="check" result="failure"]` +
		`[auth@32473 user="alice"]` +
		`[subject@32473 effective="Read" node="db1_users" privilege="Write" role="Editor"] ` +
		"alice checked Write privilege of Editor on db1_users: denied\n"
	assert.Equal(t, want, buf.String())
}

func TestLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	logger.SetEnabled(false)
	assert.False(t, logger.Enabled())

	logger.Log(context.Background(), RoleEvent{Subject: "alice", Role: "Editor", Operation: "create", Success: true})
	assert.Empty(t, buf.String())

	logger.SetEnabled(true)
	logger.Log(context.Background(), RoleEvent{Subject: "alice", Role: "Editor", Operation: "create", Success: true})
	assert.NotEmpty(t, buf.String())
}

func TestLoggerNil(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Log(context.Background(), PolicyEvent{})
	})
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled())
}

type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Save(_ context.Context, e Event) error {
	s.events = append(s.events, e)
	return s.err
}

func TestLoggerSink(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	sink := &recordingSink{}
	logger.SetSink(sink)

	logger.Log(context.Background(), DefaultEvent{Subject: "alice", Role: "Viewer", Previous: "Read", Level: "None", Success: true})
	require.Len(t, sink.events, 1)
	assert.Equal(t, "default", sink.events[0].MessageID())

	sink.err = errors.New("db down")
	logger.Log(context.Background(), DefaultEvent{Subject: "alice", Role: "Viewer", Success: true})
	assert.Len(t, sink.events, 2)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestRoleEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   RoleEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name:    "create",
			event:   RoleEvent{Subject: "alice", Role: "Editor", Operation: "create", Default: "Write", Success: true},
			wantMsg: "alice created role Editor with default Write",
			wantSev: SeverityNotice,
		},
		{
			name:    "delete",
			event:   RoleEvent{Subject: "alice", Role: "Editor", Operation: "delete", Success: true},
			wantMsg: "alice deleted role Editor",
			wantSev: SeverityNotice,
		},
		{
			name:    "failure",
			event:   RoleEvent{Subject: "alice", Role: "Editor", Operation: "create", ErrorMessage: "role already exists"},
			wantMsg: "alice failed to create role Editor: role already exists",
			wantSev: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.event.Message())
			assert.Equal(t, tt.wantSev, tt.event.Severity())
			assert.Equal(t, "role", tt.event.MessageID())
			assert.Equal(t, FacilityAuth, tt.event.Facility())
		})
	}
}

func TestOverrideEvent(t *testing.T) {
	set := OverrideEvent{
		Subject:  "alice",
		Role:     "Editor",
		NodeKind: "table",
		NodeID:   "db1_users",
		Level:    "Read",
		Removed:  []string{"db1_users_email", "db1_users_id"},
		Success:  true,
	}
	assert.Equal(t, "alice set Editor on table db1_users to Read (removed 2 redundant overrides)", set.Message())
	sd := set.StructuredData()
	assert.Equal(t, "set", sd[SDIDAction]["operation"])
	assert.Equal(t, "db1_users_email,db1_users_id", sd[SDIDAction]["removed"])
	assert.Equal(t, "Read", sd[SDIDSubject]["level"])

	cleared := OverrideEvent{Subject: "alice", Role: "Editor", NodeKind: "field", NodeID: "db1_users_email", Success: true}
	assert.Equal(t, "alice cleared override of Editor on field db1_users_email", cleared.Message())
	assert.Equal(t, "clear", cleared.StructuredData()[SDIDAction]["operation"])
	assert.NotContains(t, cleared.StructuredData()[SDIDSubject], "level")

	failed := OverrideEvent{Subject: "alice", Role: "Editor", NodeKind: "table", NodeID: "db1_users", Level: "Read", ErrorMessage: "boom"}
	assert.Equal(t, "alice failed to set override of Editor on table db1_users: boom", failed.Message())
	assert.Equal(t, SeverityWarning, failed.Severity())
}

func TestPolicyEvent(t *testing.T) {
	ok := PolicyEvent{Subject: "watcher", Source: "/etc/dbperm/policy.yml", Roles: 3, Success: true}
	assert.Equal(t, "watcher applied policy /etc/dbperm/policy.yml with 3 roles", ok.Message())
	assert.Equal(t, "3", ok.StructuredData()[SDIDPolicy]["roles"])

	bad := PolicyEvent{Subject: "watcher", Source: "p.yml", ErrorMessage: "unknown level"}
	assert.Equal(t, "watcher failed to apply policy p.yml: unknown level", bad.Message())
	assert.Equal(t, "failure", bad.StructuredData()[SDIDAction]["result"])
}

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", `"simple"`},
		{`with"quote`, `"with\"quote"`},
		{`with\backslash`, `"with\\backslash"`},
		{"with]bracket", `"with\]bracket"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeSDValue(tt.input))
		})
	}
}
