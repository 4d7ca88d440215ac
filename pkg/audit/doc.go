// Package audit provides audit logging for permission changes and checks.
//
// Events are written as RFC5424 syslog lines and, when a Store is attached,
// persisted to the audit_messages table.
//
// # Event Types
//
//   - RoleEvent: a role was created or deleted
//   - DefaultEvent: a role's default level changed
//   - OverrideEvent: an override was set or cleared, including the
//     descendant overrides removed by the cascade
//   - CheckEvent: a privilege check was evaluated
//   - PolicyEvent: a policy document was applied
//
// # Usage
//
//	logger := audit.NewLogger()
//	logger.Log(ctx, audit.CheckEvent{Subject: "alice", Role: "Editor", NodeID: "db1_users", Privilege: "Write", Allowed: true})
package audit
