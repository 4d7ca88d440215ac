package audit

import (
	"fmt"
	"strconv"
	"strings"
)

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func withError(msg, errMsg string) string {
	if errMsg != "" {
		return msg + ": " + errMsg
	}
	return msg
}

// RoleEvent records creation or deletion of a role.
type RoleEvent struct {
	Subject      string
	Role         string
	Operation    string // "create" or "delete"
	Default      string
	Success      bool
	ErrorMessage string
}

func (e RoleEvent) MessageID() string {
	return "role"
}

func (e RoleEvent) Message() string {
	verb := "created"
	if e.Operation == "delete" {
		verb = "deleted"
	}
	if e.Success {
		if e.Operation == "delete" {
			return fmt.Sprintf("%s %s role %s", e.Subject, verb, e.Role)
		}
		return fmt.Sprintf("%s %s role %s with default %s", e.Subject, verb, e.Role, e.Default)
	}
	return withError(fmt.Sprintf("%s failed to %s role %s", e.Subject, e.Operation, e.Role), e.ErrorMessage)
}

func (e RoleEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e RoleEvent) Facility() int {
	return FacilityAuth
}

func (e RoleEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:    {"user": e.Subject},
		SDIDSubject: {"role": e.Role},
		SDIDAction:  {"operation": e.Operation, "result": result(e.Success)},
	}
	if e.Default != "" {
		sd[SDIDSubject]["default"] = e.Default
	}
	return sd
}

// DefaultEvent records a change of a role's default level.
type DefaultEvent struct {
	Subject      string
	Role         string
	Previous     string
	Level        string
	Success      bool
	ErrorMessage string
}

func (e DefaultEvent) MessageID() string {
	return "default"
}

func (e DefaultEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s changed default of %s from %s to %s", e.Subject, e.Role, e.Previous, e.Level)
	}
	return withError(fmt.Sprintf("%s failed to change default of %s to %s", e.Subject, e.Role, e.Level), e.ErrorMessage)
}

func (e DefaultEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e DefaultEvent) Facility() int {
	return FacilityAuth
}

func (e DefaultEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:    {"user": e.Subject},
		SDIDSubject: {"role": e.Role, "previous": e.Previous, "level": e.Level},
		SDIDAction:  {"operation": "default", "result": result(e.Success)},
	}
}

// OverrideEvent records an override being set or cleared.
type OverrideEvent struct {
	Subject      string
	Role         string
	NodeKind     string
	NodeID       string
	Level        string // empty when cleared
	Removed      []string
	Success      bool
	ErrorMessage string
}

func (e OverrideEvent) MessageID() string {
	return "override"
}

func (e OverrideEvent) operation() string {
	if e.Level == "" {
		return "clear"
	}
	return "set"
}

func (e OverrideEvent) Message() string {
	if !e.Success {
		return withError(fmt.Sprintf("%s failed to %s override of %s on %s %s", e.Subject, e.operation(), e.Role, e.NodeKind, e.NodeID), e.ErrorMessage)
	}
	if e.Level == "" {
		return fmt.Sprintf("%s cleared override of %s on %s %s", e.Subject, e.Role, e.NodeKind, e.NodeID)
	}
	msg := fmt.Sprintf("%s set %s on %s %s to %s", e.Subject, e.Role, e.NodeKind, e.NodeID, e.Level)
	if len(e.Removed) > 0 {
		msg += fmt.Sprintf(" (removed %d redundant overrides)", len(e.Removed))
	}
	return msg
}

func (e OverrideEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e OverrideEvent) Facility() int {
	return FacilityAuth
}

func (e OverrideEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:    {"user": e.Subject},
		SDIDSubject: {"role": e.Role, "kind": e.NodeKind, "node": e.NodeID},
		SDIDAction:  {"operation": e.operation(), "result": result(e.Success)},
	}
	if e.Level != "" {
		sd[SDIDSubject]["level"] = e.Level
	}
	if len(e.Removed) > 0 {
		sd[SDIDAction]["removed"] = strings.Join(e.Removed, ",")
	}
	return sd
}

// CheckEvent represents a privilege check on a node.
type CheckEvent struct {
	Subject   string
	Role      string
	NodeID    string
	Privilege string
	Effective string
	Allowed   bool
}

func (e CheckEvent) MessageID() string {
	return "check"
}

func (e CheckEvent) Message() string {
	verdict := "denied"
	if e.Allowed {
		verdict = "allowed"
	}
	return fmt.Sprintf("%s checked %s privilege of %s on %s: %s", e.Subject, e.Privilege, e.Role, e.NodeID, verdict)
}

func (e CheckEvent) Severity() Severity {
	return SeverityInfo
}

func (e CheckEvent) Facility() int {
	return FacilityAuthPriv
}

func (e CheckEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:    {"user": e.Subject},
		SDIDSubject: {"role": e.Role, "node": e.NodeID, "privilege": e.Privilege, "effective": e.Effective},
		SDIDAction:  {"operation": "check", "result": result(e.Allowed)},
	}
}

// PolicyEvent records a policy document being applied.
type PolicyEvent struct {
	Subject      string
	Source       string
	Roles        int
	Success      bool
	ErrorMessage string
}

func (e PolicyEvent) MessageID() string {
	return "policy"
}

func (e PolicyEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s applied policy %s with %d roles", e.Subject, e.Source, e.Roles)
	}
	return withError(fmt.Sprintf("%s failed to apply policy %s", e.Subject, e.Source), e.ErrorMessage)
}

func (e PolicyEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e PolicyEvent) Facility() int {
	return FacilityAuth
}

func (e PolicyEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"user": e.Subject},
		SDIDPolicy: {"source": e.Source, "roles": strconv.Itoa(e.Roles)},
		SDIDAction: {"operation": "apply", "result": result(e.Success)},
	}
}
