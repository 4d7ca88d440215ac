// Package report renders a role's effective permission matrix for people:
// an indented text tree, a Markdown table, or HTML converted from that
// Markdown with goldmark.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/doodlesbykumbi/dbperm/pkg/authz"
	"github.com/doodlesbykumbi/dbperm/pkg/permission"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// ContentType is the HTTP media type of a format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Report is the effective matrix of one role.
type Report struct {
	Role    *permission.RolePermissions
	Entries []authz.Entry
}

// Render writes the report in the given format.
func (r Report) Render(w io.Writer, f Format) error {
	switch f {
	case FormatText:
		return r.Text(w)
	case FormatMarkdown:
		return r.Markdown(w)
	case FormatHTML:
		return r.HTML(w)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

func indent(k permission.NodeKind) int {
	switch k {
	case permission.KindTable:
		return 1
	case permission.KindField:
		return 2
	}
	return 0
}

func source(res permission.Resolution) string {
	switch {
	case res.FromDefault():
		return "default"
	case res.Inherited:
		return "inherited from " + res.Source.ID
	default:
		return "override"
	}
}

// Text writes an indented tree, one node per line.
func (r Report) Text(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s (default %s)\n\n", r.Role.Name, r.Role.Default)
	for _, e := range r.Entries {
		label := strings.Repeat("  ", indent(e.Node.Kind)) + e.Name
		fmt.Fprintf(&b, "%-32s %-22s %-7s %s\n", label, e.Node.ID, e.Resolution.Level, source(e.Resolution))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Markdown writes a GitHub-flavoured table.
func (r Report) Markdown(w io.Writer) error {
	_, err := io.WriteString(w, r.markdown())
	return err
}

func (r Report) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", escapeCell(r.Role.Name))
	fmt.Fprintf(&b, "Default level: **%s**\n\n", r.Role.Default)
	b.WriteString("| Node | Kind | Id | Level | Source |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, e := range r.Entries {
		name := escapeCell(e.Name)
		if e.Resolution.Source != nil && !e.Resolution.Inherited {
			name = "**" + name + "**"
		}
		fmt.Fprintf(&b, "| %s%s | %s | `%s` | %s | %s |\n",
			strings.Repeat("&nbsp;&nbsp;", indent(e.Node.Kind)),
			name,
			e.Node.Kind,
			e.Node.ID,
			e.Resolution.Level,
			source(e.Resolution))
	}
	return b.String()
}

// HTML converts the Markdown table to HTML.
func (r Report) HTML(w io.Writer) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.markdown()), &buf); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
