// Package templates renders the HTML emails sent to users.
//
// A template named "x" resolves to x.html, used as is, or to x.md, which is
// framed by header.md and footer.md and converted to HTML. Placeholders use
// the {{key}} form; a placeholder with no supplied value is left verbatim.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Renderer loads templates from a directory.
type Renderer struct {
	dir string
	md  goldmark.Markdown
}

// New returns a Renderer over dir. A missing dir is created and seeded with
// the default templates.
func New(dir string) (*Renderer, error) {
	r := &Renderer{dir: dir, md: goldmark.New()}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		if err := r.EnsureDefaults(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat templates dir: %w", err)
	}
	return r, nil
}

// Dir returns the template directory.
func (r *Renderer) Dir() string { return r.dir }

// EnsureDefaults writes every default template that does not exist yet.
// Existing files are never overwritten.
func (r *Renderer) EnsureDefaults() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create templates dir: %w", err)
	}

	names := make([]string, 0, len(defaultTemplates))
	for name := range defaultTemplates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(r.dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(defaultTemplates[name]), 0o644); err != nil {
			return fmt.Errorf("write default template %s: %w", name, err)
		}
	}
	return nil
}

// Render resolves and renders the named template.
func (r *Renderer) Render(name string, vars map[string]string) (string, error) {
	if body, err := r.read(name + ".html"); err == nil {
		return ApplyEmailStyles(Substitute(body, vars)), nil
	} else if !errors.Is(err, domain.ErrTemplateMissing) {
		return "", err
	}

	body, err := r.read(name + ".md")
	if err != nil {
		return "", err
	}
	header, err := r.optional("header.md")
	if err != nil {
		return "", err
	}
	footer, err := r.optional("footer.md")
	if err != nil {
		return "", err
	}

	source := substitute(strings.Join([]string{header, body, footer}, "\n\n"), vars, func(v string) string {
		return html.EscapeString(escapeMarkdown(v))
	})
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown %s: %w", name, err)
	}
	return ApplyEmailStyles(buf.String()), nil
}

// read loads a template file, mapping absence to domain.ErrTemplateMissing.
func (r *Renderer) read(file string) (string, error) {
	if strings.ContainsAny(file, `/\`) {
		return "", fmt.Errorf("%w: %s", domain.ErrTemplateMissing, file)
	}
	data, err := os.ReadFile(filepath.Join(r.dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", domain.ErrTemplateMissing, file)
	}
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", file, err)
	}
	return string(data), nil
}

func (r *Renderer) optional(file string) (string, error) {
	s, err := r.read(file)
	if errors.Is(err, domain.ErrTemplateMissing) {
		return "", nil
	}
	return s, err
}

// Substitute replaces {{key}} with the HTML-escaped value of vars[key].
// Unknown keys are kept as written.
func Substitute(s string, vars map[string]string) string {
	return substitute(s, vars, html.EscapeString)
}

func substitute(s string, vars map[string]string, escape func(string) string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		if v, ok := vars[key]; ok {
			return escape(v)
		}
		return m
	})
}

// markdownPunct lists the characters that can start Markdown syntax inside a
// line. '<', '>' and '&' are left to HTML escaping.
const markdownPunct = "\\`*_{}[]()#+-.!|~"

// escapeMarkdown backslash-escapes Markdown punctuation so a value always
// renders as literal text.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownPunct, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
