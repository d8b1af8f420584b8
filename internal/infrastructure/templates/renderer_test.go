package templates

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func fixtureDir(t *testing.T) string {
	return writeTemplates(t, map[string]string{
		"header.md":               "# Header",
		"footer.md":               "## Footer",
		"test.md":                 "Hello {{name}}!",
		"test.html":               "<p>Hello {{name}}!</p>",
		"greeting.md":             "Hi {{ name }}, welcome to {{site}}.",
		"email_verification.html": "<p>Verify at {{verification_url}}</p>",
	})
}

var leftover = regexp.MustCompile(`\{\{.*?\}\}`)

func TestRender_HTMLTemplate(t *testing.T) {
	r, err := New(fixtureDir(t))
	require.NoError(t, err)

	out, err := r.Render("test", map[string]string{"name": "John"})
	require.NoError(t, err)

	assert.Contains(t, out, "Hello John!")
	assert.Contains(t, out, "style=")
	assert.NotContains(t, out, "Header", "html templates are not framed")
}

func TestRender_MarkdownTemplateIsFramed(t *testing.T) {
	r, err := New(fixtureDir(t))
	require.NoError(t, err)

	out, err := r.Render("greeting", map[string]string{"name": "Ann", "site": "Accounts"})
	require.NoError(t, err)

	assert.Contains(t, out, "Hi Ann, welcome to Accounts.")
	assert.Contains(t, out, "<h1 style=")
	assert.Contains(t, out, ">Header</h1>")
	assert.Contains(t, out, ">Footer</h2>")
	assert.False(t, leftover.MatchString(out))
}

func TestRender_VerificationURL(t *testing.T) {
	r, err := New(fixtureDir(t))
	require.NoError(t, err)

	out, err := r.Render("email_verification", map[string]string{"verification_url": "http://test.com"})
	require.NoError(t, err)
	assert.Contains(t, out, "http://test.com")
}

func TestRender_MissingPlaceholderKeptVerbatim(t *testing.T) {
	r, err := New(fixtureDir(t))
	require.NoError(t, err)

	out, err := r.Render("test", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello {{name}}!")
}

func TestRender_EscapesValues(t *testing.T) {
	r, err := New(fixtureDir(t))
	require.NoError(t, err)

	out, err := r.Render("test", map[string]string{"name": "<script>"})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRender_TemplateMissing(t *testing.T) {
	r, err := New(fixtureDir(t))
	require.NoError(t, err)

	_, err = r.Render("non_existent", nil)
	assert.True(t, errors.Is(err, domain.ErrTemplateMissing), "got %v", err)

	_, err = r.Render("../test", nil)
	assert.True(t, errors.Is(err, domain.ErrTemplateMissing), "got %v", err)
}

func TestNew_CreatesDefaultsWhenDirMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "email_templates")

	r, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, r.Dir())

	for name := range defaultTemplates {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	out, err := r.Render("email_verification", map[string]string{
		"name":             "Ann",
		"verification_url": "http://localhost/verify-email/1/abc",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "http://localhost/verify-email/1/abc")
	assert.False(t, leftover.MatchString(out))

	out, err = r.Render("verification_email", map[string]string{
		"name":             "Ann",
		"verification_url": "http://localhost/verify-email/1/abc",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `href="http://localhost/verify-email/1/abc"`)
	assert.False(t, leftover.MatchString(out))

	out, err = r.Render("password_reset", map[string]string{
		"name":      "Ann",
		"reset_url": "http://localhost/reset-password/abc",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `href="http://localhost/reset-password/abc"`)
	assert.False(t, leftover.MatchString(out))
}

func TestEnsureDefaults_KeepsExistingFiles(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"header.md": "# Custom"})

	r, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, r.EnsureDefaults())

	data, err := os.ReadFile(filepath.Join(dir, "header.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Custom", string(data))
	assert.FileExists(t, filepath.Join(dir, "email_verification.html"))
	assert.FileExists(t, filepath.Join(dir, "verification_email.md"))
}

func TestApplyEmailStyles(t *testing.T) {
	styled := ApplyEmailStyles("<h1>Test</h1><p>Content</p><a href='#'>Link</a>")

	assert.Contains(t, styled, "style=")
	assert.Contains(t, styled, "font-family")
	assert.Contains(t, styled, "color")
	assert.Contains(t, styled, `<a style="`)
	assert.Contains(t, styled, `href='#'`)
}

func TestApplyEmailStyles_KeepsExistingStyle(t *testing.T) {
	styled := ApplyEmailStyles(`<p style="color: red">x</p><pre>y</pre>`)

	assert.Contains(t, styled, `<p style="color: red">`)
	assert.Contains(t, styled, "<pre>y</pre>")
}

func TestSubstitute(t *testing.T) {
	got := Substitute("{{a}} {{ b }} {{c}}", map[string]string{"a": "1", "b": "2"})
	assert.Equal(t, "1 2 {{c}}", got)
}

func TestRender_MarkdownValuesStayLiteral(t *testing.T) {
	r, err := New(filepath.Join(t.TempDir(), "email_templates"))
	require.NoError(t, err)

	out, err := r.Render("verification_email", map[string]string{
		"name":             "[click here](http://evil.example/phish) *now*",
		"verification_url": "http://localhost/verify-email/1/a_b-c",
	})
	require.NoError(t, err)

	assert.NotContains(t, out, "evil.example/phish\"")
	assert.Contains(t, out, "[click here](http://evil.example/phish) *now*")
	assert.NotContains(t, out, "<em")
	assert.Equal(t, 1, strings.Count(out, "<a "), "only the verification link is a link")
	assert.Contains(t, out, `href="http://localhost/verify-email/1/a_b-c"`)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\[x\]\(http://y\)`, escapeMarkdown("[x](http://y)"))
	assert.Equal(t, `Ann \_Lee\_ \#1`, escapeMarkdown("Ann _Lee_ #1"))
	assert.Equal(t, "a <b> & c", escapeMarkdown("a <b> & c"))
}
