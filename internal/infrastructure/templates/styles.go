package templates

import (
	"fmt"
	"regexp"
)

const bodyStyle = "font-family: Arial, sans-serif; font-size: 16px; color: #333333; background-color: #ffffff; line-height: 1.5;"

var tagStyles = []struct {
	tag   string
	style string
}{
	{"h1", "font-size: 24px; color: #333333; font-weight: bold; margin-top: 20px; margin-bottom: 10px;"},
	{"h2", "font-size: 20px; color: #333333; font-weight: bold; margin-top: 16px; margin-bottom: 8px;"},
	{"p", "font-size: 16px; color: #666666; margin: 10px 0; line-height: 1.6;"},
	{"a", "color: #0056b3; text-decoration: none; font-weight: bold;"},
	{"ul", "list-style-type: none; padding: 0;"},
	{"li", "margin-bottom: 10px;"},
	{"footer", "font-size: 12px; color: #777777; padding: 20px 0;"},
}

var tagPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(tagStyles))
	for _, ts := range tagStyles {
		// Opening tag without an existing style attribute.
		out[ts.tag] = regexp.MustCompile(fmt.Sprintf(`<%s(\s[^>]*)?>`, ts.tag))
	}
	return out
}()

var hasStyle = regexp.MustCompile(`\sstyle\s*=`)

// ApplyEmailStyles inlines presentational attributes so the markup renders
// consistently in mail clients, and wraps it in a styled container.
func ApplyEmailStyles(markup string) string {
	for _, ts := range tagStyles {
		markup = tagPatterns[ts.tag].ReplaceAllStringFunc(markup, func(m string) string {
			if hasStyle.MatchString(m) {
				return m
			}
			return fmt.Sprintf(`<%s style="%s"%s`, ts.tag, ts.style, m[len(ts.tag)+1:])
		})
	}
	return fmt.Sprintf(`<div style="%s">%s</div>`, bodyStyle, markup)
}
