package htmldom

import (
	"strings"

	"github.com/vango-dev/vbind/pkg/dom"
)

// Style is an element's inline declaration block, kept in declaration order
// and mirrored into the style attribute.
type Style struct {
	el    *Element
	props map[string]string
	order []string
}

var _ dom.Style = (*Style)(nil)

func newStyle(el *Element) *Style {
	s := &Style{el: el, props: make(map[string]string)}
	if v, ok := el.GetAttribute("style"); ok {
		s.parse(v)
	}
	return s
}

// CSSText returns the serialised declarations.
func (s *Style) CSSText() string {
	parts := make([]string, 0, len(s.order))
	for _, name := range s.order {
		parts = append(parts, name+": "+s.props[name])
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}

// SetCSSText replaces all declarations.
func (s *Style) SetCSSText(text string) {
	s.props = make(map[string]string)
	s.order = nil
	s.parse(text)
	s.sync()
}

// Len returns the number of declarations.
func (s *Style) Len() int { return len(s.order) }

// GetPropertyValue returns the value of a kebab-case property.
func (s *Style) GetPropertyValue(name string) string {
	return s.props[strings.ToLower(strings.TrimSpace(name))]
}

// SetProperty sets a kebab-case property. An empty value removes it.
func (s *Style) SetProperty(name, value string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	if value == "" {
		s.RemoveProperty(name)
		return
	}
	if _, ok := s.props[name]; !ok {
		s.order = append(s.order, name)
	}
	s.props[name] = value
	s.sync()
}

// RemoveProperty removes a property. Missing properties are ignored.
func (s *Style) RemoveProperty(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := s.props[name]; !ok {
		return
	}
	delete(s.props, name)
	for i, p := range s.order {
		if p == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.sync()
}

func (s *Style) parse(text string) {
	for _, part := range splitDeclarations(text) {
		colon := strings.Index(part, ":")
		if colon < 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(part[:colon]))
		value := strings.TrimSpace(part[colon+1:])
		if name == "" || value == "" {
			continue
		}
		if _, ok := s.props[name]; !ok {
			s.order = append(s.order, name)
		}
		s.props[name] = value
	}
}

// splitDeclarations splits on semicolons outside comments and quotes.
func splitDeclarations(text string) []string {
	var parts []string
	var cur strings.Builder
	var quote byte
	inComment := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case inComment:
			cur.WriteByte(ch)
			if ch == '/' && i > 0 && text[i-1] == '*' {
				inComment = false
			}
		case quote != 0:
			cur.WriteByte(ch)
			if ch == quote && text[i-1] != '\\' {
				quote = 0
			}
		case ch == '/' && i+1 < len(text) && text[i+1] == '*':
			inComment = true
			cur.WriteByte(ch)
		case ch == '"' || ch == '\'':
			quote = ch
			cur.WriteByte(ch)
		case ch == ';':
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

// sync writes the declarations back to the style attribute.
func (s *Style) sync() {
	text := s.CSSText()
	if text == "" {
		if s.el.HasAttribute("style") {
			s.el.RemoveAttribute("style")
		}
		return
	}
	s.el.setAttr("style", text)
}

// refresh reloads declarations after the style attribute was set directly.
func (s *Style) refresh(text string) {
	s.props = make(map[string]string)
	s.order = nil
	s.parse(text)
}
