package htmldom

import (
	"strings"

	"github.com/vango-dev/vbind/pkg/dom"
)

// TokenList is a whitespace-separated token view over an attribute.
type TokenList struct {
	el   *Element
	attr string
}

var _ dom.TokenList = (*TokenList)(nil)

// tokens returns the current tokens, deduplicated in order.
func (t *TokenList) tokens() []string {
	value, _ := t.el.GetAttribute(t.attr)
	seen := make(map[string]bool)
	var out []string
	for _, tok := range strings.Fields(value) {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

// setTokens writes tokens back. An attribute that was never set stays unset
// when the list is empty.
func (t *TokenList) setTokens(tokens []string) {
	if len(tokens) > 0 {
		t.el.SetAttribute(t.attr, strings.Join(tokens, " "))
		return
	}
	if t.el.HasAttribute(t.attr) {
		t.el.SetAttribute(t.attr, "")
	}
}

// Values returns the tokens in order.
func (t *TokenList) Values() []string { return t.tokens() }

// Len returns the number of tokens.
func (t *TokenList) Len() int { return len(t.tokens()) }

// Contains reports whether token is present.
func (t *TokenList) Contains(token string) bool {
	for _, tok := range t.tokens() {
		if tok == token {
			return true
		}
	}
	return false
}

// Add appends tokens that are not yet present.
func (t *TokenList) Add(tokens ...string) {
	cur := t.tokens()
	changed := false
	for _, tok := range tokens {
		if tok == "" || containsToken(cur, tok) {
			continue
		}
		cur = append(cur, tok)
		changed = true
	}
	if changed {
		t.setTokens(cur)
	}
}

// Remove drops tokens.
func (t *TokenList) Remove(tokens ...string) {
	cur := t.tokens()
	out := cur[:0]
	for _, tok := range cur {
		if !containsToken(tokens, tok) {
			out = append(out, tok)
		}
	}
	if len(out) != len(cur) {
		t.setTokens(out)
	}
}

// Toggle adds token when force is true and removes it otherwise.
func (t *TokenList) Toggle(token string, force bool) {
	if force {
		t.Add(token)
	} else {
		t.Remove(token)
	}
}

func containsToken(list []string, tok string) bool {
	for _, v := range list {
		if v == tok {
			return true
		}
	}
	return false
}
