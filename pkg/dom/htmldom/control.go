package htmldom

import (
	"strings"

	"github.com/vango-dev/vbind/pkg/dom"
)

// Control is an input, select or textarea element with live form state.
type Control struct {
	Element

	value        string
	dirtyValue   bool
	checked      bool
	dirtyChecked bool
	validity     string
}

var _ dom.FormControl = (*Control)(nil)

// IsNil reports whether the receiver is a nil pointer.
func (c *Control) IsNil() bool { return c == nil }

// Type returns the lowercase input type, "select-one"/"select-multiple" for
// select and "textarea" for textarea.
func (c *Control) Type() string {
	switch c.tag {
	case "select":
		if c.HasAttribute("multiple") {
			return "select-multiple"
		}
		return "select-one"
	case "textarea":
		return "textarea"
	}
	t, _ := c.GetAttribute("type")
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "text"
	}
	return t
}

// Value returns the current value.
func (c *Control) Value() string {
	switch c.tag {
	case "select":
		opts := c.options()
		for _, o := range opts {
			if o.HasAttribute("selected") {
				return optionValue(o)
			}
		}
		if len(opts) > 0 {
			return optionValue(opts[0])
		}
		return ""
	case "textarea":
		if c.dirtyValue {
			return c.value
		}
		return c.TextContent()
	}

	if c.dirtyValue {
		return c.value
	}
	if v, ok := c.GetAttribute("value"); ok {
		return v
	}
	switch c.Type() {
	case "checkbox", "radio":
		return "on"
	}
	return ""
}

// SetValue sets the current value. For select elements the first option
// with a matching value becomes selected.
func (c *Control) SetValue(v string) {
	if c.tag == "select" {
		matched := false
		for _, o := range c.options() {
			if !matched && optionValue(o) == v {
				matched = true
				if !o.HasAttribute("selected") {
					o.SetAttribute("selected", "")
				}
			} else if o.HasAttribute("selected") {
				o.RemoveAttribute("selected")
			}
		}
	} else {
		c.value = v
		c.dirtyValue = true
	}
	c.record(Mutation{Op: MutationSetValue, Target: c.id, Value: v})
}

// Checked returns the checkedness of checkbox and radio inputs.
func (c *Control) Checked() bool {
	if c.dirtyChecked {
		return c.checked
	}
	return c.HasAttribute("checked")
}

// SetChecked sets checkedness. Checking a named radio unchecks the other
// radios of its group in the same tree.
func (c *Control) SetChecked(checked bool) {
	c.checked = checked
	c.dirtyChecked = true
	value := "false"
	if checked {
		value = "true"
		c.uncheckGroup()
	}
	c.record(Mutation{Op: MutationSetChecked, Target: c.id, Value: value})
}

func (c *Control) uncheckGroup() {
	if c.Type() != "radio" {
		return
	}
	name, _ := c.GetAttribute("name")
	if name == "" {
		return
	}
	c.Node.root().walk(func(n *Node) bool {
		other, ok := n.outer.(*Control)
		if !ok || other == c || other.Type() != "radio" {
			return true
		}
		if otherName, _ := other.GetAttribute("name"); otherName == name && other.Checked() {
			other.checked = false
			other.dirtyChecked = true
			other.record(Mutation{Op: MutationSetChecked, Target: other.id, Value: "false"})
		}
		return true
	})
}

// SetCustomValidity sets the custom validation message. An empty message
// makes the control valid.
func (c *Control) SetCustomValidity(msg string) {
	c.validity = msg
}

// ValidationMessage returns the custom validation message.
func (c *Control) ValidationMessage() string {
	return c.validity
}

// ReportValidity records a validity report and returns whether the control
// is valid.
func (c *Control) ReportValidity() bool {
	c.record(Mutation{Op: MutationReportValidity, Target: c.id, Value: c.validity})
	return c.validity == ""
}

func (c *Control) options() []*Element {
	var out []*Element
	c.Node.walk(func(n *Node) bool {
		if el, ok := n.outer.(*Element); ok && el.tag == "option" {
			out = append(out, el)
		}
		return true
	})
	return out
}

func optionValue(o *Element) string {
	if v, ok := o.GetAttribute("value"); ok {
		return v
	}
	return strings.TrimSpace(o.TextContent())
}
