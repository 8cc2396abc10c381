// Package jsx constructs DOM trees the way JSX does: a tag or component,
// a set of props and a list of children.
//
// Intrinsic elements are created by tag name. Their children are appended
// first and their props are then bound with the bind package, so a prop may
// be a plain value, a reactive reference or a deferred value:
//
//	rt := jsx.New(binder)
//	name := reactive.Text("Ada")
//	input, err := rt.Construct("input", jsx.Props{"type": "text", "value": name})
//
// H is the variadic form. It accepts Props, Attr and children in any order:
//
//	card, err := rt.H("div", jsx.Attr{Key: "class", Value: "card"},
//		rt.Must("h2", "Profile"),
//		input,
//	)
//
// Components are functions from props and children to content. A
// component that returns a reactive.Deferred renders a placeholder that is
// replaced once the value resolves.
//
// Special props:
//
//   - "style" is applied with Binder.SetStyle.
//   - "shadow-root" (true or a mode) wraps the children in a declarative
//     shadow root template.
//   - "module" sets the base URL relative attribute values resolve
//     against, for this element only.
//   - "_debug" logs the construction call.
//
// Props that no attribute table admits on an element are logged at warn
// level and skipped.
package jsx
