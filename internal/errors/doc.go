// Package errors provides coded, structured errors for vbind.
//
// Programmer errors raised while binding attributes or constructing
// elements are returned as *CodedError values created from a registered
// code, so callers can match them with errors.Is regardless of the detail
// attached at the call site:
//
//	err := errors.New("B001").WithDetail(`<input type="checkbox" value:selected>`)
//	if stderrors.Is(err, bind.ErrSelectedNotRadio) { ... }
//
// # Error Categories
//
//   - binding: invalid attribute/value combinations (B001-B019)
//   - construction: invalid element or component calls (B020-B039)
//   - runtime: reachability problems that are logged, never returned (R001-R019)
//   - validation: user input that failed coercion (V001-V019)
//   - config: vbind.json problems (C001-C019)
//   - cli: command line failures (L001-L019)
//
// Format renders an error for a terminal, FormatCompact for one-line logs
// and FormatJSON for machine consumers.
package errors
