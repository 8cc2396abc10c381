package htmldom

import "github.com/vango-dev/vbind/pkg/dom"

// MutationOp identifies a recorded change.
type MutationOp uint8

const (
	MutationSetAttr MutationOp = iota
	MutationRemoveAttr
	MutationInsert
	MutationRemove
	MutationSetText
	MutationSetValue
	MutationSetChecked
	MutationReportValidity
)

// String returns the string representation of the MutationOp.
func (op MutationOp) String() string {
	switch op {
	case MutationSetAttr:
		return "set_attr"
	case MutationRemoveAttr:
		return "remove_attr"
	case MutationInsert:
		return "insert"
	case MutationRemove:
		return "remove"
	case MutationSetText:
		return "set_text"
	case MutationSetValue:
		return "set_value"
	case MutationSetChecked:
		return "set_checked"
	case MutationReportValidity:
		return "report_validity"
	default:
		return "unknown"
	}
}

// Mutation is one entry of the document's mutation log.
type Mutation struct {
	Op     MutationOp
	Target dom.NodeID
	Child  dom.NodeID
	Name   string
	Value  string
}

type mutationObserver struct {
	id uint64
	fn func(Mutation)
}

func (d *Document) record(m Mutation) {
	if d.logLimit > 0 {
		if len(d.mutations) >= d.logLimit {
			d.mutations = d.mutations[1:]
		}
		d.mutations = append(d.mutations, m)
	}
	if len(d.observers) == 0 {
		return
	}
	obs := make([]*mutationObserver, len(d.observers))
	copy(obs, d.observers)
	for _, o := range obs {
		o.fn(m)
	}
}

// Observe calls fn synchronously for every subsequent mutation and returns
// a function that stops observation.
func (d *Document) Observe(fn func(Mutation)) func() {
	d.nextObs++
	o := &mutationObserver{id: d.nextObs, fn: fn}
	d.observers = append(d.observers, o)
	return func() {
		for i, existing := range d.observers {
			if existing.id == o.id {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

// Mutations returns a copy of the mutation log.
func (d *Document) Mutations() []Mutation {
	out := make([]Mutation, len(d.mutations))
	copy(out, d.mutations)
	return out
}

// ResetMutations clears the mutation log.
func (d *Document) ResetMutations() {
	d.mutations = nil
}
