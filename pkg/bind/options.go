package bind

import (
	"log/slog"
	"time"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// Rule configures validation of one numeric kind.
type Rule struct {
	// Message is set as the control's custom validity message when the
	// input does not parse.
	Message string

	// Enabled turns the check on.
	Enabled bool
}

// ValidationPolicy configures how text typed into a control bound to a
// numeric reference is checked before it is committed.
type ValidationPolicy struct {
	// Number applies to decimal references.
	Number Rule

	// Integer applies to integer references.
	Integer Rule
}

// DefaultValidation returns the policy used when WithValidation is not
// given: both checks enabled with the "Invalid number" and
// "Invalid integer" messages.
func DefaultValidation() ValidationPolicy {
	return ValidationPolicy{
		Number:  Rule{Message: errors.Message("V001"), Enabled: true},
		Integer: Rule{Message: errors.Message("V002"), Enabled: true},
	}
}

// Observer receives binding events. It is implemented by the metrics
// package.
type Observer interface {
	// AttributeBound is called once per successful SetAttribute.
	AttributeBound(mode Mode)

	// ValidationFailed is called when user input for a reference of the
	// given kind is rejected.
	ValidationFailed(kind reactive.Kind)

	// StaleHandler is called when a handler fires for a collected node.
	StaleHandler()

	// ListChange is called for every collection change applied by a
	// reconciler.
	ListChange(op reactive.ChangeOp)

	// Released is called when bindings are released. reason is "dispose"
	// or "sweep".
	Released(reason string, records int)
}

type nopObserver struct{}

func (nopObserver) AttributeBound(Mode)            {}
func (nopObserver) ValidationFailed(reactive.Kind) {}
func (nopObserver) StaleHandler()                  {}
func (nopObserver) ListChange(reactive.ChangeOp)   {}
func (nopObserver) Released(string, int)           {}

// Option configures a Binder.
type Option func(*config)

type config struct {
	validation ValidationPolicy
	rootPath   string
	location   *time.Location
	logger     *slog.Logger
	observer   Observer
}

func defaultConfig() config {
	return config{
		validation: DefaultValidation(),
		location:   time.Local,
		logger:     slog.Default(),
		observer:   nopObserver{},
	}
}

// WithValidation sets the input validation policy.
func WithValidation(p ValidationPolicy) Option {
	return func(c *config) {
		c.validation = p
	}
}

// WithRootPath sets the base URL that relative attribute values
// ("./x", "../x") are resolved against.
func WithRootPath(root string) Option {
	return func(c *config) {
		c.rootPath = root
	}
}

// WithLocation sets the time zone used for datetime-local and week
// controls. Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the binding event observer.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observer = o
		}
	}
}
