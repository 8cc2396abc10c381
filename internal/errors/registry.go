package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Binding Errors (B001-B019)
	// ============================================

	"B001": {
		Category: CategoryBinding,
		Message:  "value:selected is only supported on radio inputs",
		Detail:   "A value:selected binding checks the radio whose value matches the reference. Other controls have no selection state to bind.",
	},
	"B002": {
		Category: CategoryBinding,
		Message:  "Directional binding requires a reactive reference",
		Detail:   "value:out and value:selected write user input back into the bound value, so the value must be a reactive reference.",
	},
	"B003": {
		Category: CategoryBinding,
		Message:  "Unsupported type for two-way binding",
		Detail:   "Form controls can be bound two-way to text, decimal, integer, boolean and time references only.",
	},
	"B004": {
		Category: CategoryBinding,
		Message:  "Invalid event handler",
		Detail:   "An on* attribute accepts a function or a string.",
	},
	"B005": {
		Category: CategoryBinding,
		Message:  "Frontend handler must be a function",
		Detail:   "Attributes with the :frontend suffix are event listeners and need a function value.",
	},
	"B006": {
		Category: CategoryBinding,
		Message:  "checked binding requires an input element",
		Detail:   "The checked attribute can only be bound two-way on checkbox and radio inputs.",
	},

	// ============================================
	// Construction Errors (B020-B039)
	// ============================================

	"B020": {
		Category: CategoryConstruction,
		Message:  "Invalid element type",
		Detail:   "The first argument of a construction call must be a tag name or a component function.",
	},
	"B021": {
		Category: CategoryConstruction,
		Message:  "Component returned no node",
		Detail:   "A component must return a DOM node, a deferred node or an error.",
	},

	// ============================================
	// Runtime Diagnostics (R001-R019)
	// ============================================

	"R001": {
		Category: CategoryRuntime,
		Message:  "Undetected garbage collection",
		Detail:   "A binding handler fired after its node was released. The handler was skipped.",
	},

	// ============================================
	// Validation Errors (V001-V019)
	// ============================================

	"V001": {
		Category: CategoryValidation,
		Message:  "Invalid number",
		Detail:   "The control text is not a decimal number.",
	},
	"V002": {
		Category: CategoryValidation,
		Message:  "Invalid integer",
		Detail:   "The control text is not an integer.",
	},

	// ============================================
	// Configuration Errors (C001-C019)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Invalid vbind.json",
		Detail:   "The vbind.json configuration file is malformed.",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The preview port must be between 0 and 65535.",
	},
	"C004": {
		Category: CategoryConfig,
		Message:  "Unknown time zone",
		Detail:   "The configured timezone is not a valid IANA location name.",
	},

	// ============================================
	// CLI Errors (L001-L019)
	// ============================================

	"L001": {
		Category: CategoryCLI,
		Message:  "Render failed",
		Detail:   "The document could not be built or serialised.",
	},
	"L002": {
		Category: CategoryCLI,
		Message:  "Snapshot store unavailable",
		Detail:   "Neither a snapshot directory nor a bucket is configured, or the store could not be created.",
	},
	"L003": {
		Category: CategoryCLI,
		Message:  "Preview server failed",
		Detail:   "The preview server stopped with an error.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
