package preview

// Message types.
const (
	TypeHello = "hello"
	TypeHTML  = "html"
	TypeError = "error"
)

// Message is sent from the server to clients.
type Message struct {
	Type   string `json:"type"`
	Client string `json:"client,omitempty"`
	Seq    uint64 `json:"seq,omitempty"`
	HTML   string `json:"html,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ClientEvent is a user interaction reported by a client.
type ClientEvent struct {
	Type    string  `json:"type"`
	ID      uint64  `json:"id"`
	Value   *string `json:"value,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
}

// clientEventTypes are the events clients may dispatch.
var clientEventTypes = map[string]bool{
	"input":  true,
	"change": true,
	"click":  true,
	"submit": true,
}
