package model

// Event is one inbound frame from the chat gateway. The sidecar has already
// resolved group and sender addresses; Text is the raw message body.
type Event struct {
	Type    string `json:"type"`
	Group   string `json:"group,omitempty"`
	Sender  string `json:"sender"`
	Name    string `json:"name,omitempty"`
	Text    string `json:"text"`
	IsGroup bool   `json:"isGroup"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// Outbound frame types.
const (
	O_TEXT   = "text"
	O_IMAGE  = "image"
	O_DELETE = "delete"
)

// Outbound is one frame sent to the chat gateway.
type Outbound struct {
	Type     string   `json:"type"`
	To       string   `json:"to"`
	Text     string   `json:"text,omitempty"`
	Image    string   `json:"image,omitempty"`
	Caption  string   `json:"caption,omitempty"`
	Mentions []string `json:"mentions,omitempty"`
}
