package models

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// previewLength is how many characters of a system prompt a Summary shows.
const previewLength = 50

// Message is one entry of a conversation history.
type Message struct {
	Role    string `yaml:"role" json:"role" firestore:"role"`
	Content string `yaml:"content" json:"content" firestore:"content"`
}

// ValidRole reports whether role may appear in a history.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Context is a named conversation bound to one provider and model.
// It doubles as the persisted record.
type Context struct {
	Name         string    `yaml:"name" json:"name" firestore:"name"`
	Service      string    `yaml:"service" json:"service" firestore:"service"`
	Model        string    `yaml:"model" json:"model" firestore:"model"`
	SystemPrompt string    `yaml:"system_prompt" json:"system_prompt" firestore:"system_prompt"`
	Settings     Settings  `yaml:"settings" json:"settings" firestore:"settings"`
	History      []Message `yaml:"history" json:"history" firestore:"history"`
}

// NewContext builds a context whose history starts with the system prompt.
func NewContext(name, service, model, systemPrompt string, settings Settings) *Context {
	return &Context{
		Name:         name,
		Service:      service,
		Model:        model,
		SystemPrompt: systemPrompt,
		Settings:     settings,
		History:      []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// AddMessage appends to the history.
func (c *Context) AddMessage(role, content string) {
	c.History = append(c.History, Message{Role: role, Content: content})
}

// Clone returns a deep copy. Settings values are copied shallowly.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	out := *c
	out.Settings = c.Settings.Clone()
	out.History = append([]Message(nil), c.History...)
	return &out
}

// Summary describes a context for listings.
type Summary struct {
	Name         string `json:"name"`
	Service      string `json:"service"`
	Model        string `json:"model"`
	SystemPrompt string `json:"system_prompt"`
}

// Summarize returns the listing view of c with a shortened system prompt.
func (c *Context) Summarize() Summary {
	return Summary{
		Name:         c.Name,
		Service:      c.Service,
		Model:        c.Model,
		SystemPrompt: Preview(c.SystemPrompt),
	}
}

// Preview shortens s to the listing preview length, adding an ellipsis.
func Preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLength {
		return s
	}
	return string(runes[:previewLength]) + "..."
}

// Image holds the captions and generation prompt of a game scene.
type Image struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
	Prompt string `json:"prompt"`
}

// Action is one entry of a turn's action menu.
type Action struct {
	Description string `json:"description"`
}

// Turn is one structured game master reply.
type Turn struct {
	Narration string   `json:"narration"`
	Image     Image    `json:"image"`
	Actions   []Action `json:"actions"`
}
