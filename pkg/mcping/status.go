package mcping

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// JavaServerInfo is the status document a Java Edition server answers a
// status request with. Every field is optional; unknown fields are ignored.
type JavaServerInfo struct {
	Version     *ServerVersion `json:"version,omitempty"`
	Players     *ServerPlayers `json:"players,omitempty"`
	Description *TextComponent `json:"description,omitempty"`
	Favicon     string         `json:"favicon,omitempty"`
	ModInfo     *ServerModInfo `json:"modinfo,omitempty"`

	// Later-protocol chat-reporting flags.
	PreviewsChat        *bool `json:"previewsChat,omitempty"`
	PreventsChatReports *bool `json:"preventsChatReports,omitempty"`
	EnforcesSecureChat  *bool `json:"enforcesSecureChat,omitempty"`
}

type ServerVersion struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

type ServerPlayers struct {
	Max    int            `json:"max"`
	Online int            `json:"online"`
	Sample []PlayerSample `json:"sample,omitempty"`
}

type PlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type ServerModInfo struct {
	Type    string      `json:"type"`
	ModList []ServerMod `json:"modList"`
}

type ServerMod struct {
	ModID   string `json:"modid"`
	Version string `json:"version"`
}

// TextComponent is the server description. Servers send it either as a bare
// JSON string or as a styled object with a recursive extra list; both shapes
// decode into the same tree.
type TextComponent struct {
	Text          string          `json:"text"`
	Color         string          `json:"color,omitempty"`
	Bold          bool            `json:"bold,omitempty"`
	Italic        bool            `json:"italic,omitempty"`
	Underlined    bool            `json:"underlined,omitempty"`
	Strikethrough bool            `json:"strikethrough,omitempty"`
	Obfuscated    bool            `json:"obfuscated,omitempty"`
	Extra         []TextComponent `json:"extra,omitempty"`
}

func (c *TextComponent) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Text)
	}

	type component TextComponent // avoids recursing into this method
	return json.Unmarshal(data, (*component)(c))
}

// String flattens the component tree to its unstyled text.
func (c TextComponent) String() string {
	var sb strings.Builder
	c.appendText(&sb)
	return sb.String()
}

func (c TextComponent) appendText(sb *strings.Builder) {
	sb.WriteString(c.Text)
	for _, extra := range c.Extra {
		extra.appendText(sb)
	}
}

// ParseJavaStatus decodes the status document of a status response.
func ParseJavaStatus(document string) (*JavaServerInfo, error) {
	var info JavaServerInfo
	if err := json.Unmarshal([]byte(document), &info); err != nil {
		return nil, errors.Wrap(err, "parsing server status document")
	}
	return &info, nil
}
