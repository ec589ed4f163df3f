// Discord interaction wire types. Only the fields the relay routes on are
// modeled, the rest of the payload is ignored.
package dto

import "github.com/disgoorg/snowflake/v2"

// Interaction types.
const (
	InteractionTypePing             = 1
	InteractionTypeMessageComponent = 3
	InteractionTypeModalSubmit      = 5
)

// Interaction response types.
const (
	ResponseTypePong                     = 1
	ResponseTypeChannelMessageWithSource = 4
	ResponseTypeDeferredChannelMessage   = 5
	ResponseTypeUpdateMessage            = 7
	ResponseTypeModal                    = 9
)

// Component types.
const (
	ComponentTypeActionRow = 1
	ComponentTypeButton    = 2
	ComponentTypeTextInput = 4
)

// Button styles.
const (
	ButtonStylePrimary   = 1
	ButtonStyleSecondary = 2
	ButtonStyleDanger    = 4
)

// MessageFlagEphemeral marks a response visible only to the invoking user.
const MessageFlagEphemeral = 1 << 6

type Interaction struct {
	Type          int              `json:"type"`
	Token         string           `json:"token"`
	ApplicationID snowflake.ID     `json:"application_id"`
	Data          *InteractionData `json:"data"`
	Member        *Member          `json:"member"`
	User          *User            `json:"user"`
}

// Sender returns the invoking user regardless of guild or DM context.
func (i *Interaction) Sender() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

type InteractionData struct {
	CustomID   string      `json:"custom_id"`
	Components []Component `json:"components"`
}

// TextValue finds the submitted value of a modal text input by custom id.
func (d *InteractionData) TextValue(customID string) string {
	for _, row := range d.Components {
		for _, c := range row.Components {
			if c.CustomID == customID {
				return c.Value
			}
		}
		if row.CustomID == customID {
			return row.Value
		}
	}
	return ""
}

type Component struct {
	Type       int         `json:"type"`
	CustomID   string      `json:"custom_id,omitempty"`
	Label      string      `json:"label,omitempty"`
	Style      int         `json:"style,omitempty"`
	Value      string      `json:"value,omitempty"`
	Required   bool        `json:"required,omitempty"`
	Components []Component `json:"components,omitempty"`
}

type User struct {
	ID         snowflake.ID `json:"id"`
	Username   string       `json:"username"`
	GlobalName string       `json:"global_name"`
}

// DisplayName prefers the global display name over the login name.
func (u *User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

type Member struct {
	User *User  `json:"user"`
	Nick string `json:"nick"`
}

type InteractionResponse struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Flags      int         `json:"flags,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Title      string      `json:"title,omitempty"`
	Components []Component `json:"components,omitempty"`
}
