package domain

// Creator categories members can pick on their profile. Each maps to one
// chat-platform role through configuration.
const (
	CreatorMaker  = "Maker"
	CreatorHacker = "Hacker"
	CreatorArtist = "Artist"
)

// CreatorRoleMap maps a creator category to a chat-platform role id.
type CreatorRoleMap map[string]string
