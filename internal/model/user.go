package model

// UserProfile is the denormalized public profile of a platform user,
// as embedded in suggestion lists, connection lists, and notifications.
type UserProfile struct {
	// ID is the user's server-assigned identifier.
	ID string `json:"_id"`

	Name     string `json:"name"`
	Username string `json:"username"`

	// Headline is the short professional tagline shown under the name.
	Headline string `json:"headline,omitempty"`

	// ProfilePicture is a URL; empty when the user has not set one.
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// DisplayName returns the best available label for the user.
func (u UserProfile) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
