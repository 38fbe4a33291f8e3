package domain

// Preferences are a user's stated tastes used to score recommendations.
type Preferences struct {
	Genre  string `json:"genre"`
	Author string `json:"author"`
}

// Merge returns p with any non-empty field of override applied.
func (p Preferences) Merge(override Preferences) Preferences {
	if override.Genre != "" {
		p.Genre = override.Genre
	}
	if override.Author != "" {
		p.Author = override.Author
	}
	return p
}
