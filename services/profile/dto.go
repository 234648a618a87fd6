package profile

// UpdateProfileRequest replaces every editable field. Avatar is a remote URL,
// a freshly selected image as a data URI, or null for no avatar.
type UpdateProfileRequest struct {
	Name         string  `json:"name" binding:"required"`
	Rank         string  `json:"rank" binding:"required"`
	Avatar       *string `json:"avatar"`
	GameName     string  `json:"gameName"`
	TwitterName  string  `json:"twitterName"`
	ParallelName string  `json:"parallelName"`
	DiscordName  string  `json:"discordName"`
}

func (r UpdateProfileRequest) Edits() Edits {
	return Edits(r)
}
