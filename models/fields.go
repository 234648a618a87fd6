package models

// Fields encode a model for the document store. createdAt is left to the
// writer, which stamps it with the server time on create.

func (p UserProfile) Fields() map[string]any {
	return map[string]any{
		"name":         p.Name,
		"rank":         p.Rank,
		"avatar":       p.Avatar,
		"gameName":     p.GameName,
		"twitterName":  p.TwitterName,
		"parallelName": p.ParallelName,
		"discordName":  p.DiscordName,
	}
}

// Snapshot is the copy of the profile embedded into an applicant list. Later
// profile edits do not reach it.
func (p UserProfile) Snapshot(userID string) map[string]any {
	fields := p.Fields()
	fields["id"] = userID
	if !p.CreatedAt.IsZero() {
		fields["createdAt"] = p.CreatedAt
	}
	return fields
}

func (r RecruitmentPost) Fields() map[string]any {
	return map[string]any{
		"host":       r.Host,
		"hostId":     r.HostID,
		"hostAvatar": r.HostAvatar,
		"mode":       r.Mode,
		"rank":       r.Rank,
		"needed":     r.Needed,
		"mic":        r.Mic,
		"roles":      nonNil(r.Roles),
		"comment":    r.Comment,
		"applicants": []any{},
		"joined":     r.Joined,
		"timestamp":  r.Timestamp,
	}
}

func (s ScrimPost) Fields() map[string]any {
	return map[string]any{
		"host":       s.Host,
		"hostId":     s.HostID,
		"team":       s.Team,
		"time":       s.Time,
		"mode":       s.Mode,
		"map":        s.Map,
		"rank":       s.Rank,
		"comment":    s.Comment,
		"status":     s.Status,
		"applied":    s.Applied,
		"applicants": []any{},
	}
}

func (e Event) Fields() map[string]any {
	return map[string]any{
		"name":      e.Name,
		"date":      e.Date,
		"type":      e.Type,
		"host":      e.Host,
		"hostId":    e.HostID,
		"joined":    e.Joined,
		"attendees": nonNil(e.Attendees),
		"desc":      e.Desc,
	}
}

func (l Loadout) Fields() map[string]any {
	return map[string]any{
		"title":    l.Title,
		"author":   l.Author,
		"authorId": l.AuthorID,
		"image":    l.Image,
		"likes":    l.Likes,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
