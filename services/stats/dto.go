package stats

type Summary struct {
	Recruitments CollectionStats `json:"recruitments"`
	Scrims       CollectionStats `json:"scrims"`
	Events       CollectionStats `json:"events"`
	Loadouts     CollectionStats `json:"loadouts"`
	// OpenScrims counts scrims still 募集中.
	OpenScrims int `json:"openScrims"`
	// ByMode counts recruitments per game mode.
	ByMode map[string]int `json:"byMode"`
}

type CollectionStats struct {
	Items int `json:"items"`
	// Applicants is the number of applicant entries, or attendees for events.
	Applicants int `json:"applicants"`
}
