package models

import (
	"time"
)

// Collection names in the document store.
const (
	Users        = "users"
	Recruitments = "recruitments"
	Scrims       = "scrims"
	Events       = "events"
	Loadouts     = "loadouts"
)

// Boards lists the collections mirrored by sync channels.
var Boards = []string{Recruitments, Scrims, Events, Loadouts}

// UserProfile is keyed by the anonymous user id. ID is only stored when the
// profile is embedded into an applicant list.
type UserProfile struct {
	ID           string    `firestore:"id" json:"id,omitempty"`
	Name         string    `firestore:"name" json:"name"`
	Rank         string    `firestore:"rank" json:"rank"`
	Avatar       *string   `firestore:"avatar" json:"avatar"`
	GameName     string    `firestore:"gameName" json:"gameName"`
	TwitterName  string    `firestore:"twitterName" json:"twitterName"`
	ParallelName string    `firestore:"parallelName" json:"parallelName"`
	DiscordName  string    `firestore:"discordName" json:"discordName"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
}

type RecruitmentPost struct {
	ID         string        `firestore:"-" json:"id"`
	Host       string        `firestore:"host" json:"host"`
	HostID     string        `firestore:"hostId" json:"hostId"`
	HostAvatar *string       `firestore:"hostAvatar" json:"hostAvatar"`
	Mode       string        `firestore:"mode" json:"mode"`
	Rank       string        `firestore:"rank" json:"rank"`
	Needed     int           `firestore:"needed" json:"needed"`
	Mic        string        `firestore:"mic" json:"mic"`
	Roles      []string      `firestore:"roles" json:"roles"`
	Comment    string        `firestore:"comment" json:"comment"`
	Applicants []UserProfile `firestore:"applicants" json:"applicants"`
	Joined     bool          `firestore:"joined" json:"joined"`
	Timestamp  string        `firestore:"timestamp" json:"timestamp"`
	CreatedAt  time.Time     `firestore:"createdAt" json:"createdAt"`
}

type ScrimPost struct {
	ID         string        `firestore:"-" json:"id"`
	Host       string        `firestore:"host" json:"host"`
	HostID     string        `firestore:"hostId" json:"hostId"`
	Team       string        `firestore:"team" json:"team"`
	Time       string        `firestore:"time" json:"time"`
	Mode       string        `firestore:"mode" json:"mode"`
	Map        string        `firestore:"map" json:"map"`
	Rank       string        `firestore:"rank" json:"rank"`
	Comment    string        `firestore:"comment" json:"comment"`
	Status     string        `firestore:"status" json:"status"`
	Applied    bool          `firestore:"applied" json:"applied"`
	Applicants []UserProfile `firestore:"applicants" json:"applicants"`
	CreatedAt  time.Time     `firestore:"createdAt" json:"createdAt"`
}

type Event struct {
	ID        string    `firestore:"-" json:"id"`
	Name      string    `firestore:"name" json:"name"`
	Date      string    `firestore:"date" json:"date"`
	Type      string    `firestore:"type" json:"type"`
	Host      string    `firestore:"host" json:"host"`
	HostID    string    `firestore:"hostId" json:"hostId"`
	Joined    bool      `firestore:"joined" json:"joined"`
	Attendees []string  `firestore:"attendees" json:"attendees"`
	Desc      string    `firestore:"desc" json:"desc"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

type Loadout struct {
	ID        string    `firestore:"-" json:"id"`
	Title     string    `firestore:"title" json:"title"`
	Author    string    `firestore:"author" json:"author"`
	AuthorID  string    `firestore:"authorId" json:"authorId"`
	Image     *string   `firestore:"image" json:"image"`
	Likes     int       `firestore:"likes" json:"likes"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}
