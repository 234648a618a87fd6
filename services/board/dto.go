package board

import (
	"strings"
	"time"

	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/catalog"
	"github.com/gjc-app/board-sync/pkg/dataURI"
)

// Drafts carry only what the author fills in. Ids, host fields and timestamps
// are stamped by the gateway.

type RecruitmentDraft struct {
	Mode    string   `json:"mode" binding:"required"`
	Rank    string   `json:"rank" binding:"required"`
	Needed  int      `json:"needed" binding:"required"`
	Mic     string   `json:"mic"`
	Roles   []string `json:"roles"`
	Comment string   `json:"comment"`
}

type ScrimDraft struct {
	Team    string `json:"team"`
	Time    string `json:"time" binding:"required"`
	Mode    string `json:"mode" binding:"required"`
	Map     string `json:"map" binding:"required"`
	Rank    string `json:"rank" binding:"required"`
	Comment string `json:"comment"`
}

type EventDraft struct {
	Name string `json:"name"`
	Date string `json:"date"`
	Type string `json:"type" binding:"required"`
	Desc string `json:"desc"`
}

// LoadoutDraft.Image is an image data URI of the screenshot. Other data URIs are
// rejected, and anything that is not a data URI stores no image.
type LoadoutDraft struct {
	Title string  `json:"title"`
	Image *string `json:"image"`
}

// Filter narrows a board listing. Empty or 全て means no filter.
type Filter struct {
	Mode   string `form:"mode"`
	Status string `form:"status"`
}

func (d *RecruitmentDraft) validate() error {
	const op = "createRecruitment"
	d.Comment = strings.TrimSpace(d.Comment)
	if d.Mic == "" {
		d.Mic = catalog.MicOptional
	}
	switch {
	case d.Comment == "":
		return apperrors.Validation(op, "comment is required")
	case !catalog.IsMode(d.Mode):
		return apperrors.Validation(op, "unknown mode %q", d.Mode)
	case !catalog.IsRank(d.Rank):
		return apperrors.Validation(op, "unknown rank %q", d.Rank)
	case d.Needed < catalog.MinNeeded || d.Needed > catalog.MaxNeeded:
		return apperrors.Validation(op, "needed must be between %d and %d", catalog.MinNeeded, catalog.MaxNeeded)
	case !catalog.IsMic(d.Mic):
		return apperrors.Validation(op, "unknown mic setting %q", d.Mic)
	case len(d.Roles) > catalog.MaxRoles:
		return apperrors.Validation(op, "at most %d roles", catalog.MaxRoles)
	}
	seen := map[string]bool{}
	for _, r := range d.Roles {
		if !catalog.IsRole(r) || seen[r] {
			return apperrors.Validation(op, "invalid role %q", r)
		}
		seen[r] = true
	}
	return nil
}

func (d *ScrimDraft) validate() error {
	const op = "createScrim"
	d.Team = strings.TrimSpace(d.Team)
	if d.Team == "" {
		d.Team = catalog.DefaultTeam
	}
	switch {
	case !validClock(d.Time):
		return apperrors.Validation(op, "time must be HH:MM, got %q", d.Time)
	case !catalog.IsScrimMode(d.Mode):
		return apperrors.Validation(op, "unknown mode %q", d.Mode)
	case !catalog.IsMap(d.Map):
		return apperrors.Validation(op, "unknown map %q", d.Map)
	case !catalog.IsSkillLevel(d.Rank):
		return apperrors.Validation(op, "unknown skill level %q", d.Rank)
	}
	return nil
}

func (d *EventDraft) validate() error {
	const op = "createEvent"
	d.Name = strings.TrimSpace(d.Name)
	d.Date = strings.TrimSpace(d.Date)
	if d.Date == "" {
		d.Date = catalog.DefaultDate
	}
	d.Type = catalog.EventTypeToken(d.Type)
	switch {
	case d.Name == "":
		return apperrors.Validation(op, "name is required")
	case !catalog.IsEventType(d.Type):
		return apperrors.Validation(op, "unknown event type %q", d.Type)
	}
	return nil
}

func (d *LoadoutDraft) validate() error {
	d.Title = strings.TrimSpace(d.Title)
	switch {
	case d.Title == "":
		return apperrors.Validation("createLoadout", "title is required")
	case d.Image == nil || *d.Image == "":
		return apperrors.Validation("createLoadout", "image is required")
	case dataURI.IsDataURI(*d.Image) && !dataURI.IsLocalImage(*d.Image):
		return apperrors.Validation("createLoadout", "image must be an image")
	}
	return nil
}

func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil && len(v) == len("15:04")
}
