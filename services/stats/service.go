package stats

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/pkg/catalog"
	"github.com/gjc-app/board-sync/pkg/logger"
)

// Mirrors gives the current contents of the board collections.
type Mirrors interface {
	Recruitments(ctx context.Context) ([]models.RecruitmentPost, error)
	Scrims(ctx context.Context) ([]models.ScrimPost, error)
	Events(ctx context.Context) ([]models.Event, error)
	Loadouts(ctx context.Context) ([]models.Loadout, error)
}

type StatsService struct {
	mirrors Mirrors
	log     zerolog.Logger
}

func NewStatsService(mirrors Mirrors) *StatsService {
	return &StatsService{
		mirrors: mirrors,
		log:     logger.Component("stats"),
	}
}

// GetSummary counts the board from the live mirrors. It never queries the store directly.
func (s *StatsService) GetSummary(ctx context.Context) (*Summary, error) {
	recruitments, err := s.mirrors.Recruitments(ctx)
	if err != nil {
		return nil, err
	}
	scrims, err := s.mirrors.Scrims(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.mirrors.Events(ctx)
	if err != nil {
		return nil, err
	}
	loadouts, err := s.mirrors.Loadouts(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{ByMode: make(map[string]int, len(catalog.Modes))}
	for _, m := range catalog.Modes {
		summary.ByMode[m] = 0
	}

	summary.Recruitments.Items = len(recruitments)
	for _, r := range recruitments {
		summary.Recruitments.Applicants += len(r.Applicants)
		summary.ByMode[r.Mode]++
	}

	summary.Scrims.Items = len(scrims)
	for _, sc := range scrims {
		summary.Scrims.Applicants += len(sc.Applicants)
		if sc.Status == catalog.ScrimOpen {
			summary.OpenScrims++
		}
	}

	summary.Events.Items = len(events)
	for _, e := range events {
		summary.Events.Applicants += len(e.Attendees)
	}

	summary.Loadouts.Items = len(loadouts)

	s.log.Debug().
		Int("recruitments", summary.Recruitments.Items).
		Int("scrims", summary.Scrims.Items).
		Int("events", summary.Events.Items).
		Int("loadouts", summary.Loadouts.Items).
		Msg("summary computed")
	return summary, nil
}
