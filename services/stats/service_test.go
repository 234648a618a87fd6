package stats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/pkg/apperrors"
)

type fakeMirrors struct {
	recruitments []models.RecruitmentPost
	scrims       []models.ScrimPost
	events       []models.Event
	loadouts     []models.Loadout
	err          error
}

func (f fakeMirrors) Recruitments(ctx context.Context) ([]models.RecruitmentPost, error) {
	return f.recruitments, f.err
}

func (f fakeMirrors) Scrims(ctx context.Context) ([]models.ScrimPost, error) {
	return f.scrims, f.err
}

func (f fakeMirrors) Events(ctx context.Context) ([]models.Event, error) {
	return f.events, f.err
}

func (f fakeMirrors) Loadouts(ctx context.Context) ([]models.Loadout, error) {
	return f.loadouts, f.err
}

func TestGetSummary(t *testing.T) {
	mirrors := fakeMirrors{
		recruitments: []models.RecruitmentPost{
			{Mode: "ランクマッチ", Applicants: []models.UserProfile{{ID: "a"}, {ID: "b"}}},
			{Mode: "ランクマッチ"},
			{Mode: "カジュアル", Applicants: []models.UserProfile{{ID: "c"}}},
		},
		scrims: []models.ScrimPost{
			{Status: "募集中", Applicants: []models.UserProfile{{ID: "a"}}},
			{Status: "終了"},
		},
		events:   []models.Event{{Attendees: []string{"a", "b"}}},
		loadouts: []models.Loadout{{}, {}},
	}

	summary, err := NewStatsService(mirrors).GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, CollectionStats{Items: 3, Applicants: 3}, summary.Recruitments)
	assert.Equal(t, CollectionStats{Items: 2, Applicants: 1}, summary.Scrims)
	assert.Equal(t, CollectionStats{Items: 1, Applicants: 2}, summary.Events)
	assert.Equal(t, 2, summary.Loadouts.Items)
	assert.Equal(t, 1, summary.OpenScrims)
	assert.Equal(t, 2, summary.ByMode["ランクマッチ"])
	assert.Equal(t, 0, summary.ByMode["ゾンビモード"])
}

func TestSummaryHTTPStoreUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mirrors := fakeMirrors{err: apperrors.StoreUnavailable("subscribeCollection", errors.New("offline"))}
	NewHTTPHandler(HTTPOptions{Service: NewStatsService(mirrors), Router: r.Group("/stats/v1")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats/v1/summary", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
