package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fastwell/backend/internal/achievements"
	"github.com/fastwell/backend/internal/fasting"
	"github.com/fastwell/backend/internal/rewards"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) startFastRequest(
	ctx context.Context,
	token string,
	startReq fasting.StartFastRequest,
	expectedStatusCode int,
) *fasting.Session {
	t := s.T()

	reqJson, err := json.Marshal(startReq)
	require.NoError(t, err)

	resp := s.request(ctx, "POST", "/fasting/start", token, reqJson)
	require.Equal(t, expectedStatusCode, resp.StatusCode)
	if expectedStatusCode != http.StatusCreated {
		resp.Body.Close()
		return nil
	}

	var session fasting.Session
	s.readJSON(resp, &session)
	return &session
}

func (s *IntegrationTestSuite) currentFastRequest(ctx context.Context, token string) fasting.SessionSnapshot {
	t := s.T()

	resp := s.request(ctx, "GET", "/fasting/current", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot fasting.SessionSnapshot
	s.readJSON(resp, &snapshot)
	return snapshot
}

func (s *IntegrationTestSuite) pauseFastRequest(ctx context.Context, token string) bool {
	t := s.T()

	resp := s.request(ctx, "POST", "/fasting/pause", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pauseResp fasting.PauseFastResponse
	s.readJSON(resp, &pauseResp)
	return pauseResp.Paused
}

func (s *IntegrationTestSuite) fastingHistoryRequest(ctx context.Context, token string, page, size int) fasting.HistoryResponse {
	t := s.T()

	resp := s.request(ctx, "GET", fmt.Sprintf("/fasting/history/page/%d/size/%d", page, size), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var historyResp fasting.HistoryResponse
	s.readJSON(resp, &historyResp)
	return historyResp
}

func (s *IntegrationTestSuite) fastingStatsRequest(ctx context.Context, token string) fasting.Stats {
	t := s.T()

	resp := s.request(ctx, "GET", "/fasting/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats fasting.Stats
	s.readJSON(resp, &stats)
	return stats
}

func (s *IntegrationTestSuite) TestFasting() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.doLogin(ctx)

	t.Run("no fast running yet", func(t *testing.T) {
		snapshot := s.currentFastRequest(ctx, token)
		assert.False(t, snapshot.IsActive)
		assert.Nil(t, snapshot.Session)
	})

	t.Run("unknown plan without a duration", func(t *testing.T) {
		s.startFastRequest(ctx, token, fasting.StartFastRequest{
			PlanType: "21:3",
		}, http.StatusBadRequest)
	})

	var startedID string
	t.Run("start a classic fast", func(t *testing.T) {
		session := s.startFastRequest(ctx, token, fasting.StartFastRequest{
			PlanType: fasting.PlanClassic,
		}, http.StatusCreated)
		require.NotNil(t, session)

		assert.NotEmpty(t, session.ID)
		assert.Equal(t, fasting.PlanClassic, session.PlanType)
		assert.Equal(t, 16*60*60, session.DurationSeconds)
		assert.False(t, session.Completed)
		assert.Zero(t, session.TotalPausedSeconds)
		assert.Nil(t, session.EndTime)
		startedID = session.ID

		snapshot := s.currentFastRequest(ctx, token)
		require.NotNil(t, snapshot.Session)
		assert.True(t, snapshot.IsActive)
		assert.False(t, snapshot.IsPaused)
		assert.Equal(t, startedID, snapshot.Session.ID)
		assert.Equal(t, fasting.PhaseDigestion, snapshot.Phase)
		assert.NotEmpty(t, snapshot.Clock)
		assert.Greater(t, snapshot.TimeRemaining, 16*60*60-30)
		assert.Less(t, snapshot.Progress, 1.0)
	})

	t.Run("pause and resume", func(t *testing.T) {
		require.True(t, s.pauseFastRequest(ctx, token))

		snapshot := s.currentFastRequest(ctx, token)
		assert.True(t, snapshot.IsActive)
		assert.True(t, snapshot.IsPaused)

		require.False(t, s.pauseFastRequest(ctx, token))

		snapshot = s.currentFastRequest(ctx, token)
		assert.False(t, snapshot.IsPaused)
	})

	t.Run("stop the fast early", func(t *testing.T) {
		stopJson, err := json.Marshal(fasting.StopParams{
			Mood:   "hungry",
			Energy: 3,
			Notes:  "bailed before lunch",
		})
		require.NoError(t, err)

		resp := s.request(ctx, "POST", "/fasting/stop", token, stopJson)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var session fasting.Session
		s.readJSON(resp, &session)
		assert.Equal(t, startedID, session.ID)
		assert.False(t, session.Completed)
		require.NotNil(t, session.EndTime)
		assert.Equal(t, "hungry", session.Mood)
		assert.Equal(t, 3, session.Energy)

		snapshot := s.currentFastRequest(ctx, token)
		assert.False(t, snapshot.IsActive)

		historyResp := s.fastingHistoryRequest(ctx, token, 1, 10)
		require.Equal(t, 1, historyResp.Total)
		require.Len(t, historyResp.Sessions, 1)
		assert.Equal(t, startedID, historyResp.Sessions[0].ID)
		assert.False(t, historyResp.Sessions[0].Completed)

		stats := s.fastingStatsRequest(ctx, token)
		assert.Equal(t, 1, stats.TotalSessions)
		assert.Equal(t, 0, stats.CompletedSessions)
		assert.Zero(t, stats.CurrentStreakDays)
	})

	t.Run("stop without an active fast", func(t *testing.T) {
		resp := s.request(ctx, "POST", "/fasting/stop", token, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp2 := s.request(ctx, "POST", "/fasting/pause", token, nil)
		defer resp2.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	})

	t.Run("a short fast runs to completion", func(t *testing.T) {
		session := s.startFastRequest(ctx, token, fasting.StartFastRequest{
			PlanType:        fasting.PlanClassic,
			DurationSeconds: 2,
		}, http.StatusCreated)
		require.NotNil(t, session)
		assert.Equal(t, 2, session.DurationSeconds)

		// the countdown ticks once a second, give it a moment to run out
		require.Eventually(t, func() bool {
			return !s.currentFastRequest(ctx, token).IsActive
		}, 10*time.Second, 250*time.Millisecond)

		historyResp := s.fastingHistoryRequest(ctx, token, 1, 10)
		require.Equal(t, 2, historyResp.Total)
		assert.Equal(t, session.ID, historyResp.Sessions[0].ID)
		assert.True(t, historyResp.Sessions[0].Completed)

		stats := s.fastingStatsRequest(ctx, token)
		assert.Equal(t, 2, stats.TotalSessions)
		assert.Equal(t, 1, stats.CompletedSessions)
		assert.Equal(t, 1, stats.CurrentStreakDays)
		assert.InDelta(t, 50.0, stats.AverageCompletion, 0.01)
	})

	t.Run("completion pays out points", func(t *testing.T) {
		resp := s.request(ctx, "GET", "/rewards", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var userRewards rewards.UserRewards
		s.readJSON(resp, &userRewards)
		assert.Equal(t, 50, userRewards.TotalPoints)
		assert.Equal(t, 1, userRewards.Level)
	})

	t.Run("completion unlocks the first achievement", func(t *testing.T) {
		resp := s.request(ctx, "GET", "/achievements", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listResp achievements.ListResponse
		s.readJSON(resp, &listResp)
		require.Len(t, listResp.Achievements, 1)
		assert.Equal(t, achievements.FirstFast, listResp.Achievements[0].ID)
		assert.Equal(t, "First Fast", listResp.Achievements[0].Title)
		assert.False(t, listResp.Achievements[0].UnlockedAt.IsZero())
	})
}
