package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fastwell/backend/internal/weights"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) addWeightRequest(ctx context.Context, token string, entry weights.WeightEntry) weights.WeightEntry {
	t := s.T()

	entryJson, err := json.Marshal(entry)
	require.NoError(t, err)

	resp := s.request(ctx, "POST", "/weights", token, entryJson)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var added weights.WeightEntry
	s.readJSON(resp, &added)
	return added
}

func (s *IntegrationTestSuite) listWeightsRequest(ctx context.Context, token string, page, size int) weights.ListResponse {
	t := s.T()

	resp := s.request(ctx, "GET", fmt.Sprintf("/weights/page/%d/size/%d", page, size), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listResp weights.ListResponse
	s.readJSON(resp, &listResp)
	return listResp
}

func (s *IntegrationTestSuite) TestWeights() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.doLogin(ctx)
	now := time.Now()

	t.Run("nothing tracked yet", func(t *testing.T) {
		listResp := s.listWeightsRequest(ctx, token, 1, 10)
		assert.Equal(t, 0, listResp.Total)
		assert.Empty(t, listResp.Entries)
	})

	t.Run("invalid kilos", func(t *testing.T) {
		entryJson, err := json.Marshal(weights.WeightEntry{Kilos: -3})
		require.NoError(t, err)

		resp := s.request(ctx, "POST", "/weights", token, entryJson)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	var first, second weights.WeightEntry
	t.Run("track some weigh-ins", func(t *testing.T) {
		first = s.addWeightRequest(ctx, token, weights.WeightEntry{
			Kilos:     92.5,
			CreatedAt: now.Add(-48 * time.Hour),
			Notes:     "after the holidays",
		})
		assert.NotZero(t, first.ID)
		assert.Equal(t, 92.5, first.Kilos)

		second = s.addWeightRequest(ctx, token, weights.WeightEntry{
			Kilos:     91.0,
			CreatedAt: now,
		})
		assert.NotZero(t, second.ID)

		listResp := s.listWeightsRequest(ctx, token, 1, 10)
		require.Equal(t, 2, listResp.Total)
		require.Len(t, listResp.Entries, 2)
		// newest first
		assert.Equal(t, second.ID, listResp.Entries[0].ID)
		assert.Equal(t, first.ID, listResp.Entries[1].ID)
		assert.Equal(t, "after the holidays", listResp.Entries[1].Notes)
	})

	t.Run("goal progress from the latest weigh-in", func(t *testing.T) {
		goalJson, err := json.Marshal(weights.GoalProgressRequest{
			StartKilos: 93.0,
			GoalKilos:  85.0,
		})
		require.NoError(t, err)

		resp := s.request(ctx, "POST", "/weights/goal", token, goalJson)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var progressResp weights.GoalProgressResponse
		s.readJSON(resp, &progressResp)
		assert.Equal(t, 91.0, progressResp.CurrentKilos)
		assert.InDelta(t, 25.0, progressResp.Progress, 0.01)
	})

	t.Run("delete a weigh-in", func(t *testing.T) {
		resp := s.request(ctx, "DELETE", fmt.Sprintf("/weights/%d", first.ID), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var deleteResp weights.DeleteResponse
		s.readJSON(resp, &deleteResp)
		assert.Equal(t, first.ID, deleteResp.DeletedID)

		listResp := s.listWeightsRequest(ctx, token, 1, 10)
		require.Equal(t, 1, listResp.Total)
		assert.Equal(t, second.ID, listResp.Entries[0].ID)
	})

	t.Run("delete something that is not there", func(t *testing.T) {
		resp := s.request(ctx, "DELETE", "/weights/424242", token, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
