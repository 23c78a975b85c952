package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *OpenDotaClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewOpenDotaClient(server.URL, server.Client(), nil)
	c.sleep = func(time.Duration) {}
	return c
}

func TestSteamID64ToID32(t *testing.T) {
	tests := []struct {
		name    string
		steamID string
		want    int64
		wantErr bool
	}{
		{name: "full 64-bit id", steamID: "76561197960265728", want: 0},
		{name: "typical id", steamID: "76561198012345678", want: 52079950},
		{name: "already 32-bit", steamID: "52079950", want: 52079950},
		{name: "whitespace tolerated", steamID: " 52079950 ", want: 52079950},
		{name: "garbage", steamID: "not-a-number", wantErr: true},
		{name: "empty", steamID: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SteamID64ToID32(tt.steamID)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecentMatches(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/players/52079950/recentMatches", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"match_id": 9001, "hero_id": 14, "start_time": 1756000000, "duration": 2400,
			 "game_mode": 22, "lobby_type": 7, "radiant_win": true, "player_slot": 2,
			 "kills": 10, "deaths": 3, "assists": 15, "gold_per_min": 520,
			 "xp_per_min": 600, "last_hits": 250, "denies": 14,
			 "hero_damage": 21000, "tower_damage": 4000, "hero_healing": 0},
			{"match_id": 9000, "hero_id": 99, "start_time": 1755990000, "duration": 1800,
			 "game_mode": 23, "lobby_type": 0, "player_slot": 130,
			 "kills": 4, "deaths": 6, "assists": 9}
		]`))
	})
	c := newTestClient(t, handler)

	matches, err := c.RecentMatches(context.Background(), "76561198012345678", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	first := matches[0]
	assert.Equal(t, int64(9001), first.ID)
	assert.Equal(t, 14, first.HeroID)
	assert.True(t, first.RadiantWin)
	assert.Equal(t, 520, first.GPM)
	assert.True(t, first.IsWin())

	// Missing optional fields decode to zero, absent radiant_win to false.
	second := matches[1]
	assert.Equal(t, 0, second.GPM)
	assert.False(t, second.RadiantWin)
	assert.True(t, second.IsWin())
}

func TestRecentMatches_LimitTruncates(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"match_id": 3}, {"match_id": 2}, {"match_id": 1}
		]`))
	})
	c := newTestClient(t, handler)

	matches, err := c.RecentMatches(context.Background(), "52079950", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(3), matches[0].ID)
}

func TestMatchesBefore_PagesBack(t *testing.T) {
	var dates []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dates = append(dates, r.URL.Query().Get("date"))
		switch len(dates) {
		case 1:
			// One match after the cutoff, one before.
			_, _ = w.Write([]byte(`[
				{"match_id": 20, "start_time": 1756000500},
				{"match_id": 19, "start_time": 1755999000}
			]`))
		case 2:
			_, _ = w.Write([]byte(`[{"match_id": 18, "start_time": 1754000000}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})
	c := newTestClient(t, handler)

	matches, err := c.MatchesBefore(context.Background(), "52079950", 1756000000, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Newest first, nothing at or after the cutoff.
	assert.Equal(t, int64(19), matches[0].ID)
	assert.Equal(t, int64(18), matches[1].ID)

	// The second page stepped 30 days further back.
	require.Len(t, dates, 2)
	assert.Equal(t, "20324", dates[0])
	assert.Equal(t, "20294", dates[1])
}

func TestRequestParse(t *testing.T) {
	var method, path string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = w.Write([]byte(`{"job": {"jobId": 42}}`))
	})
	c := newTestClient(t, handler)

	require.NoError(t, c.RequestParse(context.Background(), 9001))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/request/9001", path)
}

func TestMatchDetails(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches/9001", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"match_id": 9001,
			"players": [
				{"account_id": 52079950, "player_slot": 2, "lane_role": 1, "lane": 1,
				 "lh_t": [0, 5, 11], "dn_t": [0, 1, 2], "net_worth": [600, 900, 1400],
				 "purchase_log": [{"time": -60, "key": "quelling_blade"}, {"time": 720, "key": "blink"}]},
				{"player_slot": 130, "lane_role": 2}
			]
		}`))
	})
	c := newTestClient(t, handler)

	details, err := c.MatchDetails(context.Background(), 9001)
	require.NoError(t, err)
	assert.Equal(t, int64(9001), details.MatchID)
	require.Len(t, details.Players, 2)

	p := details.Players[0]
	require.NotNil(t, p.AccountID)
	assert.Equal(t, int64(52079950), *p.AccountID)
	assert.Equal(t, []int{0, 5, 11}, p.LastHitTimes)
	assert.Equal(t, []int{600, 900, 1400}, p.NetWorthTimes)
	require.Len(t, p.PurchaseLog, 2)
	assert.Equal(t, "blink", p.PurchaseLog[1].Key)

	// Anonymous players decode with a nil account id.
	assert.Nil(t, details.Players[1].AccountID)
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "404 is typed not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var nf *NotFoundError
				assert.ErrorAs(t, err, &nf)
				assert.False(t, IsRetryableError(err))
			},
		},
		{
			name:   "429 is retryable rate limit",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				assert.ErrorAs(t, err, &rl)
				assert.True(t, IsRetryableError(err))
			},
		},
		{
			name:   "500 is retryable api error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var api *APIError
				assert.ErrorAs(t, err, &api)
				assert.Equal(t, http.StatusInternalServerError, api.StatusCode)
				assert.True(t, IsRetryableError(err))
			},
		},
		{
			name:   "400 is final",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				assert.False(t, IsRetryableError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			_, err := c.RecentMatches(context.Background(), "52079950", 5)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestIsRetryableError_Plain(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.True(t, IsRetryableError(errors.New("connection refused")))
	assert.False(t, IsRetryableError(errors.New("invalid steam id \"x\"")))
}
