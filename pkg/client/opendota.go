// Package client talks to the OpenDota REST API and drives the match sync
// and replay-parse pipeline against the local store.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dotakeeper/keeper-common/pkg/domain"
)

const DefaultBaseURL = "https://api.opendota.com/api"

// steamID64Base is the offset between a 64-bit Steam ID and the 32-bit
// account ID OpenDota keys players by.
const steamID64Base = 76561197960265728

// APIError is a non-2xx response from OpenDota, carrying the HTTP status
// for retry classification.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opendota: %s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

// NotFoundError indicates the player or match does not exist upstream.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return "opendota: not found: " + e.Resource
}

func (e *NotFoundError) HTTPStatusCode() int {
	return http.StatusNotFound
}

// RateLimitError indicates the free-tier request budget is exhausted.
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "opendota: rate limited"
}

func (e *RateLimitError) HTTPStatusCode() int {
	return http.StatusTooManyRequests
}

// HTTPStatusCodeError is implemented by errors that carry an HTTP status.
type HTTPStatusCodeError interface {
	error
	HTTPStatusCode() int
}

// IsRetryableHTTPStatus reports whether a status code is worth retrying.
// Client errors are final; timeouts, rate limits, and server errors are not.
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	if statusCode >= 400 && statusCode < 500 {
		return false
	}
	return true
}

// IsRetryableError classifies an error from the provider. Errors carrying
// an HTTP status are classified by it; everything else (timeouts, refused
// connections, DNS failures) is assumed transient, except a few message
// patterns that signal permanent client mistakes.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr HTTPStatusCodeError
	if errors.As(err, &httpErr) {
		return IsRetryableHTTPStatus(httpErr.HTTPStatusCode())
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"not found", "invalid steam id", "bad request"} {
		if strings.Contains(msg, pattern) {
			return false
		}
	}
	return true
}

// SteamID64ToID32 converts a 64-bit Steam ID string to the 32-bit account
// ID. Values already below the 64-bit base pass through unchanged.
func SteamID64ToID32(steamID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(steamID), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid steam id %q", steamID)
	}
	if id < steamID64Base {
		return id, nil
	}
	return id - steamID64Base, nil
}

// PurchaseEvent is one item purchase from a parsed replay. Time is seconds
// from game start and can be negative during the pregame phase.
type PurchaseEvent struct {
	Time int    `json:"time"`
	Key  string `json:"key"`
}

// MatchPlayer is one player's slice of a detailed match. The per-minute
// series are only present once the replay has been parsed.
type MatchPlayer struct {
	AccountID     *int64          `json:"account_id"`
	PlayerSlot    int             `json:"player_slot"`
	LaneRole      *int            `json:"lane_role"`
	Lane          *int            `json:"lane"`
	LastHitTimes  []int           `json:"lh_t"`
	DenyTimes     []int           `json:"dn_t"`
	NetWorthTimes []int           `json:"net_worth"`
	PurchaseLog   []PurchaseEvent `json:"purchase_log"`
}

// IsRadiant reports the player's side from the slot convention.
func (p *MatchPlayer) IsRadiant() bool {
	return p.PlayerSlot < 128
}

// MatchDetails is the full per-player view of one match.
type MatchDetails struct {
	MatchID int64         `json:"match_id"`
	Players []MatchPlayer `json:"players"`
}

// MatchProvider is the upstream source of match data. OpenDotaClient is
// the production implementation; tests substitute a fake.
type MatchProvider interface {
	// RecentMatches returns the player's latest matches, newest first.
	RecentMatches(ctx context.Context, steamID string, limit int) ([]*domain.Match, error)

	// MatchesBefore pages back through history for matches that started
	// before the given timestamp, newest first.
	MatchesBefore(ctx context.Context, steamID string, before int64, limit int) ([]*domain.Match, error)

	// RequestParse asks the provider to parse the match replay.
	RequestParse(ctx context.Context, matchID int64) error

	// MatchDetails fetches the per-player detail for a match.
	MatchDetails(ctx context.Context, matchID int64) (*MatchDetails, error)
}

// OpenDotaClient implements MatchProvider against the public OpenDota API.
type OpenDotaClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	// sleep paces paged history requests to stay under the free-tier rate
	// limit. Tests replace it.
	sleep func(time.Duration)
}

func NewOpenDotaClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *OpenDotaClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenDotaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// apiMatch is the summary-level match payload. Several fields are absent
// for very old matches, so they decode through pointers.
type apiMatch struct {
	MatchID     int64 `json:"match_id"`
	HeroID      int   `json:"hero_id"`
	StartTime   int64 `json:"start_time"`
	Duration    int   `json:"duration"`
	GameMode    int   `json:"game_mode"`
	LobbyType   int   `json:"lobby_type"`
	RadiantWin  *bool `json:"radiant_win"`
	PlayerSlot  int   `json:"player_slot"`
	Kills       int   `json:"kills"`
	Deaths      int   `json:"deaths"`
	Assists     int   `json:"assists"`
	XPPerMin    *int  `json:"xp_per_min"`
	GoldPerMin  *int  `json:"gold_per_min"`
	LastHits    *int  `json:"last_hits"`
	Denies      *int  `json:"denies"`
	HeroDamage  *int  `json:"hero_damage"`
	TowerDamage *int  `json:"tower_damage"`
	HeroHealing *int  `json:"hero_healing"`
}

func (m *apiMatch) toDomain() *domain.Match {
	return &domain.Match{
		ID:          m.MatchID,
		HeroID:      m.HeroID,
		PlayerSlot:  m.PlayerSlot,
		RadiantWin:  m.RadiantWin != nil && *m.RadiantWin,
		Duration:    m.Duration,
		GameMode:    m.GameMode,
		LobbyType:   m.LobbyType,
		StartTime:   m.StartTime,
		Kills:       m.Kills,
		Deaths:      m.Deaths,
		Assists:     m.Assists,
		GPM:         intOrZero(m.GoldPerMin),
		XPM:         intOrZero(m.XPPerMin),
		HeroDamage:  intOrZero(m.HeroDamage),
		TowerDamage: intOrZero(m.TowerDamage),
		HeroHealing: intOrZero(m.HeroHealing),
		LastHits:    intOrZero(m.LastHits),
		Denies:      intOrZero(m.Denies),
		ParseState:  domain.ParseStateUnparsed,
	}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func (c *OpenDotaClient) RecentMatches(ctx context.Context, steamID string, limit int) ([]*domain.Match, error) {
	accountID, err := SteamID64ToID32(steamID)
	if err != nil {
		return nil, err
	}

	var raw []apiMatch
	url := fmt.Sprintf("%s/players/%d/recentMatches", c.baseURL, accountID)
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}
	matches := make([]*domain.Match, 0, len(raw))
	for i := range raw {
		matches = append(matches, raw[i].toDomain())
	}
	return matches, nil
}

// matchesBeforeWindow is how many days each history page steps back, and
// matchesBeforeMaxPages bounds the walk at roughly a year.
const (
	matchesBeforeWindow   = 30
	matchesBeforeMaxPages = 12
)

func (c *OpenDotaClient) MatchesBefore(ctx context.Context, steamID string, before int64, limit int) ([]*domain.Match, error) {
	accountID, err := SteamID64ToID32(steamID)
	if err != nil {
		return nil, err
	}

	var collected []*domain.Match
	days := before / 86400

	for page := 0; page < matchesBeforeMaxPages && len(collected) < limit; page++ {
		url := fmt.Sprintf("%s/players/%d/matches?limit=100&date=%d&lobby_type=0,7",
			c.baseURL, accountID, days)

		var raw []apiMatch
		if err := c.getJSON(ctx, url, &raw); err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			break
		}

		for i := range raw {
			if raw[i].StartTime < before {
				collected = append(collected, raw[i].toDomain())
				if len(collected) >= limit {
					break
				}
			}
		}

		days -= matchesBeforeWindow
		c.sleep(300 * time.Millisecond)
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].StartTime > collected[j].StartTime
	})
	if len(collected) > limit {
		collected = collected[:limit]
	}
	return collected, nil
}

func (c *OpenDotaClient) RequestParse(ctx context.Context, matchID int64) error {
	url := fmt.Sprintf("%s/request/%d", c.baseURL, matchID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, fmt.Sprintf("parse request for match %d", matchID))
	}
	return nil
}

func (c *OpenDotaClient) MatchDetails(ctx context.Context, matchID int64) (*MatchDetails, error) {
	var details MatchDetails
	url := fmt.Sprintf("%s/matches/%d", c.baseURL, matchID)
	if err := c.getJSON(ctx, url, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *OpenDotaClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return statusError(resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func statusError(code int, detail string) error {
	switch code {
	case http.StatusNotFound:
		return &NotFoundError{Resource: detail}
	case http.StatusTooManyRequests:
		return &RateLimitError{}
	default:
		return &APIError{StatusCode: code, Message: detail}
	}
}
