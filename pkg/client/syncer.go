package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dotakeeper/keeper-common/pkg/domain"
	kerrors "github.com/dotakeeper/keeper-common/pkg/errors"
	"github.com/dotakeeper/keeper-common/pkg/items"
	"github.com/dotakeeper/keeper-common/pkg/repository"
)

// Syncer pulls matches from the provider into the store and runs the
// replay-parse pipeline that upgrades a match from unparsed to parsed.
type Syncer struct {
	provider MatchProvider
	store    repository.Store
	logger   *slog.Logger
}

func NewSyncer(provider MatchProvider, store repository.Store, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{provider: provider, store: store, logger: logger}
}

// Refresh fetches the player's recent matches and stores the ones not seen
// before. New matches start unparsed. Returns how many were inserted.
func (s *Syncer) Refresh(ctx context.Context, steamID string, limit int) (int, error) {
	matches, err := s.provider.RecentMatches(ctx, steamID, limit)
	if err != nil {
		return 0, kerrors.ErrProviderError("refresh recent matches", err)
	}
	return s.storeNew(ctx, matches)
}

// Backfill walks further into the past, fetching matches older than the
// oldest one stored. With an empty store it backfills from now.
func (s *Syncer) Backfill(ctx context.Context, steamID string, limit int, now int64) (int, error) {
	before := now
	oldest, err := s.store.OldestMatchStart(ctx)
	if err != nil {
		return 0, err
	}
	if oldest != nil {
		before = *oldest
	}

	matches, err := s.provider.MatchesBefore(ctx, steamID, before, limit)
	if err != nil {
		return 0, kerrors.ErrProviderError("backfill matches", err)
	}
	return s.storeNew(ctx, matches)
}

func (s *Syncer) storeNew(ctx context.Context, matches []*domain.Match) (int, error) {
	inserted := 0
	for _, m := range matches {
		exists, err := s.store.MatchExists(ctx, m.ID)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}
		if err := s.store.InsertMatch(ctx, m); err != nil {
			return inserted, err
		}
		inserted++
	}
	if inserted > 0 {
		s.logger.Info("stored new matches", "count", inserted)
	}
	return inserted, nil
}

// ParseMatch runs the full parse pipeline for one match: request the
// replay parse upstream, fetch the detailed match, and store the
// per-minute series, lane info, and item timings. The match moves to
// parsing first and ends parsed or failed; a failed match can be retried.
func (s *Syncer) ParseMatch(ctx context.Context, matchID int64, steamID string) error {
	accountID, err := SteamID64ToID32(steamID)
	if err != nil {
		return err
	}

	exists, err := s.store.MatchExists(ctx, matchID)
	if err != nil {
		return err
	}
	if !exists {
		return kerrors.ErrMatchNotFound(matchID)
	}

	if err := s.store.UpdateParseState(ctx, matchID, domain.ParseStateParsing); err != nil {
		return err
	}

	if err := s.ingestDetails(ctx, matchID, accountID); err != nil {
		if stateErr := s.store.UpdateParseState(ctx, matchID, domain.ParseStateFailed); stateErr != nil {
			s.logger.Error("failed to mark match failed", "match_id", matchID, "error", stateErr)
		}
		return err
	}

	if err := s.store.UpdateParseState(ctx, matchID, domain.ParseStateParsed); err != nil {
		return err
	}
	s.logger.Info("parsed match", "match_id", matchID)
	return nil
}

func (s *Syncer) ingestDetails(ctx context.Context, matchID, accountID int64) error {
	if err := s.provider.RequestParse(ctx, matchID); err != nil {
		return kerrors.ErrProviderError("request parse", err)
	}

	details, err := s.provider.MatchDetails(ctx, matchID)
	if err != nil {
		return kerrors.ErrProviderError("fetch match details", err)
	}

	player := findPlayer(details, accountID)
	if player == nil {
		return kerrors.NewKeeperError(kerrors.ErrCodeParseFailed,
			fmt.Sprintf("player %d not in match %d", accountID, matchID), nil)
	}
	if len(player.LastHitTimes) == 0 {
		return kerrors.NewKeeperError(kerrors.ErrCodeParseFailed,
			fmt.Sprintf("match %d has no per-minute data yet", matchID), nil)
	}

	if err := s.storeCSSeries(ctx, matchID, player); err != nil {
		return err
	}
	if err := s.storeNetworthSeries(ctx, matchID, details); err != nil {
		return err
	}
	if err := s.storeLaneInfo(ctx, matchID, details, player); err != nil {
		return err
	}
	return s.storeItemTimings(ctx, matchID, player)
}

func findPlayer(details *MatchDetails, accountID int64) *MatchPlayer {
	for i := range details.Players {
		p := &details.Players[i]
		if p.AccountID != nil && *p.AccountID == accountID {
			return p
		}
	}
	return nil
}

func (s *Syncer) storeCSSeries(ctx context.Context, matchID int64, player *MatchPlayer) error {
	samples := make([]domain.CSSample, 0, len(player.LastHitTimes))
	for minute, lh := range player.LastHitTimes {
		denies := 0
		if minute < len(player.DenyTimes) {
			denies = player.DenyTimes[minute]
		}
		samples = append(samples, domain.CSSample{
			MatchID:  matchID,
			Minute:   minute,
			LastHits: lh,
			Denies:   denies,
		})
	}
	return s.store.ReplaceCSSeries(ctx, matchID, samples)
}

// storeNetworthSeries keeps every player's net worth curve so lane
// partners can be compared later.
func (s *Syncer) storeNetworthSeries(ctx context.Context, matchID int64, details *MatchDetails) error {
	var samples []domain.NetworthSample
	for i := range details.Players {
		p := &details.Players[i]
		for minute, nw := range p.NetWorthTimes {
			samples = append(samples, domain.NetworthSample{
				MatchID:    matchID,
				PlayerSlot: p.PlayerSlot,
				Minute:     minute,
				Networth:   nw,
			})
		}
	}
	if len(samples) == 0 {
		return nil
	}
	return s.store.ReplaceNetworthSeries(ctx, matchID, samples)
}

func (s *Syncer) storeLaneInfo(ctx context.Context, matchID int64, details *MatchDetails, player *MatchPlayer) error {
	if role := roleFromLane(player.LaneRole); role != domain.RoleUnknown {
		if err := s.store.UpdateMatchRole(ctx, matchID, role); err != nil {
			return err
		}
	}

	if partner := lanePartner(details, player); partner != nil {
		if err := s.store.UpdatePartnerSlot(ctx, matchID, partner.PlayerSlot); err != nil {
			return err
		}
	}
	return nil
}

// roleFromLane maps the provider's lane_role codes onto our positions.
// Code 4 is the roaming/jungle slot, closest to a soft support.
func roleFromLane(laneRole *int) domain.Role {
	if laneRole == nil {
		return domain.RoleUnknown
	}
	switch *laneRole {
	case 1:
		return domain.RoleCarry
	case 2:
		return domain.RoleMid
	case 3:
		return domain.RoleOfflane
	case 4:
		return domain.RoleSoftSupport
	default:
		return domain.RoleUnknown
	}
}

// lanePartner finds a teammate who laned alongside the tracked player.
func lanePartner(details *MatchDetails, player *MatchPlayer) *MatchPlayer {
	if player.Lane == nil {
		return nil
	}
	for i := range details.Players {
		p := &details.Players[i]
		if p.PlayerSlot == player.PlayerSlot || p.IsRadiant() != player.IsRadiant() {
			continue
		}
		if p.Lane != nil && *p.Lane == *player.Lane {
			return p
		}
	}
	return nil
}

// storeItemTimings records the first purchase of each known item. Pregame
// purchases clamp to zero, and repeat purchases keep the earliest time.
func (s *Syncer) storeItemTimings(ctx context.Context, matchID int64, player *MatchPlayer) error {
	for _, purchase := range player.PurchaseLog {
		itemID, ok := items.LookupID(purchase.Key)
		if !ok {
			continue
		}
		seconds := purchase.Time
		if seconds < 0 {
			seconds = 0
		}
		err := s.store.UpsertItemTiming(ctx, domain.ItemTiming{
			MatchID: matchID,
			ItemID:  itemID,
			Seconds: seconds,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
