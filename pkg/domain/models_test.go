package domain

import "testing"

func TestParseState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state ParseState
		want  bool
	}{
		{
			name:  "unparsed is valid",
			state: ParseStateUnparsed,
			want:  true,
		},
		{
			name:  "parsing is valid",
			state: ParseStateParsing,
			want:  true,
		},
		{
			name:  "parsed is valid",
			state: ParseStateParsed,
			want:  true,
		},
		{
			name:  "failed is valid",
			state: ParseStateFailed,
			want:  true,
		},
		{
			name:  "invalid state",
			state: ParseState("invalid"),
			want:  false,
		},
		{
			name:  "empty state",
			state: ParseState(""),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.want {
				t.Errorf("ParseState.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from ParseState
		to   ParseState
		want bool
	}{
		{
			name: "unparsed to parsing",
			from: ParseStateUnparsed,
			to:   ParseStateParsing,
			want: true,
		},
		{
			name: "unparsed directly to parsed is forbidden",
			from: ParseStateUnparsed,
			to:   ParseStateParsed,
			want: false,
		},
		{
			name: "parsing to parsed",
			from: ParseStateParsing,
			to:   ParseStateParsed,
			want: true,
		},
		{
			name: "parsing to failed",
			from: ParseStateParsing,
			to:   ParseStateFailed,
			want: true,
		},
		{
			name: "parsing back to unparsed for crash recovery",
			from: ParseStateParsing,
			to:   ParseStateUnparsed,
			want: true,
		},
		{
			name: "failed may retry to parsing",
			from: ParseStateFailed,
			to:   ParseStateParsing,
			want: true,
		},
		{
			name: "parsed is terminal",
			from: ParseStateParsed,
			to:   ParseStateParsing,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestRole_Groups(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		core    bool
		support bool
	}{
		{name: "carry is core", role: RoleCarry, core: true, support: false},
		{name: "mid is core", role: RoleMid, core: true, support: false},
		{name: "offlane is core", role: RoleOfflane, core: true, support: false},
		{name: "soft support is support", role: RoleSoftSupport, core: false, support: true},
		{name: "hard support is support", role: RoleHardSupport, core: false, support: true},
		{name: "unknown is neither", role: RoleUnknown, core: false, support: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.IsCore(); got != tt.core {
				t.Errorf("Role.IsCore() = %v, want %v", got, tt.core)
			}
			if got := tt.role.IsSupport(); got != tt.support {
				t.Errorf("Role.IsSupport() = %v, want %v", got, tt.support)
			}
		})
	}
}

func TestMatch_IsWin(t *testing.T) {
	tests := []struct {
		name       string
		playerSlot int
		radiantWin bool
		want       bool
	}{
		{
			name:       "radiant player, radiant win",
			playerSlot: 2,
			radiantWin: true,
			want:       true,
		},
		{
			name:       "radiant player, dire win",
			playerSlot: 2,
			radiantWin: false,
			want:       false,
		},
		{
			name:       "dire player, radiant win",
			playerSlot: 130,
			radiantWin: true,
			want:       false,
		},
		{
			name:       "dire player, dire win",
			playerSlot: 130,
			radiantWin: false,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Match{PlayerSlot: tt.playerSlot, RadiantWin: tt.radiantWin}
			if got := m.IsWin(); got != tt.want {
				t.Errorf("Match.IsWin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatch_HasPositiveKDA(t *testing.T) {
	tests := []struct {
		name                   string
		kills, deaths, assists int
		want                   bool
	}{
		{name: "more kills and assists than deaths", kills: 5, deaths: 3, assists: 10, want: true},
		{name: "equal is not positive", kills: 2, deaths: 4, assists: 2, want: false},
		{name: "fewer", kills: 1, deaths: 9, assists: 3, want: false},
		{name: "deathless", kills: 0, deaths: 0, assists: 1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Match{Kills: tt.kills, Deaths: tt.deaths, Assists: tt.assists}
			if got := m.HasPositiveKDA(); got != tt.want {
				t.Errorf("Match.HasPositiveKDA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatch_DurationMinutes(t *testing.T) {
	m := &Match{Duration: 1815}
	if got := m.DurationMinutes(); got != 30 {
		t.Errorf("Match.DurationMinutes() = %v, want 30", got)
	}
}
