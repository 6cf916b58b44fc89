package model

// Game limits and lifecycle thresholds. Timestamps are unix milliseconds
// throughout, matching what clients render.
const (
	MaxPlayers = 12

	PasswordLength = 4
	PasswordMin    = 0
	PasswordMax    = 9999

	ValueMin = 1
	ValueMax = 100

	AvatarMin = 0
	AvatarMax = 11

	// GameLifespanMS is the idle window after which a game counts as expired
	// even before the sweeper removes it.
	GameLifespanMS = 30 * 1000

	// PlayerLifespanMS is how long a presence record may stay untouched
	// before the sweeper reclaims the player.
	PlayerLifespanMS = 60 * 60 * 1000

	AccountCooldownMS = 4 * 1000
)

// Phase is the lifecycle stage of a game.
type Phase int

const (
	PhaseMatching Phase = 0
	PhaseActive   Phase = 1
	PhaseEnded    Phase = 2
)

// PlayerInfo is the roster entry for one player.
type PlayerInfo struct {
	Name     string `json:"name"`
	Avatar   int    `json:"avatar"`
	Entrance int64  `json:"entrance"`
}

// GameConfig holds the topic and the roster. While matching it lives in
// Game.StagingConfig; start moves it to Game.Config unchanged.
type GameConfig struct {
	Topic      string                `json:"topic"`
	PlayerInfo map[string]PlayerInfo `json:"playerInfo"`
}

// PlayerState is the per-player mutable state inside a game. Kicked is a soft
// flag: the entry stays so the kicked player's own reads can observe it.
type PlayerState struct {
	Hint          string `json:"hint"`
	LastConnected int64  `json:"lastConnected"`
	Submitted     int64  `json:"submitted,omitempty"`
	Kicked        bool   `json:"kicked,omitempty"`
}

// Game is one session. Exactly one of Config/StagingConfig is set, chosen by
// Phase; Values exists only outside the matching phase.
type Game struct {
	ID            string                  `json:"id"`
	Password      string                  `json:"password"`
	Phase         Phase                   `json:"phase"`
	AdminID       string                  `json:"adminId"`
	Config        *GameConfig             `json:"config,omitempty"`
	StagingConfig *GameConfig             `json:"stagingConfig,omitempty"`
	Values        map[string]int          `json:"values,omitempty"`
	PlayerState   map[string]*PlayerState `json:"playerState"`
	LastActivity  int64                   `json:"lastActivity"`
}

// Roster returns whichever of Config/StagingConfig is present.
func (g *Game) Roster() *GameConfig {
	if g.Phase == PhaseMatching {
		return g.StagingConfig
	}
	return g.Config
}

// MemberCount is the number of playerState entries, kicked ones included.
func (g *Game) MemberCount() int {
	return len(g.PlayerState)
}

// Member returns the player's state entry, or nil if the player never joined.
func (g *Game) Member(playerID string) *PlayerState {
	return g.PlayerState[playerID]
}

// ExpiredAt reports whether the game counts as expired at the given time.
func (g *Game) ExpiredAt(nowMS int64) bool {
	return nowMS-g.LastActivity > GameLifespanMS
}

// Clone deep-copies the game so store snapshots never alias caller state.
func (g *Game) Clone() *Game {
	out := *g
	out.Config = g.Config.clone()
	out.StagingConfig = g.StagingConfig.clone()
	if g.Values != nil {
		out.Values = make(map[string]int, len(g.Values))
		for k, v := range g.Values {
			out.Values[k] = v
		}
	}
	if g.PlayerState != nil {
		out.PlayerState = make(map[string]*PlayerState, len(g.PlayerState))
		for k, v := range g.PlayerState {
			state := *v
			out.PlayerState[k] = &state
		}
	}
	return &out
}

func (c *GameConfig) clone() *GameConfig {
	if c == nil {
		return nil
	}
	out := GameConfig{Topic: c.Topic}
	if c.PlayerInfo != nil {
		out.PlayerInfo = make(map[string]PlayerInfo, len(c.PlayerInfo))
		for k, v := range c.PlayerInfo {
			out.PlayerInfo[k] = v
		}
	}
	return &out
}
