package terra

// Player is one seat in a game
type Player struct {
	// Username in the service
	Username string `json:"username"`

	// Configured display name, often equal to the username
	DisplayName string `json:"displayname"`

	// Seat index; does not necessarily match position in the array
	Index int `json:"index"`
}

// Faction is one playable faction and its current standing
type Faction struct {
	// Human-readable faction name, e.g. "Chaos Magicians"
	Display string `json:"display"`

	// Username of the owning player
	Player string `json:"player"`

	// Current victory points
	VP int `json:"VP"`

	// Projected end-game victory points, when the service reports one
	VPProjection *int `json:"vp_projection,omitempty"`
}

// ActionRequired is one pending action; attributed to a player or a faction,
// occasionally to neither
type ActionRequired struct {
	Player  string `json:"player,omitempty"`
	Faction string `json:"faction,omitempty"`
	Type    string `json:"type,omitempty"`
}

// LedgerEntry is one move or comment in the game's append-only log
type LedgerEntry struct {
	Faction  string `json:"faction,omitempty"`
	Commands string `json:"commands,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// Metadata carries server-side bookkeeping about the game
type Metadata struct {
	// Seconds since the last game action, as a decimal string
	TimeSinceUpdate string `json:"time_since_update"`
	Finished        int    `json:"finished"`
	Aborted         int    `json:"aborted"`
}

// GameState is one point-in-time snapshot of a game's remote state
type GameState struct {
	Round          string             `json:"round"`
	Turn           int                `json:"turn"`
	Players        []Player           `json:"players"`
	Factions       map[string]Faction `json:"factions"`
	ActionRequired []ActionRequired   `json:"action_required"`
	Ledger         []LedgerEntry      `json:"ledger"`
	Metadata       Metadata           `json:"metadata"`
	Finished       int                `json:"finished"`
	Aborted        int                `json:"aborted"`
}
