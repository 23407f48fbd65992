package terra

import "fmt"

// ActorKind discriminates the two ways the service attributes an action
type ActorKind int

const (
	ActorNone ActorKind = iota
	ActorPlayer
	ActorFaction
)

// ActorRef identifies who an action is attributed to: a player by username,
// or a faction by id
type ActorRef struct {
	Kind ActorKind
	ID   string
}

// Actor returns the attribution of a pending action. Player attribution wins
// when both fields are set.
func (a ActionRequired) Actor() ActorRef {
	switch {
	case a.Player != "":
		return ActorRef{Kind: ActorPlayer, ID: a.Player}
	case a.Faction != "":
		return ActorRef{Kind: ActorFaction, ID: a.Faction}
	default:
		return ActorRef{Kind: ActorNone}
	}
}

// ResolveActor turns an ActorRef into a human display name. Players resolve
// to their configured display name, factions to "<faction> (<owner>)". An
// identifier with no matching record falls back to the raw identifier, and
// an empty attribution to "Unknown".
func (s *GameState) ResolveActor(ref ActorRef) string {
	switch ref.Kind {
	case ActorPlayer:
		for _, p := range s.Players {
			if p.Username == ref.ID {
				if p.DisplayName != "" {
					return p.DisplayName
				}
				return p.Username
			}
		}
		return ref.ID
	case ActorFaction:
		if f, ok := s.Factions[ref.ID]; ok {
			return fmt.Sprintf("%s (%s)", f.Display, f.Player)
		}
		return ref.ID
	default:
		return "Unknown"
	}
}

// FactionDisplay resolves a faction id to its display name, falling back to
// the raw id
func (s *GameState) FactionDisplay(id string) string {
	if f, ok := s.Factions[id]; ok && f.Display != "" {
		return f.Display
	}
	return id
}
