package notify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rbasoalto/terrabot/internal/terra"
)

// ErrEmptySnapshot is returned when a notification is requested for a game
// with no recorded state. Callers that want a message anyway should use
// ComposePlaceholder.
var ErrEmptySnapshot = errors.New("game has no recorded state")

const lastMovesLimit = 5

// uninitialized reports whether the server has any actual game content yet.
// Newly created games return an empty shell until the first player joins.
func uninitialized(state *terra.GameState) bool {
	return len(state.Players) == 0 && len(state.Factions) == 0 && len(state.Ledger) == 0
}

// Compose builds the delivery-ready message for a game snapshot. Output is a
// pure function of its inputs.
func Compose(gameID string, state *terra.GameState, viewURL string) (*Message, error) {
	if state == nil || uninitialized(state) {
		return nil, ErrEmptySnapshot
	}

	msg := &Message{}

	msg.Sections = append(msg.Sections, Section{
		Header: fmt.Sprintf("TerraBot for game %s", gameID),
		Widgets: []Widget{
			{TextParagraph: &TextParagraph{Text: fmt.Sprintf("Round %s, turn %d", state.Round, state.Turn)}},
		},
	})

	waiting := appendActionsRequired(msg, state)

	msg.Sections = append(msg.Sections, Section{
		Header:  "Scores",
		Widgets: []Widget{{Image: &Image{ImageURL: ScoreChartURL(state)}}},
	})

	appendLastMoves(msg, state)

	msg.Sections = append(msg.Sections, Section{
		Widgets: []Widget{{Link: &Link{Text: "VIEW GAME", URL: viewURL}}},
	})

	summary := fmt.Sprintf("Game %s, round %s turn %d.", gameID, state.Round, state.Turn)
	if len(waiting) > 0 {
		summary += fmt.Sprintf(" Waiting for %s.", strings.Join(waiting, ", "))
	}
	msg.Summary = summary

	return msg, nil
}

// ComposePlaceholder builds the message sent for a game that has not been
// initialized on the server yet
func ComposePlaceholder(gameID, viewURL string) *Message {
	return &Message{
		Summary: fmt.Sprintf("Game %s is not initialized yet.", gameID),
		Sections: []Section{
			{
				Header: fmt.Sprintf("TerraBot for game %s", gameID),
				Widgets: []Widget{
					{TextParagraph: &TextParagraph{Text: "Game is not initialized yet."}},
				},
			},
			{
				Widgets: []Widget{{Link: &Link{Text: "VIEW GAME", URL: viewURL}}},
			},
		},
	}
}

// appendActionsRequired adds the pending-actions section and returns the
// deduplicated, sorted display names for the summary line
func appendActionsRequired(msg *Message, state *terra.GameState) []string {
	section := Section{Header: "Actions Required"}
	seen := make(map[string]bool)
	for _, action := range state.ActionRequired {
		name := state.ResolveActor(action.Actor())
		seen[name] = true
		section.Widgets = append(section.Widgets, Widget{
			KeyValue: &KeyValue{TopLabel: name, Content: action.Type},
		})
	}
	if len(section.Widgets) == 0 {
		return nil
	}
	msg.Sections = append(msg.Sections, section)

	waiting := make([]string, 0, len(seen))
	for name := range seen {
		waiting = append(waiting, name)
	}
	sort.Strings(waiting)
	return waiting
}

// appendLastMoves adds the final 5 ledger entries, most recent first.
// Entries without a faction attribution are skipped.
func appendLastMoves(msg *Message, state *terra.GameState) {
	section := Section{Header: "Last Moves"}
	first := len(state.Ledger) - lastMovesLimit
	if first < 0 {
		first = 0
	}
	for i := len(state.Ledger) - 1; i >= first; i-- {
		entry := state.Ledger[i]
		if entry.Faction == "" {
			continue
		}
		text := entry.Commands
		if text == "" {
			text = entry.Comment
		}
		if text == "" {
			text = "?"
		}
		section.Widgets = append(section.Widgets, Widget{
			KeyValue: &KeyValue{TopLabel: state.FactionDisplay(entry.Faction), Content: text},
		})
	}
	if len(section.Widgets) > 0 {
		msg.Sections = append(msg.Sections, section)
	}
}
