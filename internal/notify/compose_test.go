package notify

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rbasoalto/terrabot/internal/terra"
)

const viewURL = "https://terra.example.com/game/g1/"

func snapshot() *terra.GameState {
	proj := 90
	return &terra.GameState{
		Round: "4",
		Turn:  2,
		Players: []terra.Player{
			{Username: "alice", DisplayName: "Alice!", Index: 0},
			{Username: "bob", DisplayName: "Bob", Index: 1},
		},
		Factions: map[string]terra.Faction{
			"witches": {Display: "Witches", Player: "alice", VP: 40, VPProjection: &proj},
			"nomads":  {Display: "Nomads", Player: "bob", VP: 55},
		},
		ActionRequired: []terra.ActionRequired{
			{Player: "bob", Type: "full"},
			{Player: "alice", Type: "leech"},
			{Player: "alice", Type: "cult"},
		},
		Ledger: []terra.LedgerEntry{
			{Faction: "witches", Commands: "action ACT4"},
			{Comment: "round 4 scoring"},
			{Faction: "nomads", Commands: "upgrade E5 to TE"},
			{Faction: "witches", Comment: "thinking..."},
			{Faction: "nomads"},
			{Faction: "witches", Commands: "pass BON3"},
		},
		Metadata: terra.Metadata{TimeSinceUpdate: "12.0"},
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	first, err := Compose("g1", snapshot(), viewURL)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	second, err := Compose("g1", snapshot(), viewURL)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("compose not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestComposeSummaryWaitingList(t *testing.T) {
	msg, err := Compose("g1", snapshot(), viewURL)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	// Deduplicated and alphabetically sorted
	if !strings.Contains(msg.Summary, "Waiting for Alice!, Bob.") {
		t.Errorf("summary = %q", msg.Summary)
	}
	if !strings.Contains(msg.Summary, "round 4 turn 2") {
		t.Errorf("summary = %q", msg.Summary)
	}
}

func TestComposeActionsRequiredSection(t *testing.T) {
	msg, err := Compose("g1", snapshot(), viewURL)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	section := findSection(t, msg, "Actions Required")
	if len(section.Widgets) != 3 {
		t.Fatalf("widgets = %d, want 3", len(section.Widgets))
	}
	if section.Widgets[0].KeyValue.TopLabel != "Bob" || section.Widgets[0].KeyValue.Content != "full" {
		t.Errorf("first action = %+v", section.Widgets[0].KeyValue)
	}
}

func TestComposeLastMoves(t *testing.T) {
	msg, err := Compose("g1", snapshot(), viewURL)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	section := findSection(t, msg, "Last Moves")

	// Final 5 ledger entries contain one with no faction; it is dropped
	if len(section.Widgets) != 4 {
		t.Fatalf("widgets = %d, want 4", len(section.Widgets))
	}

	// Most recent first
	first := section.Widgets[0].KeyValue
	if first.TopLabel != "Witches" || first.Content != "pass BON3" {
		t.Errorf("first move = %+v", first)
	}
	// Commands missing and comment missing renders "?"
	second := section.Widgets[1].KeyValue
	if second.TopLabel != "Nomads" || second.Content != "?" {
		t.Errorf("second move = %+v", second)
	}
	// Comment used when commands missing
	third := section.Widgets[2].KeyValue
	if third.TopLabel != "Witches" || third.Content != "thinking..." {
		t.Errorf("third move = %+v", third)
	}
	if section.Widgets[3].KeyValue.Content != "upgrade E5 to TE" {
		t.Errorf("fourth move = %+v", section.Widgets[3].KeyValue)
	}
}

func TestComposeLastMovesNeverExceedsLimit(t *testing.T) {
	state := snapshot()
	for i := 0; i < 20; i++ {
		state.Ledger = append(state.Ledger, terra.LedgerEntry{Faction: "witches", Commands: "dig"})
	}
	msg, err := Compose("g1", state, viewURL)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	section := findSection(t, msg, "Last Moves")
	if len(section.Widgets) > 5 {
		t.Errorf("widgets = %d, want at most 5", len(section.Widgets))
	}
}

func TestComposeTrailingViewGameLink(t *testing.T) {
	msg, err := Compose("g1", snapshot(), viewURL)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	last := msg.Sections[len(msg.Sections)-1]
	if len(last.Widgets) != 1 || last.Widgets[0].Link == nil {
		t.Fatalf("last section = %+v", last)
	}
	if last.Widgets[0].Link.URL != viewURL || last.Widgets[0].Link.Text != "VIEW GAME" {
		t.Errorf("link = %+v", last.Widgets[0].Link)
	}
}

func TestComposeNoPendingActions(t *testing.T) {
	state := snapshot()
	state.ActionRequired = nil
	msg, err := Compose("g1", state, viewURL)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if strings.Contains(msg.Summary, "Waiting for") {
		t.Errorf("summary = %q", msg.Summary)
	}
	for _, s := range msg.Sections {
		if s.Header == "Actions Required" {
			t.Errorf("unexpected Actions Required section")
		}
	}
}

func TestComposeEmptySnapshot(t *testing.T) {
	if _, err := Compose("g1", nil, viewURL); !errors.Is(err, ErrEmptySnapshot) {
		t.Errorf("err = %v, want ErrEmptySnapshot", err)
	}
	if _, err := Compose("g1", &terra.GameState{}, viewURL); !errors.Is(err, ErrEmptySnapshot) {
		t.Errorf("err = %v, want ErrEmptySnapshot", err)
	}
}

func TestComposePlaceholder(t *testing.T) {
	msg := ComposePlaceholder("g1", viewURL)
	if !strings.Contains(msg.Summary, "not initialized") {
		t.Errorf("summary = %q", msg.Summary)
	}
	if msg.Sections[0].Widgets[0].TextParagraph.Text != "Game is not initialized yet." {
		t.Errorf("placeholder = %+v", msg.Sections[0])
	}
	last := msg.Sections[len(msg.Sections)-1]
	if last.Widgets[0].Link == nil || last.Widgets[0].Link.URL != viewURL {
		t.Errorf("link = %+v", last.Widgets[0])
	}
}

func findSection(t *testing.T, msg *Message, header string) Section {
	t.Helper()
	for _, s := range msg.Sections {
		if s.Header == header {
			return s
		}
	}
	t.Fatalf("no section with header %q", header)
	return Section{}
}
