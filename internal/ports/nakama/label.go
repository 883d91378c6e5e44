package nakama

import (
	"coinche/internal/app"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label
	MatchLabelKey_Game      = "game"
	MatchLabelKey_Phase     = "phase"
	MatchLabelKey_Variant   = "variant"
)

// buildLabel renders the searchable match label. Started tables advertise no
// open seats since nobody may join them.
func buildLabel(t *app.Table) (string, error) {
	open := t.OpenSeats()
	phase := app.PhaseLobby
	if t.Started() {
		open = 0
		phase = string(t.Game.Phase)
	}
	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKey_OpenSeats: open,
		MatchLabelKey_Game:      GameLabel,
		MatchLabelKey_Phase:     phase,
		MatchLabelKey_Variant:   string(t.Variant),
	})
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
