package nakama

import (
	"blackjack/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// matchLabel renders the searchable label: game, open seats, seated players
// and phase.
func matchLabel(snap app.TableSnapshot) (string, error) {
	open := snap.MaxPlayers - len(snap.Players)
	if open < 0 {
		open = 0
	}
	label, err := structpb.NewStruct(map[string]interface{}{
		"game":     GameName,
		"table_id": snap.ID.String(),
		"open":     open,
		"players":  len(snap.Players),
		"phase":    string(snap.Phase),
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state.Gateway.Session().Snapshot())
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.label = label
}
