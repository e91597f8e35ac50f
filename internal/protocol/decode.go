package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tsumogiri/riichi-client/internal/model"
)

// callPayload is the shared action wrapper for chi and pon events.
type callPayload struct {
	Action struct {
		Pattern []model.Tile `json:"pattern"`
		Who     model.Seat   `json:"who"`
		FromWho model.Seat   `json:"from_who"`
		Kui     model.Tile   `json:"kui"`
	} `json:"action"`
}

// kanPayload wraps kan and addkan events, whose pattern is the triple
// [kanType, baseRank, addedOrCalledTile].
type kanPayload struct {
	Action struct {
		Pattern [3]int     `json:"pattern"`
		Who     model.Seat `json:"who"`
		FromWho model.Seat `json:"from_who"`
		Kui     model.Tile `json:"kui"`
	} `json:"action"`
}

type riichiPayload struct {
	Action struct {
		Who          model.Seat `json:"who"`
		Step         int        `json:"step"`
		DoubleRiichi bool       `json:"double_riichi"`
	} `json:"action"`
}

// Decode turns one wire line into a typed event. The payload shape is
// resolved here, once, so nothing downstream guesses at field presence.
func Decode(line []byte) (model.Event, error) {
	var envelope struct {
		Event   model.EventKind `json:"event"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedEvent, err)
	}

	switch envelope.Event {
	case model.EventJoin:
		var e model.JoinEvent
		return e, unmarshalPayload(line, &e)
	case model.EventStart:
		var e model.StartEvent
		return e, unmarshalPayload(line, &e)
	case model.EventUpdate:
		var e model.UpdateEvent
		return e, unmarshalPayload(line, &e)
	case model.EventDraw:
		var e model.DrawEvent
		return e, unmarshalPayload(line, &e)
	case model.EventDiscard:
		var e model.DiscardEvent
		return e, unmarshalPayload(line, &e)
	case model.EventChi, model.EventPon:
		var p callPayload
		if err := unmarshalPayload(line, &p); err != nil {
			return nil, err
		}
		return model.CallEvent{
			Call:    envelope.Event,
			Tiles:   p.Action.Pattern,
			Who:     p.Action.Who,
			FromWho: p.Action.FromWho,
			Called:  p.Action.Kui,
		}, nil
	case model.EventKan, model.EventAddKan:
		var p kanPayload
		if err := unmarshalPayload(line, &p); err != nil {
			return nil, err
		}
		return model.KanEvent{
			Upgrade:  envelope.Event == model.EventAddKan,
			KanType:  p.Action.Pattern[0],
			BaseRank: p.Action.Pattern[1],
			Extra:    model.Tile(p.Action.Pattern[2]),
			Who:      p.Action.Who,
			FromWho:  p.Action.FromWho,
			Called:   p.Action.Kui,
		}, nil
	case model.EventRiichi:
		var p riichiPayload
		if err := unmarshalPayload(line, &p); err != nil {
			return nil, err
		}
		return model.RiichiEvent{
			Who:    p.Action.Who,
			Step:   p.Action.Step,
			Double: p.Action.DoubleRiichi,
		}, nil
	case model.EventAgari:
		var e model.AgariEvent
		return e, unmarshalPayload(line, &e)
	case model.EventRyuukyoku:
		var e model.RyuukyokuEvent
		return e, unmarshalPayload(line, &e)
	case model.EventSettlement:
		var e model.SettlementEvent
		return e, unmarshalPayload(line, &e)
	case model.EventSelectTile:
		var e model.SelectTileEvent
		return e, unmarshalPayload(line, &e)
	case model.EventDecision:
		var e model.DecisionEvent
		return e, unmarshalPayload(line, &e)
	case model.EventScore:
		var e model.ScoreEvent
		return e, unmarshalPayload(line, &e)
	case model.EventWait, model.EventQuit:
		return model.NoticeEvent{Notice: envelope.Event, Message: envelope.Message}, nil
	case model.EventEnd:
		return model.EndEvent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownEvent, envelope.Event)
	}
}

func unmarshalPayload(line []byte, v any) error {
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedEvent, err)
	}
	return nil
}
