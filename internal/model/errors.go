package model

import "errors"

// Common errors used across the application
var (
	// Protocol errors
	ErrUnknownEvent   = errors.New("unknown event kind")
	ErrMalformedEvent = errors.New("malformed event payload")
	ErrNotConnected   = errors.New("not connected")

	// Session state errors
	ErrUnknownUpdateKey = errors.New("update names an unknown state field")
	ErrNoSuchSeat       = errors.New("seat index out of range")
	ErrMeldNotFound     = errors.New("no meld record for that key")
	ErrTileNotInHand    = errors.New("tile is not in hand")

	// Decision errors
	ErrDecisionPending = errors.New("a decision is already being awaited")
	ErrTileNotAllowed  = errors.New("tile is not in the allowed set")
	ErrTileBanned      = errors.New("tile is in the banned set")

	// Replay errors
	ErrReplayNotFound = errors.New("replay not found")
)
