package ledger

import (
	"fmt"
	"strings"
)

// ReverseMode selects what happens to the average cost when a buy is reversed.
type ReverseMode string

const (
	// ReverseModeReplay rebuilds the average cost from the remaining buy lots,
	// making Reverse a true inverse of Apply for buys on an open position.
	ReverseModeReplay ReverseMode = "replay"

	// ReverseModeLegacy undoes quantity only and keeps the average cost,
	// reproducing figures recorded by earlier releases.
	ReverseModeLegacy ReverseMode = "legacy"
)

// ParseReverseMode accepts "replay" or "legacy". Empty input means replay.
func ParseReverseMode(s string) (ReverseMode, error) {
	switch ReverseMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ReverseModeReplay:
		return ReverseModeReplay, nil
	case ReverseModeLegacy:
		return ReverseModeLegacy, nil
	}
	return "", fmt.Errorf("unknown cost basis reversal mode: %q", s)
}
