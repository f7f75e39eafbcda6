// Package models defines the data shared between the reconciliation layer, the archive and the TUI.
package models

import "fmt"

// Phase is the voting contract's workflow status.
type Phase int8

const (
	// PhaseUnknown means the phase has never been read successfully.
	PhaseUnknown Phase = iota - 1
	PhaseRegisteringVoters
	PhaseProposalsStarted
	PhaseProposalsEnded
	PhaseVotingStarted
	PhaseVotingEnded
	PhaseVotesTallied
)

var phaseLabels = [...]string{
	"Registering Voters",
	"Proposals Registration Started",
	"Proposals Registration Ended",
	"Voting Session Started",
	"Voting Session Ended",
	"Votes Tallied",
}

// PhaseFromStatus converts the contract's uint8 enum value.
func PhaseFromStatus(status uint8) (Phase, error) {
	if int(status) >= len(phaseLabels) {
		return PhaseUnknown, fmt.Errorf("unknown workflow status %d", status)
	}
	return Phase(status), nil
}

// Known reports whether p is one of the six contract phases.
func (p Phase) Known() bool {
	return p >= PhaseRegisteringVoters && p <= PhaseVotesTallied
}

func (p Phase) String() string {
	if !p.Known() {
		return "Unknown"
	}
	return phaseLabels[p]
}
