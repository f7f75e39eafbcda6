package models

import "github.com/ethereum/go-ethereum/common"

// EventKind tags a TimelineRecord.
type EventKind string

const (
	KindVoterRegistered    EventKind = "VoterRegistered"
	KindProposalRegistered EventKind = "ProposalRegistered"
	KindPhaseChanged       EventKind = "WorkflowStatusChange"
	KindVoteCast           EventKind = "Voted"
)

// EventKinds lists the four kinds in the order the collector queries them.
var EventKinds = []EventKind{
	KindVoterRegistered,
	KindProposalRegistered,
	KindPhaseChanged,
	KindVoteCast,
}

// TimelineRecord is one decoded contract event. Only the fields belonging to Kind are set:
//
//	VoterRegistered:      Address
//	ProposalRegistered:   ProposalID
//	WorkflowStatusChange: PreviousPhase, NewPhase
//	Voted:                Address, ProposalID
type TimelineRecord struct {
	Kind          EventKind      `json:"kind"`
	BlockNumber   uint64         `json:"blockNumber"`
	Address       common.Address `json:"address"`
	ProposalID    uint64         `json:"proposalId"`
	PreviousPhase Phase          `json:"previousPhase"`
	NewPhase      Phase          `json:"newPhase"`
}

func VoterRegistered(block uint64, voter common.Address) TimelineRecord {
	return TimelineRecord{Kind: KindVoterRegistered, BlockNumber: block, Address: voter}
}

func ProposalRegistered(block uint64, id uint64) TimelineRecord {
	return TimelineRecord{Kind: KindProposalRegistered, BlockNumber: block, ProposalID: id}
}

func PhaseChanged(block uint64, previous, next Phase) TimelineRecord {
	return TimelineRecord{Kind: KindPhaseChanged, BlockNumber: block, PreviousPhase: previous, NewPhase: next}
}

func VoteCast(block uint64, voter common.Address, id uint64) TimelineRecord {
	return TimelineRecord{Kind: KindVoteCast, BlockNumber: block, Address: voter, ProposalID: id}
}
