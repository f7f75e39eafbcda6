package models

// Proposal is a snapshot of one proposal as read from the contract during a single pass.
type Proposal struct {
	ID          uint64 `json:"id"`
	Description string `json:"description"`
	VoteCount   uint64 `json:"voteCount"`
}

// Winner is the tallied result, only meaningful once the phase is VotesTallied.
type Winner struct {
	ProposalID  uint64 `json:"proposalId"`
	Description string `json:"description"`
}
