package models

// VoterRecord mirrors the contract's Voter struct.
type VoterRecord struct {
	IsRegistered    bool
	HasVoted        bool
	VotedProposalID uint64
}

// AccountRoleState is derived for the connected account on every pass and never patched.
type AccountRoleState struct {
	IsVoter bool  `json:"isVoter"`
	IsAdmin bool  `json:"isAdmin"`
	Phase   Phase `json:"phase"`
}

// UnknownRoles is the state before any read has completed.
func UnknownRoles() AccountRoleState {
	return AccountRoleState{Phase: PhaseUnknown}
}
