package models

import "github.com/ethereum/go-ethereum/common"

// Action names the four mutating actions.
type Action string

const (
	ActionRegisterVoter  Action = "register-voter"
	ActionChangePhase    Action = "change-phase"
	ActionSubmitProposal Action = "submit-proposal"
	ActionCastVote       Action = "cast-vote"
)

// ActionStatus is the pending/error flag pair the presentation shows per action.
type ActionStatus struct {
	Pending bool   `json:"pending"`
	Error   string `json:"error,omitempty"`
	TxHash  string `json:"txHash,omitempty"`
}

// ViewModel is everything the presentation renders.
type ViewModel struct {
	NetworkID      uint64                  `json:"networkId"`
	Supported      bool                    `json:"supported"`
	Account        common.Address          `json:"account"`
	Connected      bool                    `json:"connected"`
	State          string                  `json:"state"`
	Roles          AccountRoleState        `json:"roles"`
	Proposals      []Proposal              `json:"proposals"`
	Timeline       []TimelineRecord        `json:"timeline"`
	Winner         *Winner                 `json:"winner,omitempty"`
	RefreshCounter uint64                  `json:"refreshCounter"`
	Actions        map[Action]ActionStatus `json:"actions"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (v ViewModel) Clone() ViewModel {
	out := v
	out.Proposals = append([]Proposal{}, v.Proposals...)
	out.Timeline = append([]TimelineRecord{}, v.Timeline...)
	if v.Winner != nil {
		w := *v.Winner
		out.Winner = &w
	}
	out.Actions = make(map[Action]ActionStatus, len(v.Actions))
	for k, s := range v.Actions {
		out.Actions[k] = s
	}
	return out
}
