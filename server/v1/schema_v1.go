package v1

import (
	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/server/jsonrpc"
	"github.com/icon-project/govote/service/vote"
)

type SubmitVoteParam struct {
	Signer     jsonrpc.Address  `json:"signer" validate:"required,t_addr"`
	VoteOption jsonrpc.HexInt   `json:"voteOption" validate:"required,t_int"`
	ProposalID jsonrpc.HexInt   `json:"proposalId" validate:"required,t_int"`
	Nonce      jsonrpc.HexInt   `json:"nonce" validate:"required,t_int"`
	Signature  jsonrpc.HexBytes `json:"signature" validate:"required,t_sig"`
}

type AddressParam struct {
	Address jsonrpc.Address `json:"address" validate:"required,t_addr"`
}

type ProposalParam struct {
	ID jsonrpc.HexInt `json:"id" validate:"required,t_int"`
}

type VoteMessageParam struct {
	VoteOption jsonrpc.HexInt `json:"voteOption" validate:"required,t_int"`
	ProposalID jsonrpc.HexInt `json:"proposalId" validate:"required,t_int"`
	Nonce      jsonrpc.HexInt `json:"nonce" validate:"required,t_int"`
}

type VoteResult struct {
	State   string           `json:"state"`
	Reason  string           `json:"reason,omitempty"`
	Signer  *common.Address  `json:"signer,omitempty"`
	Nonce   common.HexUint64 `json:"nonce"`
	Failure string           `json:"failure,omitempty"`
}

func voteResultOf(r *vote.Result) *VoteResult {
	res := &VoteResult{
		State: r.State.String(),
		Nonce: common.NewHexUint64(r.Nonce),
	}
	if r.State != vote.Completed {
		res.Reason = r.Reason.String()
	}
	if !r.Signer.IsZero() {
		signer := r.Signer
		res.Signer = &signer
	}
	if r.Error != nil {
		res.Failure = r.Error.Error()
	}
	return res
}

type SignerResult struct {
	Address common.Address   `json:"address"`
	Valid   bool             `json:"valid"`
	Nonce   common.HexUint64 `json:"nonce"`
}

// ResolveResult tells whether the id is registered. An unregistered id is
// reported as absent rather than as an error.
type ResolveResult struct {
	ID         common.HexUint64 `json:"id"`
	Registered bool             `json:"registered"`
}

type ProposalResult struct {
	ID      common.HexUint64   `json:"id"`
	Title   string             `json:"title,omitempty"`
	Options []string           `json:"options,omitempty"`
	Closed  bool               `json:"closed"`
	Tally   []common.HexUint64 `json:"tally,omitempty"`
}

type VoteMessageHash struct {
	Message   common.HexBytes `json:"message"`
	InnerHash common.HexBytes `json:"innerHash"`
	Hash      common.HexBytes `json:"hash"`
}
