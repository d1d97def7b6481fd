package vote

import (
	"fmt"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/errors"
)

type State int

const (
	Received State = iota
	Authenticating
	Authorized
	NonceAdvanced
	Forwarding
	Completed
	Rejected
	ForwardFailed
)

var stateNames = []string{
	"Received",
	"Authenticating",
	"Authorized",
	"NonceAdvanced",
	"Forwarding",
	"Completed",
	"Rejected",
	"ForwardFailed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) IsTerminal() bool {
	return s == Completed || s == Rejected || s == ForwardFailed
}

// Result is the outcome of a vote submission.
type Result struct {
	State State

	// Reason is the code of the failure. It's errors.Success for the
	// completed submission.
	Reason errors.Code

	// Signer is the recovered identity. It's zero if the submission is
	// rejected before authentication succeeds.
	Signer common.Address

	// Nonce is the nonce of the signer after the submission.
	Nonce uint64

	Error error
}

func (r *Result) transit(s State) {
	r.State = s
}

func (r *Result) reject(err error) *Result {
	r.State = Rejected
	r.Reason = errors.CodeOf(err)
	r.Error = err
	return r
}

func (r *Result) String() string {
	if r.Reason == errors.Success {
		return fmt.Sprintf("Result{%s,signer=%s,nonce=%d}", r.State, r.Signer, r.Nonce)
	}
	return fmt.Sprintf("Result{%s(%s),signer=%s,nonce=%d}", r.State, r.Reason, r.Signer, r.Nonce)
}
