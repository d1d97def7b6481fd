package module

import (
	"context"

	"github.com/icon-project/govote/common"
)

// VoteRecorder is the capability of a deployed proposal instance to record
// a vote which has already been authenticated and authorized.
type VoteRecorder interface {
	// Record records the vote of the signer. It returns error if the
	// proposal rejects the vote. It must not block indefinitely.
	Record(option uint64, signer common.Address) error
}

// ContextRecorder is a VoteRecorder which gives up without recording once
// ctx is done. A vote is never recorded after RecordContext returns an
// error.
type ContextRecorder interface {
	VoteRecorder
	RecordContext(ctx context.Context, option uint64, signer common.Address) error
}

// Proposal is a VoteRecorder which also exposes its descriptor and tally.
type Proposal interface {
	VoteRecorder

	// ID returns the identifier assigned at registration.
	ID() uint64
	Title() string
	Options() []string
	IsClosed() bool

	// Tally returns the number of votes for each option.
	Tally() []uint64
	HasVoted(signer common.Address) bool
}

// Wallet signs hashes with a private key.
type Wallet interface {
	Address() common.Address
	Sign(hash []byte) ([]byte, error)
	PublicKey() []byte
}
