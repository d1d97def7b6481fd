package module

import (
	"time"

	"github.com/icon-project/govote/common"
)

type EventType string

const (
	EventSignerAdded        EventType = "signer_added"
	EventSignerRemoved      EventType = "signer_removed"
	EventProposalRegistered EventType = "proposal_registered"
	EventVoteForwarded      EventType = "vote_forwarded"
)

// Event is a notification for observers. Observers may miss events, so
// nothing may depend on them for correctness.
type Event struct {
	Type       EventType       `json:"type"`
	Time       time.Time       `json:"time"`
	Signer     *common.Address `json:"signer,omitempty"`
	ProposalID *uint64         `json:"proposalId,omitempty"`
	Option     *uint64         `json:"option,omitempty"`
	Nonce      *uint64         `json:"nonce,omitempty"`
}

// Notifier delivers events without blocking the caller.
type Notifier interface {
	Notify(e *Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(e *Event)

func (f NotifierFunc) Notify(e *Event) {
	f(e)
}

type nullNotifier struct{}

func (nullNotifier) Notify(*Event) {}

// NullNotifier drops every event.
var NullNotifier Notifier = nullNotifier{}

func NewSignerEvent(t EventType, signer common.Address) *Event {
	return &Event{
		Type:   t,
		Time:   time.Now(),
		Signer: &signer,
	}
}

func NewProposalEvent(id uint64) *Event {
	return &Event{
		Type:       EventProposalRegistered,
		Time:       time.Now(),
		ProposalID: &id,
	}
}

// NewVoteEvent returns vote forwarded event. The nonce is the one consumed
// by the vote.
func NewVoteEvent(signer common.Address, id, option, nonce uint64) *Event {
	return &Event{
		Type:       EventVoteForwarded,
		Time:       time.Now(),
		Signer:     &signer,
		ProposalID: &id,
		Option:     &option,
		Nonce:      &nonce,
	}
}
