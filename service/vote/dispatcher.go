package vote

import (
	"context"
	"time"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/db"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/module"
	"github.com/icon-project/govote/service/auth"
)

const DefaultForwardTimeout = 5 * time.Second

type Authenticator interface {
	Authenticate(claimed common.Address, m auth.VoteMessage, sig []byte) (common.Address, error)
}

type SignerRegistry interface {
	IsValid(identity common.Address) bool
	CurrentNonce(identity common.Address) uint64
	AdvanceNonce(tx db.Database, identity common.Address) (uint64, error)
	Lock(identity common.Address) func()
}

type ProposalDirectory interface {
	Resolve(id uint64) (module.VoteRecorder, bool)
}

type Dispatcher struct {
	dbase     db.Database
	auth      Authenticator
	signers   SignerRegistry
	proposals ProposalDirectory
	notifier  module.Notifier
	timeout   time.Duration
	log       log.Logger
}

func NewDispatcher(
	dbase db.Database,
	a Authenticator,
	signers SignerRegistry,
	proposals ProposalDirectory,
	notifier module.Notifier,
	timeout time.Duration,
	logger log.Logger,
) *Dispatcher {
	if notifier == nil {
		notifier = module.NullNotifier
	}
	if timeout <= 0 {
		timeout = DefaultForwardTimeout
	}
	if logger == nil {
		logger = log.GlobalLogger()
	}
	return &Dispatcher{
		dbase:     dbase,
		auth:      a,
		signers:   signers,
		proposals: proposals,
		notifier:  notifier,
		timeout:   timeout,
		log:       log.ModuleLogger(logger, "vote"),
	}
}

// SubmitVote authenticates the vote signed by the sender, consumes the
// nonce of the sender and forwards the vote to the proposal.
//
// The nonce is consumed only if the vote reaches Forwarding, and it stays
// consumed even if the proposal fails to record the vote.
func (d *Dispatcher) SubmitVote(ctx context.Context, sender common.Address, voteOption, proposalID uint64, signature []byte, nonce uint64) *Result {
	r := &Result{State: Received}

	unlock := d.signers.Lock(sender)
	defer unlock()

	r.Nonce = d.signers.CurrentNonce(sender)
	if err := ctx.Err(); err != nil {
		return d.done(r, errors.InterruptedError.Wrap(err, "Canceled"))
	}

	r.transit(Authenticating)
	msg := auth.VoteMessage{
		VoteOption: voteOption,
		ProposalID: proposalID,
		Nonce:      nonce,
	}
	id, err := d.auth.Authenticate(sender, msg, signature)
	if err != nil {
		if !errors.InvalidSignatureError.Equals(err) && !errors.SignerMismatchError.Equals(err) {
			err = errors.InvalidSignatureError.Wrap(err, "AuthenticationFailure")
		}
		return d.done(r, err)
	}
	r.Signer = id

	if !d.signers.IsValid(id) {
		return d.done(r, errors.UnauthorizedError.Errorf("NotSigner(%s)", id))
	}
	if current := d.signers.CurrentNonce(id); current != nonce {
		return d.done(r, errors.StaleOrFutureNonceError.Errorf(
			"InvalidNonce(expected=%d,given=%d)", current, nonce))
	}
	r.transit(Authorized)

	if err := ctx.Err(); err != nil {
		return d.done(r, errors.InterruptedError.Wrap(err, "Canceled"))
	}

	tx := db.NewLayerDB(d.dbase)
	next, err := d.signers.AdvanceNonce(tx, id)
	if err != nil {
		d.discard(tx)
		return d.done(r, err)
	}
	r.transit(NonceAdvanced)

	h, ok := d.proposals.Resolve(proposalID)
	if !ok {
		d.discard(tx)
		return d.done(r, errors.UnknownProposalError.Errorf("UnknownProposal(id=%d)", proposalID))
	}
	if err := tx.Flush(true); err != nil {
		return d.done(r, errors.CriticalIOError.Wrap(err, "FailToCommitNonce"))
	}
	r.Nonce = next

	r.transit(Forwarding)
	if err := d.forward(ctx, h, voteOption, id); err != nil {
		r.State = ForwardFailed
		r.Reason = errors.ForwardingError
		r.Error = errors.ForwardingError.Wrapf(err, "ForwardingError(proposal=%d)", proposalID)
		return d.done(r, nil)
	}

	r.transit(Completed)
	d.notifier.Notify(module.NewVoteEvent(id, proposalID, voteOption, nonce))
	return d.done(r, nil)
}

func (d *Dispatcher) discard(tx db.LayerDB) {
	if err := tx.Flush(false); err != nil {
		d.log.Warnf("Fail to discard changes err=%+v", err)
	}
}

// forward records the vote to the proposal within the timeout. The
// cancellation of ctx is ignored since the nonce is already consumed.
//
// The recorder is called synchronously, so the result always tells whether
// the vote is recorded. A ContextRecorder gives up at the deadline. Others
// are trusted to return in time, and a late success is still a success.
func (d *Dispatcher) forward(ctx context.Context, h module.VoteRecorder, option uint64, signer common.Address) error {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	ts := time.Now()
	err := record(fctx, h, option, signer)
	if fctx.Err() != nil {
		if err != nil {
			return errors.TimeoutError.Wrapf(err, "ForwardTimeout(timeout=%s)", d.timeout)
		}
		d.log.Warnf("Slow proposal recorded the vote elapsed=%s timeout=%s", time.Since(ts), d.timeout)
	}
	return err
}

func record(ctx context.Context, h module.VoteRecorder, option uint64, signer common.Address) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = errors.Errorf("RecorderPanic(%v)", e)
		}
	}()
	if cr, ok := h.(module.ContextRecorder); ok {
		return cr.RecordContext(ctx, option, signer)
	}
	return h.Record(option, signer)
}

func (d *Dispatcher) done(r *Result, err error) *Result {
	if err != nil {
		r.reject(err)
	}
	switch r.State {
	case Completed:
		d.log.Infof("Vote forwarded %s", r)
	case ForwardFailed:
		d.log.Warnf("Vote not recorded %s err=%v", r, r.Error)
	default:
		d.log.Debugf("Vote rejected %s err=%v", r, r.Error)
	}
	return r
}
