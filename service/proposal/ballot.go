package proposal

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/codec"
	"github.com/icon-project/govote/common/db"
	"github.com/icon-project/govote/common/errors"
)

const (
	MaxOptions    = 32
	MaxTitleBytes = 256
)

func idKey(id uint64) []byte {
	bs := make([]byte, 8)
	binary.BigEndian.PutUint64(bs, id)
	return bs
}

func voterKey(id uint64, voter common.Address) []byte {
	return append(idKey(id), voter.Bytes()...)
}

type ballotState struct {
	Title   string
	Options []string
	Closed  bool
	Tally   []uint64
}

// Ballot is a proposal with fixed options. Each signer may vote only once
// until it's closed.
type Ballot struct {
	lock sync.Mutex

	dbase          db.Database
	defaultOptions []string

	initialized bool
	id          uint64
	state       ballotState
}

// NewTemplate returns a template ballot. It can't record any vote. Ballots
// are made by cloning it.
func NewTemplate(dbase db.Database, defaultOptions ...string) *Ballot {
	return &Ballot{
		dbase:          dbase,
		defaultOptions: append([]string(nil), defaultOptions...),
	}
}

// Clone returns an uninitialized ballot sharing the database and the
// default options of b.
func (b *Ballot) Clone() *Ballot {
	return &Ballot{
		dbase:          b.dbase,
		defaultOptions: b.defaultOptions,
	}
}

func validateOptions(title string, options []string) error {
	if len(title) == 0 || len(title) > MaxTitleBytes {
		return errors.IllegalArgumentError.Errorf("InvalidTitle(len=%d)", len(title))
	}
	if len(options) < 2 || len(options) > MaxOptions {
		return errors.IllegalArgumentError.Errorf("InvalidOptionCount(%d)", len(options))
	}
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		if len(o) == 0 {
			return errors.IllegalArgumentError.New("EmptyOption")
		}
		if seen[o] {
			return errors.IllegalArgumentError.Errorf("DuplicateOption(%s)", o)
		}
		seen[o] = true
	}
	return nil
}

// Initialize sets the id, the title and the options of the ballot. Default
// options are used if options are empty. It can be called only once.
func (b *Ballot) Initialize(id uint64, title string, options []string) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.initialized {
		return errors.InvalidStateError.Errorf("AlreadyInitialized(id=%d)", b.id)
	}
	if len(options) == 0 {
		options = b.defaultOptions
	}
	if err := validateOptions(title, options); err != nil {
		return err
	}
	b.id = id
	b.state = ballotState{
		Title:   title,
		Options: append([]string(nil), options...),
		Tally:   make([]uint64, len(options)),
	}
	b.initialized = true
	return nil
}

func (b *Ballot) bucket(dbase db.Database) (*db.CodedBucket, error) {
	if dbase == nil {
		return nil, errors.InvalidStateError.New("NoDatabase")
	}
	return db.NewCodedBucket(dbase, db.BallotByID, codec.BC)
}

// Flush writes the state of the ballot.
func (b *Ballot) Flush() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if !b.initialized {
		return errors.InvalidStateError.New("NotInitialized")
	}
	bk, err := b.bucket(b.dbase)
	if err != nil {
		return err
	}
	return bk.Set(idKey(b.id), &b.state)
}

func (b *Ballot) discard() error {
	bk, err := b.bucket(b.dbase)
	if err != nil {
		return err
	}
	return bk.Delete(idKey(b.id))
}

// LoadBallot loads the ballot stored with the id.
func LoadBallot(dbase db.Database, id uint64) (*Ballot, error) {
	b := &Ballot{dbase: dbase, id: id}
	bk, err := b.bucket(dbase)
	if err != nil {
		return nil, err
	}
	if err := bk.Get(idKey(id), &b.state); err != nil {
		return nil, err
	}
	b.initialized = true
	return b, nil
}

// Record records the vote of the signer.
func (b *Ballot) Record(option uint64, signer common.Address) error {
	return b.RecordContext(context.Background(), option, signer)
}

// RecordContext is Record which fails without recording if ctx is done
// before the vote is written.
func (b *Ballot) RecordContext(ctx context.Context, option uint64, signer common.Address) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if !b.initialized {
		return errors.InvalidStateError.New("NotInitialized")
	}
	if b.state.Closed {
		return errors.InvalidStateError.Errorf("ProposalClosed(id=%d)", b.id)
	}
	if option >= uint64(len(b.state.Options)) {
		return errors.IllegalArgumentError.Errorf("InvalidOption(id=%d,option=%d)", b.id, option)
	}

	tx := db.NewLayerDB(b.dbase)
	bk, err := b.bucket(tx)
	if err != nil {
		return err
	}
	key := voterKey(b.id, signer)
	if voted, err := bk.Has(key); err != nil {
		return err
	} else if voted {
		return errors.InvalidStateError.Errorf("AlreadyVoted(id=%d,signer=%s)", b.id, signer)
	}

	state := b.state
	state.Tally = append([]uint64(nil), b.state.Tally...)
	state.Tally[option] += 1
	if err := bk.Set(key, common.Uint64ToBytes(option+1)); err != nil {
		return err
	}
	if err := bk.Set(idKey(b.id), &state); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.TimeoutError.Wrapf(err, "RecordCanceled(id=%d)", b.id)
	}
	if err := tx.Flush(true); err != nil {
		return err
	}
	b.state = state
	return nil
}

// Close stops the ballot from recording votes.
func (b *Ballot) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if !b.initialized {
		return errors.InvalidStateError.New("NotInitialized")
	}
	if b.state.Closed {
		return nil
	}
	bk, err := b.bucket(b.dbase)
	if err != nil {
		return err
	}
	state := b.state
	state.Closed = true
	if err := bk.Set(idKey(b.id), &state); err != nil {
		return err
	}
	b.state = state
	return nil
}

func (b *Ballot) ID() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.id
}

func (b *Ballot) Title() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.state.Title
}

func (b *Ballot) Options() []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]string(nil), b.state.Options...)
}

func (b *Ballot) IsClosed() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.state.Closed
}

func (b *Ballot) Tally() []uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]uint64(nil), b.state.Tally...)
}

func (b *Ballot) HasVoted(signer common.Address) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	if !b.initialized || b.dbase == nil {
		return false
	}
	bk, err := b.bucket(b.dbase)
	if err != nil {
		return false
	}
	has, err := bk.Has(voterKey(b.id, signer))
	return err == nil && has
}
