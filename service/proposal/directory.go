package proposal

import (
	"sync"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/codec"
	"github.com/icon-project/govote/common/db"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/module"
)

const (
	keyProposalIndex = "proposals"
	firstProposalID  = 1
)

// Info describes a registered proposal.
type Info struct {
	ID      uint64   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Options []string `json:"options,omitempty"`
	Closed  bool     `json:"closed"`
	Tally   []uint64 `json:"tally,omitempty"`
}

type descriptor struct {
	Title   string
	Options []string
}

// Loader restores the handle of the proposal registered with the id.
type Loader func(dbase db.Database, id uint64) (module.VoteRecorder, error)

// BallotLoader loads ballots stored by Ballot.Flush.
func BallotLoader(dbase db.Database, id uint64) (module.VoteRecorder, error) {
	b, err := LoadBallot(dbase, id)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Directory maps proposal ids to their handles. Entries are never removed
// or replaced.
type Directory struct {
	lock sync.RWMutex

	dbase    db.Database
	notifier module.Notifier
	log      log.Logger

	handles map[uint64]module.VoteRecorder
	ids     []uint64
	nextID  uint64
}

// NewDirectory opens the directory stored in the database. Handles of
// registered proposals are restored with the loader.
func NewDirectory(dbase db.Database, loader Loader, notifier module.Notifier, logger log.Logger) (*Directory, error) {
	if dbase == nil {
		return nil, errors.IllegalArgumentError.New("NilDatabase")
	}
	if notifier == nil {
		notifier = module.NullNotifier
	}
	if logger == nil {
		logger = log.GlobalLogger()
	}
	d := &Directory{
		dbase:    dbase,
		notifier: notifier,
		log:      log.ModuleLogger(logger, "proposal"),
		handles:  make(map[uint64]module.VoteRecorder),
		nextID:   firstProposalID,
	}
	if err := d.load(loader); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) load(loader Loader) error {
	bk, err := db.NewCodedBucket(d.dbase, db.ChainProperty, codec.BC)
	if err != nil {
		return err
	}
	var ids []uint64
	if err := bk.Get(db.Raw(keyProposalIndex), &ids); err != nil {
		if !errors.NotFoundError.Equals(err) {
			return err
		}
	}
	for _, id := range ids {
		var h module.VoteRecorder
		if loader != nil {
			h, err = loader(d.dbase, id)
			if errors.NotFoundError.Equals(err) {
				d.log.Warnf("Proposal not loadable id=%d err=%v", id, err)
				h, err = nil, nil
			}
			if err != nil {
				return errors.Wrapf(err, "FailToLoadProposal(id=%d)", id)
			}
		}
		if h == nil {
			d.log.Warnf("Proposal without handle id=%d", id)
			h = unavailable(id)
		}
		d.handles[id] = h
		d.ids = append(d.ids, id)
		if id >= d.nextID {
			d.nextID = id + 1
		}
	}
	if len(ids) > 0 {
		d.log.Infof("Proposals loaded count=%d next=%d", len(ids), d.nextID)
	}
	return nil
}

func (d *Directory) persist(id uint64, handle module.VoteRecorder) error {
	tx := db.NewLayerDB(d.dbase)
	pbk, err := db.NewCodedBucket(tx, db.ProposalByID, codec.BC)
	if err != nil {
		return err
	}
	var desc descriptor
	if p, ok := handle.(module.Proposal); ok {
		desc.Title = p.Title()
		desc.Options = p.Options()
	}
	if err := pbk.Set(idKey(id), &desc); err != nil {
		return err
	}
	cbk, err := db.NewCodedBucket(tx, db.ChainProperty, codec.BC)
	if err != nil {
		return err
	}
	ids := append(append([]uint64(nil), d.ids...), id)
	if err := cbk.Set(db.Raw(keyProposalIndex), ids); err != nil {
		return err
	}
	return tx.Flush(true)
}

// Register maps the id to the handle. It fails with DuplicateIDError
// if the id is already registered.
func (d *Directory) Register(id uint64, handle module.VoteRecorder) error {
	return d.register(id, handle, nil, nil)
}

// register calls prepare after the id is checked and rollback if the
// registration fails after prepare.
func (d *Directory) register(id uint64, handle module.VoteRecorder, prepare func() error, rollback func()) error {
	if handle == nil {
		return errors.IllegalArgumentError.New("NilHandle")
	}
	d.lock.Lock()
	defer d.lock.Unlock()

	if _, ok := d.handles[id]; ok {
		return errors.DuplicateIDError.Errorf("DuplicateId(id=%d)", id)
	}
	if prepare != nil {
		if err := prepare(); err != nil {
			return err
		}
	}
	if err := d.persist(id, handle); err != nil {
		if rollback != nil {
			rollback()
		}
		return err
	}
	d.handles[id] = handle
	d.ids = append(d.ids, id)
	if id >= d.nextID {
		d.nextID = id + 1
	}
	d.log.Infof("Proposal registered id=%d", id)
	d.notifier.Notify(module.NewProposalEvent(id))
	return nil
}

// Resolve returns the handle of the id. It returns false for the id
// never registered.
func (d *Directory) Resolve(id uint64) (module.VoteRecorder, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	h, ok := d.handles[id]
	return h, ok
}

// NextID returns the smallest id greater than every registered id.
func (d *Directory) NextID() uint64 {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.nextID
}

func infoOf(id uint64, h module.VoteRecorder) *Info {
	info := &Info{ID: id}
	if p, ok := h.(module.Proposal); ok {
		info.Title = p.Title()
		info.Options = p.Options()
		info.Closed = p.IsClosed()
		info.Tally = p.Tally()
	}
	return info
}

// Info returns the description of the proposal.
func (d *Directory) Info(id uint64) (*Info, bool) {
	h, ok := d.Resolve(id)
	if !ok {
		return nil, false
	}
	return infoOf(id, h), true
}

// Proposals returns descriptions of all proposals in registration order.
func (d *Directory) Proposals() []*Info {
	d.lock.RLock()
	ids := append([]uint64(nil), d.ids...)
	handles := make([]module.VoteRecorder, len(ids))
	for i, id := range ids {
		handles[i] = d.handles[id]
	}
	d.lock.RUnlock()

	infos := make([]*Info, len(ids))
	for i, id := range ids {
		infos[i] = infoOf(id, handles[i])
	}
	return infos
}

// unavailable is the handle of a proposal which can't be restored.
type unavailable uint64

func (u unavailable) Record(option uint64, signer common.Address) error {
	return errors.InvalidStateError.Errorf("ProposalUnavailable(id=%d)", uint64(u))
}
