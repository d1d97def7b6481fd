package signer

import (
	"math"
	"sync"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/codec"
	"github.com/icon-project/govote/common/db"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/module"
)

const (
	keySignerIndex = "signers"
)

// Signer is the state of an identity known to the registry.
type Signer struct {
	Address common.Address `json:"address"`
	Valid   bool           `json:"valid"`
	Nonce   uint64         `json:"nonce"`
}

type signerRecord struct {
	Valid bool
	Nonce uint64
}

func (r *signerRecord) toSigner(id common.Address) *Signer {
	return &Signer{
		Address: id,
		Valid:   r.Valid,
		Nonce:   r.Nonce,
	}
}

type Registry struct {
	dbase    db.Database
	admin    AdminContext
	notifier module.Notifier
	log      log.Logger

	locks lockMap

	// indexLock serializes updates of the signer index.
	indexLock sync.Mutex
}

func NewRegistry(dbase db.Database, admin AdminContext, notifier module.Notifier, logger log.Logger) (*Registry, error) {
	if dbase == nil || admin == nil {
		return nil, errors.IllegalArgumentError.New("NilDatabaseOrAdmin")
	}
	if notifier == nil {
		notifier = module.NullNotifier
	}
	if logger == nil {
		logger = log.GlobalLogger()
	}
	return &Registry{
		dbase:    dbase,
		admin:    admin,
		notifier: notifier,
		log:      log.ModuleLogger(logger, "signer"),
	}, nil
}

func getRecord(dbase db.Database, id common.Address) (*signerRecord, bool, error) {
	bk, err := db.NewCodedBucket(dbase, db.SignerByAddress, codec.BC)
	if err != nil {
		return nil, false, err
	}
	rec := new(signerRecord)
	if err := bk.Get(id.Bytes(), rec); err != nil {
		if errors.NotFoundError.Equals(err) {
			return rec, false, nil
		}
		return nil, false, err
	}
	return rec, true, nil
}

func setRecord(dbase db.Database, id common.Address, rec *signerRecord) error {
	bk, err := db.NewCodedBucket(dbase, db.SignerByAddress, codec.BC)
	if err != nil {
		return err
	}
	return bk.Set(id.Bytes(), rec)
}

func (r *Registry) readIndex() ([]common.Address, error) {
	bk, err := db.NewCodedBucket(r.dbase, db.ChainProperty, codec.BC)
	if err != nil {
		return nil, err
	}
	var raws [][]byte
	if err := bk.Get(db.Raw(keySignerIndex), &raws); err != nil {
		if errors.NotFoundError.Equals(err) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]common.Address, 0, len(raws))
	for _, raw := range raws {
		id, err := common.NewAddress(raw)
		if err != nil {
			return nil, errors.CriticalFormatError.Wrap(err, "InvalidSignerIndex")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *Registry) appendIndex(id common.Address) error {
	r.indexLock.Lock()
	defer r.indexLock.Unlock()

	ids, err := r.readIndex()
	if err != nil {
		return err
	}
	raws := make([][]byte, 0, len(ids)+1)
	for _, v := range ids {
		raws = append(raws, v.Bytes())
	}
	raws = append(raws, id.Bytes())
	bk, err := db.NewCodedBucket(r.dbase, db.ChainProperty, codec.BC)
	if err != nil {
		return err
	}
	return bk.Set(db.Raw(keySignerIndex), raws)
}

func (r *Registry) setValid(caller, id common.Address, valid bool) error {
	if !r.admin.IsAdmin(caller) {
		return errors.UnauthorizedError.Errorf("NotAdmin(caller=%s)", caller)
	}
	unlock := r.Lock(id)
	defer unlock()

	rec, exists, err := getRecord(r.dbase, id)
	if err != nil {
		return err
	}
	rec.Valid = valid
	if err := setRecord(r.dbase, id, rec); err != nil {
		return err
	}
	if !exists {
		if err := r.appendIndex(id); err != nil {
			return err
		}
	}
	return nil
}

// AddSigner marks the identity as a valid signer. The nonce of the identity
// is kept as it is.
func (r *Registry) AddSigner(caller, identity common.Address) error {
	if err := r.setValid(caller, identity, true); err != nil {
		return err
	}
	r.log.Infof("Signer added signer=%s", identity)
	r.notifier.Notify(module.NewSignerEvent(module.EventSignerAdded, identity))
	return nil
}

// RemoveSigner deactivates the identity. The record stays with its nonce,
// so old signatures can't be replayed after it's added again.
func (r *Registry) RemoveSigner(caller, identity common.Address) error {
	if err := r.setValid(caller, identity, false); err != nil {
		return err
	}
	r.log.Infof("Signer removed signer=%s", identity)
	r.notifier.Notify(module.NewSignerEvent(module.EventSignerRemoved, identity))
	return nil
}

func (r *Registry) IsValid(identity common.Address) bool {
	rec, _, err := getRecord(r.dbase, identity)
	if err != nil {
		r.log.Warnf("Fail to read signer=%s err=%+v", identity, err)
		return false
	}
	return rec.Valid
}

func (r *Registry) CurrentNonce(identity common.Address) uint64 {
	rec, _, err := getRecord(r.dbase, identity)
	if err != nil {
		r.log.Warnf("Fail to read signer=%s err=%+v", identity, err)
		return 0
	}
	return rec.Nonce
}

// AdvanceNonce increments the nonce of the identity by one in the
// database tx and returns the new nonce. The caller should hold the lock
// of the identity.
func (r *Registry) AdvanceNonce(tx db.Database, identity common.Address) (uint64, error) {
	rec, exists, err := getRecord(tx, identity)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, errors.UnauthorizedError.Errorf("UnknownSigner(%s)", identity)
	}
	if rec.Nonce == math.MaxUint64 {
		return rec.Nonce, errors.OverflowError.Errorf("NonceOverflow(signer=%s)", identity)
	}
	rec.Nonce += 1
	if err := setRecord(tx, identity, rec); err != nil {
		return 0, err
	}
	return rec.Nonce, nil
}

// Lock locks the identity and returns the function releasing it.
func (r *Registry) Lock(identity common.Address) func() {
	return r.locks.acquire(identity)
}

// Signer returns the state of the identity. Unknown identities are
// returned as invalid signers with zero nonce.
func (r *Registry) Signer(identity common.Address) (*Signer, error) {
	rec, _, err := getRecord(r.dbase, identity)
	if err != nil {
		return nil, err
	}
	return rec.toSigner(identity), nil
}

// Signers returns every identity ever touched by the admin in the order
// of its first touch.
func (r *Registry) Signers() ([]*Signer, error) {
	ids, err := r.readIndex()
	if err != nil {
		return nil, err
	}
	signers := make([]*Signer, 0, len(ids))
	for _, id := range ids {
		s, err := r.Signer(id)
		if err != nil {
			return nil, err
		}
		signers = append(signers, s)
	}
	return signers, nil
}
