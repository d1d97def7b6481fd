package proposal

import (
	"sync"

	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
)

// Factory creates ballots and registers them to the directory.
type Factory struct {
	lock sync.Mutex
	dir  *Directory
	log  log.Logger
}

func NewFactory(dir *Directory, logger log.Logger) *Factory {
	if logger == nil {
		logger = log.GlobalLogger()
	}
	return &Factory{
		dir: dir,
		log: log.ModuleLogger(logger, "proposal"),
	}
}

// Create clones the template, initializes and stores the clone, then
// registers it with a new id. No id is registered on failure.
func (f *Factory) Create(template *Ballot, title string, options []string) (*Ballot, error) {
	if template == nil {
		return nil, errors.IllegalArgumentError.New("NilTemplate")
	}
	f.lock.Lock()
	defer f.lock.Unlock()

	id := f.dir.NextID()
	b := template.Clone()
	if err := b.Initialize(id, title, options); err != nil {
		return nil, err
	}
	rollback := func() {
		if err := b.discard(); err != nil {
			f.log.Warnf("Fail to discard ballot id=%d err=%+v", id, err)
		}
	}
	if err := f.dir.register(id, b, b.Flush, rollback); err != nil {
		return nil, err
	}
	f.log.Infof("Ballot created id=%d title=%q options=%d", id, b.Title(), len(b.Options()))
	return b, nil
}
