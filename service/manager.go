package service

import (
	"context"
	"time"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/db"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/service/auth"
	"github.com/icon-project/govote/service/event"
	"github.com/icon-project/govote/service/proposal"
	"github.com/icon-project/govote/service/signer"
	"github.com/icon-project/govote/service/vote"
)

type Config struct {
	Owner          common.Address
	ForwardTimeout time.Duration
	DefaultOptions []string
}

// Manager assembles the voting components over a database.
type Manager struct {
	dbase      db.Database
	admin      signer.AdminContext
	owner      common.Address
	bus        *event.Bus
	auth       *auth.Authenticator
	signers    *signer.Registry
	proposals  *proposal.Directory
	factory    *proposal.Factory
	template   *proposal.Ballot
	dispatcher *vote.Dispatcher
	log        log.Logger
}

func NewManager(dbase db.Database, cfg *Config, logger log.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.IllegalArgumentError.New("NilConfig")
	}
	if logger == nil {
		logger = log.GlobalLogger()
	}
	m := &Manager{
		dbase: dbase,
		admin: signer.NewOwner(cfg.Owner),
		owner: cfg.Owner,
		bus:   event.NewBus(logger),
		auth:  auth.NewAuthenticator(logger),
		log:   log.ModuleLogger(logger, "service"),
	}
	if cfg.Owner.IsZero() {
		m.log.Warn("No owner is configured, signers and proposals can't be changed")
	}

	var err error
	if m.signers, err = signer.NewRegistry(dbase, m.admin, m.bus, logger); err != nil {
		return nil, err
	}
	if m.proposals, err = proposal.NewDirectory(dbase, proposal.BallotLoader, m.bus, logger); err != nil {
		return nil, err
	}
	m.factory = proposal.NewFactory(m.proposals, logger)
	m.template = proposal.NewTemplate(dbase, cfg.DefaultOptions...)
	m.dispatcher = vote.NewDispatcher(dbase, m.auth, m.signers, m.proposals,
		m.bus, cfg.ForwardTimeout, logger)
	return m, nil
}

func (m *Manager) Owner() common.Address {
	return m.owner
}

func (m *Manager) Bus() *event.Bus {
	return m.bus
}

func (m *Manager) Signers() *signer.Registry {
	return m.signers
}

func (m *Manager) Proposals() *proposal.Directory {
	return m.proposals
}

func (m *Manager) Authenticator() *auth.Authenticator {
	return m.auth
}

func (m *Manager) SubmitVote(ctx context.Context, sender common.Address, option, proposalID uint64, sig []byte, nonce uint64) *vote.Result {
	return m.dispatcher.SubmitVote(ctx, sender, option, proposalID, sig, nonce)
}

// CreateProposal creates a ballot with the options. Default options are
// used for empty options.
func (m *Manager) CreateProposal(caller common.Address, title string, options []string) (*proposal.Info, error) {
	if !m.admin.IsAdmin(caller) {
		return nil, errors.UnauthorizedError.Errorf("NotAdmin(caller=%s)", caller)
	}
	b, err := m.factory.Create(m.template, title, options)
	if err != nil {
		return nil, err
	}
	info, _ := m.proposals.Info(b.ID())
	return info, nil
}

// CloseProposal closes the ballot of the id.
func (m *Manager) CloseProposal(caller common.Address, id uint64) error {
	if !m.admin.IsAdmin(caller) {
		return errors.UnauthorizedError.Errorf("NotAdmin(caller=%s)", caller)
	}
	h, ok := m.proposals.Resolve(id)
	if !ok {
		return errors.UnknownProposalError.Errorf("UnknownProposal(id=%d)", id)
	}
	b, ok := h.(*proposal.Ballot)
	if !ok {
		return errors.UnsupportedError.Errorf("NotClosable(id=%d)", id)
	}
	if err := b.Close(); err != nil {
		return err
	}
	m.log.Infof("Proposal closed id=%d", id)
	return nil
}

func (m *Manager) Close() error {
	m.bus.Close()
	return m.dbase.Close()
}
