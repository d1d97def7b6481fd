package auth

import (
	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/crypto"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
)

// Authenticator recovers the signer of vote messages. It has no state, so
// it's safe for concurrent use.
type Authenticator struct {
	log log.Logger
}

func NewAuthenticator(logger log.Logger) *Authenticator {
	if logger == nil {
		logger = log.GlobalLogger()
	}
	return &Authenticator{
		log: log.ModuleLogger(logger, "auth"),
	}
}

// Recover returns the identity signed the message with the signature
// formatted as [R|S|V].
func (a *Authenticator) Recover(m VoteMessage, sig []byte) (common.Address, error) {
	s, err := crypto.ParseSignature(sig)
	if err != nil {
		return common.Address{}, errors.InvalidSignatureError.Wrap(err, "InvalidSignatureFormat")
	}
	if !s.HasV() {
		return common.Address{}, errors.InvalidSignatureError.New("NoRecoveryID")
	}
	if !s.IsLowS() {
		return common.Address{}, errors.InvalidSignatureError.New("MalleableSignature")
	}
	pk, err := s.RecoverPublicKey(MessageHash(m))
	if err != nil {
		return common.Address{}, errors.InvalidSignatureError.Wrap(err, "RecoveryFailure")
	}
	return common.NewAccountAddressFromPublicKey(pk), nil
}

// Authenticate checks that the claimed identity signed the message.
// It returns InvalidSignatureError if no identity can be recovered, and
// SignerMismatchError if the recovered one is not the claimed one.
func (a *Authenticator) Authenticate(claimed common.Address, m VoteMessage, sig []byte) (common.Address, error) {
	id, err := a.Recover(m, sig)
	if err != nil {
		a.log.Debugf("Fail to recover claimed=%s msg=%s err=%v", claimed, m, err)
		return common.Address{}, err
	}
	if id != claimed {
		return common.Address{}, errors.SignerMismatchError.Errorf(
			"SignerMismatch(claimed=%s,recovered=%s)", claimed, id)
	}
	return id, nil
}
