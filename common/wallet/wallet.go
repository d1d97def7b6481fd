package wallet

import (
	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/crypto"
	"github.com/icon-project/govote/module"
)

type softwareWallet struct {
	skey *crypto.PrivateKey
	pkey *crypto.PublicKey
}

func (w *softwareWallet) Address() common.Address {
	return common.NewAccountAddressFromPublicKey(w.pkey)
}

// Sign returns [R|S|V] formatted signature of the hash.
func (w *softwareWallet) Sign(hash []byte) ([]byte, error) {
	sig, err := crypto.NewSignature(hash, w.skey)
	if err != nil {
		return nil, err
	}
	return sig.SerializeRSV()
}

func (w *softwareWallet) PublicKey() []byte {
	return w.pkey.SerializeCompressed()
}

func New() module.Wallet {
	sk, pk := crypto.GenerateKeyPair()
	return &softwareWallet{
		skey: sk,
		pkey: pk,
	}
}

func NewFromPrivateKey(sk *crypto.PrivateKey) module.Wallet {
	return &softwareWallet{
		skey: sk,
		pkey: sk.PublicKey(),
	}
}
