package wallet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/scrypt"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/crypto"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/module"
)

// Key stores are in the version 3 format shared with ethereum wallets,
// using scrypt and AES-128-CTR.
const (
	keyStoreVersion = 3
	cipherAES128CTR = "aes-128-ctr"
	kdfScrypt       = "scrypt"

	StandardScryptN = 1 << 16
	scryptR         = 8
	scryptP         = 1
	derivedKeyLen   = 32
)

type cipherParams struct {
	IV common.HexBytes `json:"iv"`
}

type scryptParams struct {
	DKLen int             `json:"dklen"`
	N     int             `json:"n"`
	R     int             `json:"r"`
	P     int             `json:"p"`
	Salt  common.HexBytes `json:"salt"`
}

// derive returns the 32 bytes key. The first half encrypts the private key
// and the second half is used for the MAC.
func (p *scryptParams) derive(pw []byte) (encKey, macKey []byte, err error) {
	key, err := scrypt.Key(pw, p.Salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return nil, nil, errors.IllegalArgumentError.Wrap(err, "InvalidScryptParams")
	}
	if len(key) < derivedKeyLen {
		return nil, nil, errors.IllegalArgumentError.Errorf("ShortDerivedKey(len=%d)", len(key))
	}
	return key[:16], key[16:32], nil
}

type cryptoSection struct {
	Cipher       string          `json:"cipher"`
	CipherParams cipherParams    `json:"cipherparams"`
	CipherText   common.HexBytes `json:"ciphertext"`
	KDF          string          `json:"kdf"`
	KDFParams    scryptParams    `json:"kdfparams"`
	MAC          common.HexBytes `json:"mac"`
}

type keyStore struct {
	Address common.Address `json:"address"`
	ID      string         `json:"id"`
	Version int            `json:"version"`
	Crypto  cryptoSection  `json:"crypto"`
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.CriticalIOError.Wrap(err, "FailToReadRandom")
	}
	return b, nil
}

func aesCTR(key, iv, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

func EncryptKeyAsKeyStore(s *crypto.PrivateKey, pw []byte) ([]byte, error) {
	return encryptKey(s, pw, StandardScryptN)
}

func encryptKey(s *crypto.PrivateKey, pw []byte, n int) ([]byte, error) {
	salt, err := randomBytes(32)
	if err != nil {
		return nil, err
	}
	iv, err := randomBytes(aes.BlockSize)
	if err != nil {
		return nil, err
	}
	kdf := scryptParams{DKLen: derivedKeyLen, N: n, R: scryptR, P: scryptP, Salt: salt}
	encKey, macKey, err := kdf.derive(pw)
	if err != nil {
		return nil, err
	}
	cipherText, err := aesCTR(encKey, iv, s.Bytes())
	if err != nil {
		return nil, err
	}
	ks := keyStore{
		Address: common.NewAccountAddressFromPublicKey(s.PublicKey()),
		ID:      uuid.Must(uuid.NewV4()).String(),
		Version: keyStoreVersion,
		Crypto: cryptoSection{
			Cipher:       cipherAES128CTR,
			CipherParams: cipherParams{IV: iv},
			CipherText:   cipherText,
			KDF:          kdfScrypt,
			KDFParams:    kdf,
			MAC:          crypto.Keccak256(macKey, cipherText),
		},
	}
	return json.MarshalIndent(&ks, "", "  ")
}

func parseKeyStore(data []byte) (*keyStore, error) {
	ks := new(keyStore)
	if err := json.Unmarshal(data, ks); err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "InvalidKeyStore")
	}
	return ks, nil
}

func (ks *keyStore) check() error {
	switch {
	case ks.Version != keyStoreVersion:
		return errors.UnsupportedError.Errorf("UnsupportedVersion(version=%d)", ks.Version)
	case ks.Crypto.Cipher != cipherAES128CTR:
		return errors.UnsupportedError.Errorf("UnsupportedCipher(cipher=%s)", ks.Crypto.Cipher)
	case ks.Crypto.KDF != kdfScrypt:
		return errors.UnsupportedError.Errorf("UnsupportedKDF(kdf=%s)", ks.Crypto.KDF)
	}
	return nil
}

func DecryptKeyStore(data, pw []byte) (*crypto.PrivateKey, error) {
	ks, err := parseKeyStore(data)
	if err != nil {
		return nil, err
	}
	if err := ks.check(); err != nil {
		return nil, err
	}
	c := &ks.Crypto
	encKey, macKey, err := c.KDFParams.derive(pw)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(crypto.Keccak256(macKey, c.CipherText), c.MAC) {
		return nil, errors.IllegalArgumentError.New("InvalidPassword")
	}
	plain, err := aesCTR(encKey, c.CipherParams.IV, c.CipherText)
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "InvalidCipherParams")
	}
	secret, err := crypto.ParsePrivateKey(plain)
	if err != nil {
		return nil, err
	}
	if addr := common.NewAccountAddressFromPublicKey(secret.PublicKey()); addr != ks.Address {
		log.Warnf("Recovered address %s != keyStore address %s", addr, ks.Address)
	}
	return secret, nil
}

func ReadAddressFromKeyStore(data []byte) (common.Address, error) {
	ks, err := parseKeyStore(data)
	if err != nil {
		return common.Address{}, err
	}
	return ks.Address, nil
}

func NewFromKeyStore(data, pw []byte) (module.Wallet, error) {
	secret, err := DecryptKeyStore(data, pw)
	if err != nil {
		return nil, err
	}
	return NewFromPrivateKey(secret), nil
}

func KeyStoreFromWallet(w module.Wallet, pw []byte) ([]byte, error) {
	s, ok := w.(*softwareWallet)
	if !ok {
		return nil, errors.UnsupportedError.New("NotSoftwareWallet")
	}
	return EncryptKeyAsKeyStore(s.skey, pw)
}
