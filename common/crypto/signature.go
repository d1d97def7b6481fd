package crypto

import (
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/icon-project/govote/common/errors"
)

const (
	SignatureLenRawWithV = 65
	SignatureLenRaw      = 64
	HashLen              = 32
)

// Ethereum wallets and the compact format of secp256k1 add this to the
// recovery id.
const recoveryIDOffset = 27

// Signature is an ECDSA signature over secp256k1 with an optional recovery
// id (V). The zero value is an empty signature.
type Signature struct {
	rs   []byte
	v    byte
	hasV bool
}

var (
	errNoV          = errors.IllegalArgumentError.New("NoRecoveryID")
	errEmpty        = errors.IllegalArgumentError.New("EmptySignature")
	errBadRecoverID = errors.IllegalArgumentError.New("InvalidRecoveryID")
)

// NewSignature signs the 32 bytes hash. The result always has V.
func NewSignature(hash []byte, privKey *PrivateKey) (*Signature, error) {
	if len(hash) != HashLen || privKey == nil {
		return nil, errors.IllegalArgumentError.Errorf("InvalidSignArgs(hashLen=%d)", len(hash))
	}
	compact := ecdsa.SignCompact(privKey.real, hash, false)
	return &Signature{
		rs:   compact[1:],
		v:    compact[0] - recoveryIDOffset,
		hasV: true,
	}, nil
}

func withRS(rs []byte) *Signature {
	return &Signature{rs: append([]byte(nil), rs...)}
}

func (sig *Signature) setV(v byte) error {
	if v > 1 {
		return errBadRecoverID
	}
	sig.v, sig.hasV = v, true
	return nil
}

// ParseSignature accepts [R|S] or [R|S|V]. V may be 0, 1, 27 or 28.
func ParseSignature(b []byte) (*Signature, error) {
	switch len(b) {
	case SignatureLenRaw:
		return withRS(b), nil
	case SignatureLenRawWithV:
		sig := withRS(b[:SignatureLenRaw])
		v := b[SignatureLenRaw]
		if v >= recoveryIDOffset {
			v -= recoveryIDOffset
		}
		if err := sig.setV(v); err != nil {
			return nil, err
		}
		return sig, nil
	case 0:
		return nil, errEmpty
	default:
		return nil, errors.IllegalArgumentError.Errorf("InvalidSignatureLength(%d)", len(b))
	}
}

// ParseSignatureVRS accepts [V|R|S] with V of 0 or 1.
func ParseSignatureVRS(b []byte) (*Signature, error) {
	if len(b) != SignatureLenRawWithV {
		return nil, errors.IllegalArgumentError.Errorf("InvalidSignatureLength(%d)", len(b))
	}
	sig := withRS(b[1:])
	if err := sig.setV(b[0]); err != nil {
		return nil, err
	}
	return sig, nil
}

func (sig *Signature) HasV() bool {
	return sig.hasV
}

// SerializeRS returns [R|S]. The returned slice is shared with the signature.
func (sig *Signature) SerializeRS() ([]byte, error) {
	if len(sig.rs) != SignatureLenRaw {
		return nil, errEmpty
	}
	return sig.rs, nil
}

func (sig *Signature) SerializeVRS() ([]byte, error) {
	if !sig.hasV {
		return nil, errNoV
	}
	return append([]byte{sig.v}, sig.rs...), nil
}

// SerializeRSV returns [R|S|V], the layout accepted for vote submission.
func (sig *Signature) SerializeRSV() ([]byte, error) {
	if !sig.hasV {
		return nil, errNoV
	}
	out := make([]byte, 0, SignatureLenRawWithV)
	return append(append(out, sig.rs...), sig.v), nil
}

func (sig *Signature) RecoverPublicKey(hash []byte) (*PublicKey, error) {
	if !sig.hasV {
		return nil, errNoV
	}
	if len(hash) != HashLen {
		return nil, errors.IllegalArgumentError.Errorf("InvalidHashLength(%d)", len(hash))
	}
	compact := append([]byte{sig.v + recoveryIDOffset}, sig.rs...)
	pk, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrap(err, "RecoverFailure")
	}
	return &PublicKey{real: pk}, nil
}

// scalars returns R and S, or false if either is not below the curve order.
func (sig *Signature) scalars() (r, s secp256k1.ModNScalar, ok bool) {
	if len(sig.rs) != SignatureLenRaw {
		return r, s, false
	}
	if r.SetByteSlice(sig.rs[:32]) || s.SetByteSlice(sig.rs[32:]) {
		return r, s, false
	}
	return r, s, true
}

func (sig *Signature) Verify(hash []byte, pubKey *PublicKey) bool {
	if len(hash) != HashLen || pubKey == nil {
		return false
	}
	r, s, ok := sig.scalars()
	if !ok {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(hash, pubKey.real)
}

// IsLowS reports whether S is in the lower half of the curve order.
func (sig *Signature) IsLowS() bool {
	_, s, ok := sig.scalars()
	return ok && !s.IsOverHalfOrder()
}

// String returns the hex of [R|S|V], with "[no V]" appended if V is absent.
func (sig *Signature) String() string {
	if sig == nil || len(sig.rs) == 0 {
		return "[empty]"
	}
	if !sig.hasV {
		return "0x" + hex.EncodeToString(sig.rs) + "[no V]"
	}
	rsv, _ := sig.SerializeRSV()
	return "0x" + hex.EncodeToString(rsv)
}
