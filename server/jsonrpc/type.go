package jsonrpc

import (
	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/errors"
)

type HexBytes string

func (hs HexBytes) Bytes() ([]byte, error) {
	bs, err := common.ParseHexBytes(string(hs))
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrapf(err, "InvalidHexBytes(%s)", hs)
	}
	return bs, nil
}

type HexInt string

func (i HexInt) Uint64() (uint64, error) {
	if len(i) == 0 {
		return 0, nil
	}
	v, err := common.ParseUint(string(i), 64)
	if err != nil {
		return 0, errors.IllegalArgumentError.Wrapf(err, "InvalidHexInt(%s)", i)
	}
	return v, nil
}

func (i HexInt) Value() uint64 {
	v, err := i.Uint64()
	if err != nil {
		return 0
	}
	return v
}

type Address string

func (addr Address) Address() (common.Address, error) {
	a, err := common.NewAddressFromString(string(addr))
	if err != nil {
		return a, errors.IllegalArgumentError.Wrapf(err, "InvalidAddress(%s)", addr)
	}
	return a, nil
}
