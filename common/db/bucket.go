package db

import (
	"github.com/icon-project/govote/common/errors"
)

// Bucket
type Bucket interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Set(key []byte, value []byte) error
	Delete(key []byte) error
}

type BucketID string

//	Bucket ID
const (
	// SignerByAddress maps signer record from signer address.
	SignerByAddress BucketID = "A"

	// ProposalByID maps proposal descriptor from proposal id.
	ProposalByID BucketID = "P"

	// BallotByID maps ballot state (options, tally, voters) from proposal id.
	BallotByID BucketID = "B"

	// ChainProperty is general key value map for service properties such as
	// the next proposal id.
	ChainProperty BucketID = "C"
)

// internalKey returns key prefixed with the bucket's id.
func internalKey(id BucketID, key []byte) []byte {
	buf := make([]byte, len(key)+len(id))
	copy(buf, id)
	copy(buf[len(id):], key)
	return buf
}

func DoGet(bk Bucket, key []byte) ([]byte, error) {
	v, err := bk.Get(key)
	if v == nil && err == nil {
		return nil, errors.NotFoundError.New("NotFound")
	}
	return v, err
}

func DoGetWithBucketID(dbase Database, bid BucketID, key []byte) ([]byte, error) {
	bk, err := dbase.GetBucket(bid)
	if err != nil {
		return nil, err
	}
	return DoGet(bk, key)
}
