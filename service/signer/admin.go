package signer

import "github.com/icon-project/govote/common"

// AdminContext decides who may change the set of signers.
type AdminContext interface {
	IsAdmin(caller common.Address) bool
}

type ownerContext struct {
	owner common.Address
}

func (c *ownerContext) IsAdmin(caller common.Address) bool {
	return !c.owner.IsZero() && c.owner == caller
}

func (c *ownerContext) String() string {
	return "Owner(" + c.owner.String() + ")"
}

// NewOwner returns an AdminContext which allows only the owner. The zero
// address never becomes an admin.
func NewOwner(owner common.Address) AdminContext {
	return &ownerContext{owner: owner}
}
