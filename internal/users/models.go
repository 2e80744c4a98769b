package users

import (
	"encoding/json"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Account status values. "requsted" is the spelling stored by existing
// clients for a pending seller application.
const (
	StatusRequested = "requsted"
	StatusVerified  = "verified"
)

// timeLayout matches JavaScript's Date.prototype.toISOString.
const timeLayout = "2006-01-02T15:04:05.000Z"

// LoginResult is the insert acknowledgment on first login and the update
// result afterwards.
type LoginResult struct {
	Inserted *docstore.InsertResult
	Updated  *docstore.UpdateResult
}

func (r LoginResult) MarshalJSON() ([]byte, error) {
	if r.Inserted != nil {
		return json.Marshal(r.Inserted)
	}
	return json.Marshal(r.Updated)
}
