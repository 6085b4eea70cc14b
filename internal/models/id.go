// Package models provides data model definitions for the medminder core.
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is the canonical identity token for all persisted entities. It is
// string-backed and opaque; conversion to store-native representations
// happens at the store boundaries only.
type ID string

// localPrefix marks identities assigned by the local store before the remote
// store has had a chance to assign a server identity.
const localPrefix = "local-"

// NewLocalID generates a temporary, locally-assigned identity. It is replaced
// by the server identity on promotion once the remote write succeeds.
func NewLocalID() ID {
	return ID(localPrefix + uuid.New().String())
}

// IsLocal reports whether the identity is a local-temporary one that has not
// been promoted yet.
func (id ID) IsLocal() bool {
	return strings.HasPrefix(string(id), localPrefix)
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// Value implements driver.Valuer for ID.
func (id ID) Value() (driver.Value, error) {
	return string(id), nil
}

// Scan implements sql.Scanner for ID.
func (id *ID) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*id = ""
	case string:
		*id = ID(v)
	case []byte:
		*id = ID(v)
	default:
		return fmt.Errorf("cannot scan %T into models.ID", value)
	}
	return nil
}
