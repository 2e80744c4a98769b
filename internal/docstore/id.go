package docstore

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a fresh ObjectID hex string and the creation time embedded
// in it.
func NewID() (string, time.Time) {
	oid := primitive.NewObjectID()
	return oid.Hex(), oid.Timestamp()
}

// ParseID validates a 24-hex ObjectID and returns its creation time.
func ParseID(id string) (time.Time, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid.Timestamp(), nil
}
