package util

import "github.com/google/uuid"

const shortIDLength = 8

// ShortID abbreviates a UUID for status lines and log prefixes. Values that
// are not UUIDs are returned unchanged.
func ShortID(id string) string {
	if len(id) != 36 || uuid.Validate(id) != nil {
		return id
	}
	return id[:shortIDLength]
}
