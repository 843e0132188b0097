package id

import "github.com/oklog/ulid/v2"

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys. Entropy is
// monotonic, so ids made within the same millisecond still sort in
// creation order.
func New() string {
	return ulid.Make().String()
}
