package directory

import (
	"context"
	"encoding/json"
)

// Document is one record in a scope-partitioned collection.
type Document struct {
	ID   string
	Data map[string]any
}

// DataTo decodes the document payload into a typed value via a JSON
// round-trip, mirroring the Firestore DataTo contract.
func (d Document) DataTo(v any) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Filter is one equality predicate applied server-side by Query.
type Filter struct {
	Field string
	Value any
}

// Store is read/merge-write access to the operational document collections.
// All data lives under one scope (site) partition. Reads report absence as
// (zero, false, nil), never as an error.
type Store interface {
	// List returns every document in scope/collection.
	List(ctx context.Context, scope, collection string) ([]Document, error)
	// Get returns one document by id.
	Get(ctx context.Context, scope, collection, id string) (Document, bool, error)
	// Query returns documents matching up to two equality predicates.
	Query(ctx context.Context, scope, collection string, filters ...Filter) ([]Document, error)
	// Set writes one document; with merge, existing fields not present in
	// data are preserved.
	Set(ctx context.Context, scope, collection, id string, data map[string]any, merge bool) error
	// Scopes returns the ids of every scope partition.
	Scopes(ctx context.Context) ([]string, error)
	// GetGlobal returns one document from a root-level collection that sits
	// outside the scope partitions.
	GetGlobal(ctx context.Context, collection, id string) (Document, bool, error)
}

// Collection names under bases/{scope}.
const (
	CollectionDrivers           = "drivers"
	CollectionUsers             = "users"
	CollectionShifts            = "shifts"
	CollectionLocationResponses = "location_responses"
	CollectionAvailability      = "availability"
	CollectionAttendance        = "attendance"
	CollectionReturns           = "returns"
	CollectionNotificationsLog  = "notifications_log"
	CollectionConfig            = "config"
)

// Root-level collections outside the scope partitions.
const (
	GlobalCollectionSystem = "system"
	GlobalDocConfig        = "config"
)
