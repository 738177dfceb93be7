// Package store keeps rendered collages so they can be fetched after the
// request that produced them.
//
// Records carry the encoded image, the request parameters that produced it,
// and an expiry. Backends:
//   - memory: in-process map, for the CLI and tests
//   - file: JSON files in a directory, for single-host servers
//   - mongo: MongoDB collection, for multi-instance deployments
//
// # Usage
//
//	st, err := store.Open(ctx, store.Options{Backend: store.BackendMemory})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	rec := store.NewRecord(params, "collage.png", "image/png", data, store.DefaultTTL)
//	if err := st.Put(ctx, rec); err != nil {
//	    return err
//	}
//	got, err := st.Get(ctx, rec.ID) // store.ErrNotFound once expired
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a record does not exist or has expired.
	ErrNotFound = errors.New("not found")
)

// DefaultTTL is how long a record is kept.
const DefaultTTL = 24 * time.Hour

// Params are the request parameters a collage was rendered from.
type Params struct {
	Username string `json:"username" bson:"username"`
	ItemType string `json:"item_type" bson:"item_type"`
	Period   string `json:"period" bson:"period"`
	Rows     int    `json:"rows" bson:"rows"`
	Cols     int    `json:"cols" bson:"cols"`
	Variant  string `json:"variant,omitempty" bson:"variant,omitempty"`
	Arrange  string `json:"arrange,omitempty" bson:"arrange,omitempty"`
}

// Record is one stored collage.
type Record struct {
	ID          string    `json:"id" bson:"_id"`
	Params      Params    `json:"params" bson:"params"`
	Filename    string    `json:"filename" bson:"filename"`
	ContentType string    `json:"content_type" bson:"content_type"`
	Dropped     int       `json:"dropped" bson:"dropped"`
	Failed      int       `json:"failed" bson:"failed"`
	Image       []byte    `json:"image,omitempty" bson:"image"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt   time.Time `json:"expires_at" bson:"expires_at"`
}

// NewRecord creates a record with a fresh ID.
func NewRecord(p Params, filename, contentType string, image []byte, ttl time.Duration) *Record {
	// Millisecond precision survives every backend.
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &Record{
		ID:          uuid.NewString(),
		Params:      p,
		Filename:    filename,
		ContentType: contentType,
		Image:       image,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// IsExpired returns true if the record has passed its expiry.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Store is the interface for record storage backends.
type Store interface {
	// Get retrieves a record by ID. Returns ErrNotFound if the record
	// doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Record, error)

	// Put stores a record, replacing any record with the same ID.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired records.
	Cleanup(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// Backend names a store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendMongo  Backend = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend  Backend
	Dir      string
	MongoURI string
	Database string
}

// Open creates the store described by opts. An empty backend means memory.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case "", BackendMemory:
		s = NewMemoryStore()
	case BackendFile:
		s, err = NewFileStore(opts.Dir)
	case BackendMongo:
		s, err = NewMongoStore(ctx, opts.MongoURI, opts.Database)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
