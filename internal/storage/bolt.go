// Package storage — bolt.go
//
// BoltDB-backed persistent storage for the governance kernel.
//
// Schema (BoltDB bucket layout):
//
//	/ledger
//	    key:   8-byte big-endian event index [monotonic, sortable]
//	    value: JSON-encoded ledgerRecord (wraps ledger.Event)
//
//	/replay
//	    key:   replay guard key (provider_id::request_id, per replay.Key)
//	    value: 8-byte big-endian Unix-nanosecond expiry
//
//	/manifest
//	    key:   "current"
//	    value: JSON-encoded governance.FluxManifest
//
//	/meta
//	    key:   "schema_version"
//	    value: "1"
//
// Consistency model:
//   - Single-process, single-writer (BoltDB does not support concurrent writers).
//   - All writes use ACID transactions (bbolt Tx.Commit()).
//   - Reads use read-only transactions (bbolt.View()).
//   - CRC32 integrity check on database open (bbolt built-in).
//
// Retention:
//   - RetentionDays is recorded on the DB at Open; this package does not
//     prune ledger entries by age, and no retention goroutine runs.
//     PruneLedgerBefore removes entries only when a caller invokes it.
//     Pruning a hash-chained ledger only ever removes a contiguous prefix, since any
//     other removal would break chain verification for the remaining
//     entries starting from the zero hash.
//
// Failure modes:
//   - BoltDB file corruption: bbolt detects via CRC and returns an error
//     on Open(). The process logs a fatal event and refuses to start.
//   - Disk full: bbolt.Update() returns an error, which the replay guard
//     (spec §4.8) and the ledger (spec §4.9) both treat as fail-closed.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/aethermoore/scbe/internal/governance"
	"github.com/aethermoore/scbe/internal/ledger"
)

const (
	// DefaultDBPath is the default BoltDB file location.
	DefaultDBPath = "/var/lib/scbe/scbe.db"

	// SchemaVersion is the current database schema version.
	SchemaVersion = "1"

	// DefaultRetentionDays is the default ledger retention period.
	DefaultRetentionDays = 30

	bucketLedger   = "ledger"
	bucketReplay   = "replay"
	bucketManifest = "manifest"
	bucketMeta     = "meta"

	manifestKey = "current"
)

// ledgerRecord is the JSON-persisted form of a ledger.Event. ledger.Event's
// hash fields are fixed-size arrays, which encoding/json handles natively
// as arrays of numbers; this wrapper exists only to document the schema.
type ledgerRecord = ledger.Event

// DB wraps a BoltDB instance with typed accessors for kernel data. It
// implements ledger.Store and replay.Store directly so either package can
// be constructed straight from an open DB.
type DB struct {
	db            *bolt.DB
	retentionDays int
}

// Open opens (or creates) the BoltDB database at the given path.
// Initialises all required buckets and verifies the schema version.
// Returns an error if the database is corrupt or schema is incompatible.
func Open(path string, retentionDays int) (*DB, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}

	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout:      5 * time.Second,
		NoGrowSync:   false,
		FreelistType: bolt.FreelistArrayType,
	})
	if err != nil {
		return nil, fmt.Errorf("bolt.Open(%q): %w", path, err)
	}

	d := &DB{db: bdb, retentionDays: retentionDays}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketLedger, bucketReplay, bucketManifest, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("CreateBucketIfNotExists(%q): %w", name, err)
			}
		}

		meta := tx.Bucket([]byte(bucketMeta))
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(SchemaVersion)); err != nil {
				return fmt.Errorf("write schema_version: %w", err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("database initialisation failed: %w", err)
	}

	if err := d.checkSchemaVersion(); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	return d, nil
}

func (d *DB) checkSchemaVersion() error {
	return d.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(bucketMeta))
		v := meta.Get([]byte("schema_version"))
		if string(v) != SchemaVersion {
			return fmt.Errorf(
				"schema version mismatch: database has %q, kernel requires %q. "+
					"Run migration or restore from backup.",
				string(v), SchemaVersion,
			)
		}
		return nil
	})
}

// Close closes the underlying BoltDB file.
func (d *DB) Close() error {
	return d.db.Close()
}

// ─── ledger.Store ──────────────────────────────────────────────────────────

func indexKey(index uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)
	return key
}

// Head implements ledger.Store: it returns the event_hash of the
// highest-indexed ledger entry, or the zero hash if the ledger is empty.
func (d *DB) Head() ([64]byte, error) {
	var head [64]byte
	err := d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketLedger)).Cursor()
		k, v := c.Last()
		if k == nil {
			return nil
		}
		var rec ledgerRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		head = rec.EventHash
		return nil
	})
	return head, err
}

// NextIndex implements ledger.Store: one past the highest stored index, or
// 0 if the ledger is empty.
func (d *DB) NextIndex() (uint64, error) {
	var next uint64
	err := d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketLedger)).Cursor()
		k, _ := c.Last()
		if k == nil {
			next = 0
			return nil
		}
		next = binary.BigEndian.Uint64(k) + 1
		return nil
	})
	return next, err
}

// Put implements ledger.Store: durably persists event under its index.
func (d *DB) Put(event ledger.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("storage: marshal ledger event: %w", err)
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketLedger)).Put(indexKey(event.Index), data)
	})
}

// EventsSince implements ledger.Store: every event with Index >= index, in
// order.
func (d *DB) EventsSince(index uint64) ([]ledger.Event, error) {
	var events []ledger.Event
	err := d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketLedger)).Cursor()
		for k, v := c.Seek(indexKey(index)); k != nil; k, v = c.Next() {
			var rec ledgerRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			events = append(events, rec)
		}
		return nil
	})
	return events, err
}

// PruneLedgerBefore deletes every ledger entry with Index < index. Only a
// contiguous prefix may ever be removed: a hash-chained ledger's
// verification starts from the zero hash, so the surviving suffix's first
// entry becomes the new implicit chain root for any reader that trusts
// this prune boundary.
func (d *DB) PruneLedgerBefore(index uint64) (int, error) {
	var deleted int
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketLedger))
		c := b.Cursor()
		var toDelete [][]byte
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if binary.BigEndian.Uint64(k) >= index {
				break
			}
			keyCopy := make([]byte, len(k))
			copy(keyCopy, k)
			toDelete = append(toDelete, keyCopy)
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

// ─── replay.Store ──────────────────────────────────────────────────────────

// CheckAndSet implements replay.Store: atomically checks whether key is
// unexpired and, if it is not, records it as observed until now+ttl.
func (d *DB) CheckAndSet(key string, now time.Time, ttl time.Duration) (bool, error) {
	var ok bool
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketReplay))
		raw := b.Get([]byte(key))
		if raw != nil {
			expiresAtNano := int64(binary.BigEndian.Uint64(raw))
			if now.Before(time.Unix(0, expiresAtNano)) {
				ok = false
				return nil
			}
		}
		expiry := make([]byte, 8)
		binary.BigEndian.PutUint64(expiry, uint64(now.Add(ttl).UnixNano()))
		ok = true
		return b.Put([]byte(key), expiry)
	})
	return ok, err
}

// PruneExpiredReplay deletes every replay-guard key whose expiry has
// already passed as of now. Returns the number of entries deleted.
func (d *DB) PruneExpiredReplay(now time.Time) (int, error) {
	var deleted int
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketReplay))
		c := b.Cursor()
		var toDelete [][]byte
		for k, v := c.First(); k != nil; k, v = c.Next() {
			expiresAtNano := int64(binary.BigEndian.Uint64(v))
			if !now.Before(time.Unix(0, expiresAtNano)) {
				keyCopy := make([]byte, len(k))
				copy(keyCopy, k)
				toDelete = append(toDelete, keyCopy)
			}
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}

// ─── manifest persistence ──────────────────────────────────────────────────

// PutManifest persists m as the current flux manifest.
func (d *DB) PutManifest(m governance.FluxManifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("storage: marshal manifest: %w", err)
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketManifest)).Put([]byte(manifestKey), data)
	})
}

// GetManifest returns the persisted current manifest, or (nil, nil) if
// none has been stored yet.
func (d *DB) GetManifest() (*governance.FluxManifest, error) {
	var m governance.FluxManifest
	found := false
	err := d.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketManifest)).Get([]byte(manifestKey))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &m)
	})
	if err != nil {
		return nil, fmt.Errorf("storage: read manifest: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &m, nil
}
