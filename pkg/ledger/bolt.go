package ledger

import (
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var processedBucket = []byte("processed")

// BoltStore keeps the ledger in a bbolt bucket keyed by source name,
// for deployments that want a single transactional store file instead
// of an append-only text file. Values are the UTC time each source was
// recorded.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) the ledger database.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening ledger db %s", path)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// AlreadyProcessed returns every recorded source name. A database
// without the bucket reads as empty.
func (s *BoltStore) AlreadyProcessed() (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(processedBucket)
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(k, _ []byte) error {
			seen[string(k)] = struct{}{}
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading ledger")
	}
	return seen, nil
}

// Record writes the names in one transaction.
func (s *BoltStore) Record(names []string) error {
	if len(names) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists(processedBucket)
		if err != nil {
			return err
		}
		stamp := []byte(time.Now().UTC().Format(time.RFC3339))
		for _, name := range names {
			if err := bkt.Put([]byte(name), stamp); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "recording ledger entries")
}
