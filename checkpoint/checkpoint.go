// Package checkpoint persists simulation run records in a bolt
// database so repeated runs can be compared and reproduced by seed.
package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"
)

// log is the global logging variable.
var log = logging.MustGetLogger("checkpoint")

// MAIN is the key name for all run records.
var MAIN = []byte("main")

// RunRecord stores one simulation run.
type RunRecord struct {
	// Seed reproduces the run.
	Seed uint64
	// Variants and Traits are the simulated dimensions.
	Variants int
	Traits   int
	// Heritability is the per-trait target, RealizedH2 what the
	// draw achieved.
	Heritability []float64
	RealizedH2   []float64
	// Seconds is the simulation wall time.
	Seconds float64
	// Time is when the run finished.
	Time time.Time
}

// IO reads and writes run records for one run label.
type IO struct {
	db  *bolt.DB
	key []byte
}

// NewIO creates a new IO for the given run label.
func NewIO(db *bolt.DB, key []byte) *IO {
	return &IO{db: db, key: key}
}

// Save saves a run record to the database.
func (s *IO) Save(rec *RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		log.Error("Error serializing run record", err)
		return err
	}
	err = SaveData(s.db, s.key, data)
	if err != nil {
		log.Error("Error saving run record", err)
	}
	return err
}

// Load returns the stored run record, or nil if there is none.
func (s *IO) Load() (*RunRecord, error) {
	b, err := LoadData(s.db, s.key)
	if err != nil || b == nil {
		return nil, err
	}

	var rec *RunRecord
	if err = json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	if rec != nil {
		log.Noticef("Found previous run (seed=%v, %dx%d)", rec.Seed, rec.Variants, rec.Traits)
	}
	return rec, nil
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// LoadData loads data from bolt database.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}

		v := b.Get(key)
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
