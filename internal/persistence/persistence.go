package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketFanState  = "fanState"
	BucketCurves    = "defaultCurves"
	BucketSchedules = "schedules"
)

// StoredFanState is the part of a fan's runtime configuration that
// survives daemon restarts: the user-selected mode, the manual duty
// cycle and the mutation version counter.
type StoredFanState struct {
	Mode       string `json:"mode"`
	ManualDuty int    `json:"manualDuty"`
	Version    int64  `json:"version"`
}

type Persistence interface {
	Init() error

	SaveFanState(fanId string, state StoredFanState) error
	LoadFanState(fanId string) (StoredFanState, error)
	DeleteFanState(fanId string) error

	SaveDefaultCurve(fanId string, points []configuration.CurvePointConfig) error
	LoadDefaultCurve(fanId string) ([]configuration.CurvePointConfig, error)
	DeleteDefaultCurve(fanId string) error

	SaveScheduleEntries(fanId string, entries []configuration.ScheduleEntryConfig) error
	LoadScheduleEntries(fanId string) ([]configuration.ScheduleEntryConfig, error)
	DeleteScheduleEntries(fanId string) error
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		// create directory
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (p persistence) saveValue(bucket string, key string, value interface{}) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		err = b.Put([]byte(key), data)
		return err
	})
}

func (p persistence) loadValue(bucket string, key string, target interface{}) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(key))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, target)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved data for %s/%s: %v", bucket, key, err)
			err := b.Delete([]byte(key))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s/%s: %v", bucket, key, err)
			}
			return os.ErrNotExist
		}

		return nil
	})
}

func (p persistence) deleteValue(bucket string, key string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			// no bucket yet
			return nil
		}
		v := b.Get([]byte(key))
		if v == nil {
			// no data for given key
			return nil
		}

		return b.Delete([]byte(key))
	})
}

func (p persistence) SaveFanState(fanId string, state StoredFanState) error {
	return p.saveValue(BucketFanState, fanId, state)
}

func (p persistence) LoadFanState(fanId string) (StoredFanState, error) {
	var state StoredFanState
	err := p.loadValue(BucketFanState, fanId, &state)
	return state, err
}

func (p persistence) DeleteFanState(fanId string) error {
	return p.deleteValue(BucketFanState, fanId)
}

func (p persistence) SaveDefaultCurve(fanId string, points []configuration.CurvePointConfig) error {
	return p.saveValue(BucketCurves, fanId, points)
}

func (p persistence) LoadDefaultCurve(fanId string) ([]configuration.CurvePointConfig, error) {
	var points []configuration.CurvePointConfig
	err := p.loadValue(BucketCurves, fanId, &points)
	return points, err
}

func (p persistence) DeleteDefaultCurve(fanId string) error {
	return p.deleteValue(BucketCurves, fanId)
}

func (p persistence) SaveScheduleEntries(fanId string, entries []configuration.ScheduleEntryConfig) error {
	return p.saveValue(BucketSchedules, fanId, entries)
}

func (p persistence) LoadScheduleEntries(fanId string) ([]configuration.ScheduleEntryConfig, error) {
	var entries []configuration.ScheduleEntryConfig
	err := p.loadValue(BucketSchedules, fanId, &entries)
	return entries, err
}

func (p persistence) DeleteScheduleEntries(fanId string) error {
	return p.deleteValue(BucketSchedules, fanId)
}
