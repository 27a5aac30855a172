package store

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Shea690901/TachyFont/tferr"
)

// FileStore persists one file per (database, slot) under root, modeling
// a database named "incrfonts/<fontName>" from spec.md §6 as a
// subdirectory of root. A sibling ".version" file records the schema
// version that wrote the directory; OpenFileStore drops and recreates
// the directory's contents when it disagrees with SchemaVersion.
type FileStore struct {
	dir string
	log *logrus.Entry
}

// OpenFileStore opens (creating if absent) the database subdirectory
// root/database. If a prior version's ".version" file is found and
// disagrees with SchemaVersion, every slot file in the directory is
// removed before use, per spec.md §6's "on schema-version change,
// existing slots are dropped and recreated empty."
func OpenFileStore(root, database string, log *logrus.Entry) (*FileStore, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	dir := filepath.Join(root, database)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, tferr.PersistIo(database, err)
	}

	versionPath := filepath.Join(dir, ".version")
	fs := &FileStore{dir: dir, log: log.WithField("database", database)}

	cur, err := os.ReadFile(versionPath)
	switch {
	case os.IsNotExist(err):
		if err := fs.writeVersion(versionPath); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, tferr.PersistIo(database, err)
	default:
		v, convErr := strconv.Atoi(string(cur))
		if convErr != nil || v != SchemaVersion {
			fs.log.WithFields(logrus.Fields{
				"component": "store",
				"oldSchema": string(cur),
				"newSchema": SchemaVersion,
			}).Warn("schema version changed; dropping persisted slots")
			if err := fs.dropAll(); err != nil {
				return nil, err
			}
			if err := fs.writeVersion(versionPath); err != nil {
				return nil, err
			}
		}
	}

	return fs, nil
}

func (s *FileStore) writeVersion(path string) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(SchemaVersion)), 0o644); err != nil {
		return tferr.PersistIo(path, err)
	}
	return nil
}

func (s *FileStore) dropAll() error {
	for _, slot := range []Slot{SlotBase, SlotCharList} {
		if err := os.Remove(s.path(slot)); err != nil && !os.IsNotExist(err) {
			return tferr.PersistIo(string(slot), err)
		}
	}
	return nil
}

func (s *FileStore) path(slot Slot) string {
	return filepath.Join(s.dir, string(slot))
}

func (s *FileStore) Get(ctx context.Context, slot Slot) ([]byte, error) {
	data, err := os.ReadFile(s.path(slot))
	if os.IsNotExist(err) {
		return nil, missErr(s.dir, slot)
	}
	if err != nil {
		return nil, tferr.PersistIo(string(slot), err)
	}
	return data, nil
}

func (s *FileStore) Put(ctx context.Context, slot Slot, data []byte) error {
	tmp := s.path(slot) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return tferr.PersistIo(string(slot), err)
	}
	if err := os.Rename(tmp, s.path(slot)); err != nil {
		return tferr.PersistIo(string(slot), err)
	}
	s.log.WithFields(logrus.Fields{
		"component": "store",
		"slot":      slot,
		"bytes":     len(data),
	}).Debug("persisted slot")
	return nil
}

func (s *FileStore) Close() error { return nil }
