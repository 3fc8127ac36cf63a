package lifecycle

import (
	"bytes"
	"eigenkey/internal/lifecycle/interfaces"
	"eigenkey/internal/models"
	"eigenkey/internal/structures"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// FileKeyStore keeps the key state as one indented JSON object. Writes go
// through a temp file and rename; concurrent writers are last-writer-wins.
type FileKeyStore struct {
	path string
}

func NewFileKeyStore(conf *structures.Config) interfaces.KeyStateStoreInterface {
	return &FileKeyStore{path: conf.Persistence.KeyStatePath}
}

func (f *FileKeyStore) Load() (models.KeyState, error) {
	state := make(models.KeyState)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return state, nil
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return make(models.KeyState), fmt.Errorf("decode key state %s: %w", f.path, err)
	}
	for key, rec := range state {
		if rec == nil {
			delete(state, key)
		}
	}
	return state, nil
}

func (f *FileKeyStore) Save(state models.KeyState) error {
	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(f.path, jsonData)
}

func (f *FileKeyStore) Probe() error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".probe-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	tmp.Close()
	return os.Remove(name)
}

func writeFileAtomic(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}
