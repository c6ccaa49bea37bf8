package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/ikmich/package-deps-admin/internal/util"
)

// File keeps every key in one JSON object on disk. The file is read on
// each access and rewritten atomically on each change.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) read() (map[string]json.RawMessage, error) {
	bytes, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	doc := map[string]json.RawMessage{}
	if len(bytes) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(bytes, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return doc, nil
}

func (f *File) write(doc map[string]json.RawMessage) error {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		util.Panicf("kv: json.MarshalIndent failed: %s", err)
	}
	content = append(content, '\n')
	return util.TryWriteAtomic(f.path, content)
}

func (f *File) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, false, err
	}
	value, ok := doc[key]
	return value, ok, nil
}

// Set stores value, which must be valid JSON. A corrupt file is
// replaced by a fresh document.
func (f *File) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("kv: value for %q is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		doc = map[string]json.RawMessage{}
	}
	doc[key] = json.RawMessage(value)
	return f.write(doc)
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return f.write(doc)
}

func (f *File) Close() error {
	return nil
}
