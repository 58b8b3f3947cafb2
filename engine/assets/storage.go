package assets

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Storage is a read-only blob of bytes opened from some backing store.
type Storage interface {
	Size() int
	Data() []byte
}

// Opener opens named blobs. Missing names yield an error matching fs.ErrNotExist.
type Opener interface {
	Open(name string) (Storage, error)
}

type memoryStorage []byte

func (m memoryStorage) Size() int    { return len(m) }
func (m memoryStorage) Data() []byte { return m }

func NewMemoryStorage(data []byte) Storage {
	return memoryStorage(data)
}

// Dir opens files relative to a directory on disk.
type Dir string

func (d Dir) Open(name string) (Storage, error) {
	data, err := os.ReadFile(filepath.Join(string(d), filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	return memoryStorage(data), nil
}

// MemoryFS is an in-memory Opener keyed by slash separated names.
type MemoryFS map[string][]byte

func (m MemoryFS) Open(name string) (Storage, error) {
	data, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return memoryStorage(data), nil
}

// FS adapts an fs.FS, such as an embed.FS, into an Opener.
func FS(fsys fs.FS) Opener {
	return fsOpener{fsys}
}

type fsOpener struct {
	fsys fs.FS
}

func (o fsOpener) Open(name string) (Storage, error) {
	data, err := fs.ReadFile(o.fsys, name)
	if err != nil {
		return nil, err
	}
	return memoryStorage(data), nil
}
