package webhard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
)

// fakeStore implements githubstore.Store with the same sha-precondition
// semantics as the real client. beforeWrite can inject a concurrent edit
// between a handler's read and write.
type fakeStore struct {
	mu          sync.Mutex
	objs        map[string]fakeObj
	n           int
	beforeWrite func(path string)
}

type fakeObj struct {
	content []byte
	sha     string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objs: map[string]fakeObj{}}
}

func (f *fakeStore) seed(path string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	f.objs[path] = fakeObj{content: content, sha: fmt.Sprintf("v%d", f.n)}
}

func (f *fakeStore) Read(ctx context.Context, path string) (*githubstore.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objs[path]
	if !ok {
		return nil, fmt.Errorf("fake: %s: %w", path, githubstore.ErrNotFound)
	}
	return &githubstore.Object{Content: obj.content, SHA: obj.sha, Size: int64(len(obj.content))}, nil
}

func (f *fakeStore) ReadRaw(ctx context.Context, path string) ([]byte, error) {
	obj, err := f.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return obj.Content, nil
}

func (f *fakeStore) Stat(ctx context.Context, path string) (*githubstore.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objs[path]
	if !ok {
		return nil, fmt.Errorf("fake: %s: %w", path, githubstore.ErrNotFound)
	}
	return &githubstore.Entry{Name: baseName(path), Path: path, SHA: obj.sha, Size: int64(len(obj.content)), Type: "file"}, nil
}

func (f *fakeStore) Write(ctx context.Context, path string, content []byte, sha, message string) (string, error) {
	if f.beforeWrite != nil {
		f.beforeWrite(path)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, exists := f.objs[path]
	if exists && sha == "" {
		return "", fmt.Errorf("fake: %s: %w", path, githubstore.ErrAlreadyExists)
	}
	if exists && sha != cur.sha {
		return "", fmt.Errorf("fake: %s: %w", path, githubstore.ErrVersionConflict)
	}
	if !exists && sha != "" {
		return "", fmt.Errorf("fake: %s: %w", path, githubstore.ErrVersionConflict)
	}
	f.n++
	obj := fakeObj{content: content, sha: fmt.Sprintf("v%d", f.n)}
	f.objs[path] = obj
	return obj.sha, nil
}

func (f *fakeStore) Delete(ctx context.Context, path, sha, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.objs[path]
	if !ok {
		return fmt.Errorf("fake: %s: %w", path, githubstore.ErrNotFound)
	}
	if sha != cur.sha {
		return fmt.Errorf("fake: %s: %w", path, githubstore.ErrVersionConflict)
	}
	delete(f.objs, path)
	return nil
}

func (f *fakeStore) List(ctx context.Context, folder string) ([]githubstore.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := []githubstore.Entry{}
	for p, obj := range f.objs {
		rest := strings.TrimPrefix(p, folder+"/")
		if rest != p && !strings.Contains(rest, "/") {
			entries = append(entries, githubstore.Entry{Name: baseName(p), Path: p, SHA: obj.sha, Size: int64(len(obj.content)), Type: "file"})
		}
	}
	return entries, nil
}

func (f *fakeStore) RawURL(path string) string {
	return "https://raw.example.test/" + path
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
