package webhard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	gopath "path"
	"sort"
	"strings"

	"github.com/Creative781/my-blackhole-app/internal/githubstore"
)

type listedFile struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA    string `json:"sha"`
	RawURL string `json:"raw_url,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	folder, ok := s.uploadFolder(w, r.URL.Query().Get("folder"))
	if !ok {
		return
	}
	entries, err := s.store.List(ctx, folder)
	if err != nil {
		if githubstore.IsNotFound(err) {
			// the folder appears with the first upload
			writeJSON(w, http.StatusOK, map[string]any{"files": []listedFile{}})
			return
		}
		log.Printf("blackhole: list files in %s: %v", folder, err)
		writeStoreError(w, err)
		return
	}

	rows := make([]listedFile, 0, len(entries))
	for _, e := range entries {
		if e.Type != "file" {
			continue
		}
		row := listedFile{
			Name: e.Name,
			Path: e.Path,
			Size: e.Size,
			SHA:  e.SHA,
		}
		if s.rawLinks {
			row.RawURL = s.store.RawURL(e.Path)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	writeJSON(w, http.StatusOK, map[string]any{"files": rows})
}

type uploadResult struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	SHA   string `json:"sha,omitempty"`
	Size  int64  `json:"size"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	folder, ok := s.uploadFolder(w, r.FormValue("folder"))
	if !ok {
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		writeError(w, http.StatusBadRequest, "no files in the upload")
		return
	}

	results := make([]uploadResult, 0, len(r.MultipartForm.File["files"]))
	for _, fh := range r.MultipartForm.File["files"] {
		name := cleanFileName(fh.Filename)
		res := uploadResult{Name: name, Size: fh.Size}
		switch {
		case name == "":
			res.Name = fh.Filename
			res.Error = "unusable file name"
		case fh.Size > s.maxUpload:
			// rejected before any store call
			res.Error = fmt.Sprintf("file exceeds the %d MB limit", s.maxUpload/(1<<20))
		default:
			f, err := fh.Open()
			if err != nil {
				res.Error = "could not read the uploaded file"
				break
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				res.Error = "could not read the uploaded file"
				break
			}
			path, sha, err := s.storeUnique(ctx, folder, name, content)
			if err != nil {
				log.Printf("blackhole: upload %s: %v", name, err)
				res.Error = storeErrorMessage(err)
				break
			}
			res.Path = path
			res.SHA = sha
			res.OK = true
		}
		results = append(results, res)
	}

	s.publishEvent(ctx, "files.uploaded", map[string]any{"folder": folder, "count": len(results)})
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// storeUnique writes content under a name that does not collide with an
// existing repo file: report.pdf, report (1).pdf, report (2).pdf and so on.
// Every write is create-only, so a concurrent upload landing on the same
// name just pushes this one to the next suffix.
func (s *Server) storeUnique(ctx context.Context, folder, name string, content []byte) (string, string, error) {
	ext := gopath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := githubstore.JoinPath(folder, candidate)

		if _, err := s.store.Stat(ctx, path); err == nil {
			continue
		} else if !githubstore.IsNotFound(err) {
			return "", "", err
		}

		sha, err := s.store.Write(ctx, path, content, "", "Upload via Blackhole")
		if errors.Is(err, githubstore.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", "", err
		}
		return path, sha, nil
	}
	return "", "", fmt.Errorf("no free name for %s", name)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := s.filePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	data, err := s.store.ReadRaw(ctx, p)
	if err != nil {
		log.Printf("blackhole: download %s: %v", p, err)
		writeStoreError(w, err)
		return
	}

	name := gopath.Base(p)
	contentType := mime.TypeByExtension(gopath.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	if r.URL.Query().Get("inline") == "1" {
		if int64(len(data)) > s.inlineLimit {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large for inline preview")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"name":    name,
			"mime":    contentType,
			"dataUri": "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
		})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := s.filePath(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	entry, err := s.store.Stat(ctx, p)
	if err != nil {
		if githubstore.IsNotFound(err) {
			// already gone: deleting twice is not an error
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		writeStoreError(w, err)
		return
	}
	if err := s.store.Delete(ctx, p, entry.SHA, "Delete via Blackhole"); err != nil {
		log.Printf("blackhole: delete %s: %v", p, err)
		writeStoreError(w, err)
		return
	}

	s.publishEvent(ctx, "files.deleted", map[string]any{"path": p})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// uploadFolder resolves the folder query parameter against the configured
// folders; empty means the primary one.
func (s *Server) uploadFolder(w http.ResponseWriter, raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return s.folders[0], true
	}
	p := githubstore.JoinPath(raw)
	for _, f := range s.folders {
		if p == f {
			return p, true
		}
	}
	writeError(w, http.StatusBadRequest, "unknown folder")
	return "", false
}

// filePath validates a client-supplied path: it must point directly inside
// one of the configured folders.
func (s *Server) filePath(w http.ResponseWriter, raw string) (string, bool) {
	p := githubstore.JoinPath(raw)
	if p == "" {
		writeError(w, http.StatusBadRequest, "missing file path")
		return "", false
	}
	if strings.Contains(p, "..") {
		writeError(w, http.StatusBadRequest, "invalid file path")
		return "", false
	}
	for _, f := range s.folders {
		if strings.HasPrefix(p, f+"/") {
			return p, true
		}
	}
	writeError(w, http.StatusBadRequest, "path outside the file folders")
	return "", false
}

// cleanFileName reduces an uploaded name to a bare base name and throws
// away anything unusable as a repo path segment.
func cleanFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = gopath.Base(name)
	if name == "." || name == "/" || strings.HasPrefix(name, "..") {
		return ""
	}
	return name
}
