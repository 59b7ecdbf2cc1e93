// Package dirwalk implements the directory oracle: a rooted, escape-safe
// preorder walk of the served base directory that yields regular files with
// their relative path and metadata.
package dirwalk

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/onestay/qftp/internal/qerr"
)

// maxConcurrentWalks bounds how many directory walks run on the blocking
// pool at once, so a burst of ListFiles/GetFiles requests can't pin every
// OS thread in filesystem syscalls.
const maxConcurrentWalks = 16

// QFile describes one regular file found under the served base directory.
type QFile struct {
	Metadata     Metadata
	AbsolutePath string
	RelativePath string
}

// Metadata is the subset of file metadata the wire format carries.
type Metadata struct {
	Size  int64
	Atime int64 // milliseconds since the Unix epoch
	Ctime int64
	Mtime int64
	Mode  uint32
}

// Oracle enumerates files under a served base directory. It is immutable
// after construction and safe to share across every handler on a server.
type Oracle struct {
	base string
	sem  *semaphore.Weighted
}

// NewOracle canonicalizes base and verifies it is a directory.
func NewOracle(base string) (*Oracle, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, qerr.New(qerr.FileError, "NewOracle", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, qerr.New(qerr.FileError, "NewOracle", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, qerr.New(qerr.FileError, "NewOracle", err)
	}
	if !info.IsDir() {
		return nil, qerr.New(qerr.FileError, "NewOracle", nil)
	}
	return &Oracle{base: resolved, sem: semaphore.NewWeighted(maxConcurrentWalks)}, nil
}

// Walk enumerates the regular files under offset (relative to the served
// base) in preorder, offloading the blocking syscalls to the blocking-task
// pool bounded by Oracle.sem. offset must not be absolute and must
// canonicalize inside the base directory.
func (o *Oracle) Walk(ctx context.Context, offset string) ([]QFile, error) {
	if filepath.IsAbs(offset) {
		return nil, qerr.New(qerr.FileError, "Oracle.Walk", nil)
	}

	root := o.base
	if offset != "" {
		root = filepath.Join(o.base, offset)
	}
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, qerr.New(qerr.FileError, "Oracle.Walk", err)
	}
	if !pathInside(o.base, resolvedRoot) {
		return nil, qerr.New(qerr.FileError, "Oracle.Walk", nil)
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, qerr.New(qerr.Cancelled, "Oracle.Walk", err)
	}
	defer o.sem.Release(1)

	type result struct {
		files []QFile
		err   error
	}
	done := make(chan result, 1)
	go func() {
		var out []QFile
		err := walkDirImpl(resolvedRoot, "", &out)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, qerr.New(qerr.FileError, "Oracle.Walk", r.err)
		}
		return r.files, nil
	case <-ctx.Done():
		return nil, qerr.New(qerr.Cancelled, "Oracle.Walk", ctx.Err())
	}
}

// pathInside reports whether candidate is base or a descendant of base.
func pathInside(base, candidate string) bool {
	rel, err := filepath.Rel(base, candidate)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel))
}

func walkDirImpl(path, relOffset string, out *[]QFile) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		rel := filepath.Join(relOffset, entry.Name())

		if entry.IsDir() {
			if err := walkDirImpl(full, rel, out); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		metadata, err := metadataFromFileInfo(info, full)
		if err != nil {
			return err
		}

		*out = append(*out, QFile{
			Metadata:     metadata,
			AbsolutePath: full,
			RelativePath: rel,
		})
	}
	return nil
}
