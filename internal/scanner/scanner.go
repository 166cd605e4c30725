// Package scanner enumerates image files under a root directory,
// depth-first, with hidden/symlink filtering and cooperative
// cancellation.
package scanner

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var logger = log.New(os.Stderr, "[scanner] ", log.LstdFlags)

// DefaultExtensions is the default set of file extensions considered
// images, lowercase and without the leading dot.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "heic", "heif"}

// Config controls a single Scan.
type Config struct {
	Extensions     []string // lowercased, no leading dot; defaults to DefaultExtensions
	SkipHidden     bool
	FollowSymlinks bool
}

// DefaultConfig returns the spec's default Scanner configuration.
func DefaultConfig() Config {
	return Config{
		Extensions:     DefaultExtensions,
		SkipHidden:     true,
		FollowSymlinks: false,
	}
}

// ProgressFunc is invoked after each matched file.
type ProgressFunc func(count int, currentDirectory, currentFile string)

// ErrorFunc is invoked for non-fatal enumeration errors (a directory
// that couldn't be read, a permission error); iteration continues.
type ErrorFunc func(path string, message string)

// Scanner produces an ordered list of absolute image paths under a
// root directory.
type Scanner struct {
	cfg Config
}

// New builds a Scanner with cfg. An empty Extensions list is replaced
// by DefaultExtensions; SkipHidden and FollowSymlinks are used as
// given, so a zero Config{} does not skip hidden entries. Callers
// should normally start from DefaultConfig().
func New(cfg Config) *Scanner {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	return &Scanner{cfg: cfg}
}

// Scan walks root and returns every matching image path in depth-first
// order. If root does not exist or is not a directory, it returns an
// empty result and reports NotADirectory via onError.
func (s *Scanner) Scan(ctx context.Context, root string, progress ProgressFunc, onError ErrorFunc) []string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if onError != nil {
			onError(root, "NotADirectory")
		}
		return nil
	}

	extSet := make(map[string]struct{}, len(s.cfg.Extensions))
	for _, e := range s.cfg.Extensions {
		extSet[strings.ToLower(e)] = struct{}{}
	}

	visited := map[string]struct{}{}
	if canon, err := filepath.EvalSymlinks(root); err == nil {
		visited[canon] = struct{}{}
	}

	var results []string
	count := 0

	var walk func(dir string) bool // returns false to stop the whole walk (cancellation)
	walk = func(dir string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if onError != nil {
				onError(dir, err.Error())
			}
			return true
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			select {
			case <-ctx.Done():
				return false
			default:
			}

			name := entry.Name()
			if s.cfg.SkipHidden && strings.HasPrefix(name, ".") {
				continue
			}
			full := filepath.Join(dir, name)

			isDir := entry.IsDir()
			isSymlink := entry.Type()&os.ModeSymlink != 0
			if isSymlink {
				target, err := os.Stat(full)
				if err != nil {
					if onError != nil {
						onError(full, err.Error())
					}
					continue
				}
				isDir = target.IsDir()
				if isDir && !s.cfg.FollowSymlinks {
					continue
				}
			}

			if isDir {
				if isSymlink {
					canon, err := filepath.EvalSymlinks(full)
					if err != nil {
						if onError != nil {
							onError(full, err.Error())
						}
						continue
					}
					if _, seen := visited[canon]; seen {
						continue
					}
					visited[canon] = struct{}{}
				}
				if !walk(full) {
					return false
				}
				continue
			}

			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
			if _, ok := extSet[ext]; !ok {
				continue
			}

			results = append(results, full)
			count++
			if progress != nil {
				progress(count, dir, full)
			}
		}
		return true
	}

	walk(root)
	return results
}
