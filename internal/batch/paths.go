package batch

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"measuremap/internal/logging"
	"measuremap/internal/textutil"
)

// DefaultSuffix is appended to piece names to form output file names.
const DefaultSuffix = ".mm.json"

// LockFileName is created in the output tree while a run writes to it.
const LockFileName = ".measuremap.lock"

// OutputPath returns where the measure map of input is written. With outDir
// empty the map sits next to the input; otherwise the input's directory
// relative to root is recreated under outDir.
func OutputPath(input, root, outDir, suffix string) (string, error) {
	dir := filepath.Dir(input)
	if outDir != "" {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return "", err
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			rel = "."
		}
		dir = filepath.Join(outDir, rel)
	}
	return filepath.Join(dir, textutil.PieceName(input)+suffix), nil
}

// Discover lists the files under root whose names end in one of extensions
// and match pattern. Hidden directories are not entered and unreadable
// subdirectories are skipped with a warning. Results are sorted.
func Discover(logger *slog.Logger, root string, extensions []string, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}
	var found []string
	err := walkVisible(logger, root, func(path string, name string) error {
		lower := strings.ToLower(name)
		if !slices.ContainsFunc(extensions, func(ext string) bool {
			return strings.HasSuffix(lower, strings.ToLower(ext))
		}) {
			return nil
		}
		if ok, _ := filepath.Match(pattern, name); !ok {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(found)
	return found, nil
}

// Collect lists the measure maps under root, identified by suffix. An empty
// suffix means DefaultSuffix.
func Collect(logger *slog.Logger, root, suffix string) ([]string, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	var found []string
	err := walkVisible(logger, root, func(path string, name string) error {
		if strings.HasSuffix(name, suffix) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(found)
	return found, nil
}

func walkVisible(logger *slog.Logger, root string, visit func(path, name string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "walk", Path: root, Err: fs.ErrInvalid}
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root || d == nil || !d.IsDir() {
				return err
			}
			logging.WarnWithContext(logger, "directory unreadable; skipped", "dir_unreadable",
				logging.String("dir", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "files in this directory are not converted"),
				logging.String(logging.FieldErrorHint, "check permissions on the directory"),
			)
			return filepath.SkipDir
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return visit(path, name)
	})
}
