package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding/unicode"
)

type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Handle is a one-level snapshot of a project directory. It is rebuilt on
// every Load and never refreshed.
type Handle struct {
	RootPath string      `json:"path"`
	Files    []FileEntry `json:"files"`
}

type LoadOptions struct {
	// Pattern, when set, keeps only files whose name matches this
	// doublestar pattern.
	Pattern string
}

// ErrInvalidPattern is returned by Load for a malformed LoadOptions.Pattern.
// It is the caller's input that is wrong, so it carries no Kind.
var ErrInvalidPattern = errors.New("invalid pattern")

// CheckDir returns a precondition error unless root is an existing
// directory.
func CheckDir(op, root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return preconditionError(op, root, fmt.Sprintf("'%s' is not a valid directory.", root))
	}
	return nil
}

// Load lists the regular files directly under root in directory order.
// Subdirectories are skipped.
func Load(root string, opts LoadOptions) (*Handle, error) {
	if err := CheckDir("load", root); err != nil {
		return nil, err
	}

	if opts.Pattern != "" && !doublestar.ValidatePattern(opts.Pattern) {
		return nil, fmt.Errorf("%w %q", ErrInvalidPattern, opts.Pattern)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, filesystemError("load", root, err)
	}

	dir, err := os.Open(root)
	if err != nil {
		return nil, filesystemError("load", root, err)
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, filesystemError("load", root, err)
	}

	files := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(abs, entry.Name())

		// Stat rather than entry.Type so symlinks to files are listed.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		if opts.Pattern != "" {
			if ok, _ := doublestar.Match(opts.Pattern, entry.Name()); !ok {
				continue
			}
		}

		files = append(files, FileEntry{Name: entry.Name(), Path: path})
	}

	log.Debug("loaded project", "root", root, "files", len(files))

	return &Handle{RootPath: root, Files: files}, nil
}

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ReadFile returns a file's contents as text. UTF-16 files carrying a BOM
// are decoded; anything else must already be valid UTF-8.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", filesystemError("read", path, err)
	}

	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", filesystemError("read", path, err)
		}
		return string(decoded), nil
	}

	if !utf8.Valid(data) {
		return "", filesystemError("read", path, fmt.Errorf("%s: stream did not contain valid UTF-8", path))
	}

	return string(data), nil
}

// WriteFile creates or truncates path. Parent directories are not created.
func WriteFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return filesystemError("write", path, err)
	}
	return nil
}
