// Package source loads the code states a presentation steps through.
package source

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/spf13/afero"

	"github.com/zjrosen/magicmove/internal/highlight"
	"github.com/zjrosen/magicmove/internal/layout"
	"github.com/zjrosen/magicmove/internal/log"
)

// File is one code state.
type File struct {
	Path     string
	Source   string
	Language string
	TabWidth int
}

// Loader reads files from a filesystem.
type Loader struct {
	fs afero.Fs
	// Language overrides detection when set.
	Language string
	// TabWidth overrides .editorconfig when positive.
	TabWidth int
	// DefaultTabWidth applies when no .editorconfig matches. Zero means
	// layout.DefaultTabWidth.
	DefaultTabWidth int
}

// NewLoader returns a Loader over fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Expand resolves each argument to paths. Glob patterns expand to their
// sorted matches; plain paths must exist. Order of arguments is kept.
func (l *Loader) Expand(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		arg = filepath.ToSlash(arg)
		if !hasMeta(arg) {
			ok, err := afero.Exists(l.fs, arg)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", arg, err)
			}
			if !ok {
				return nil, fmt.Errorf("source %s does not exist", arg)
			}
			out = append(out, arg)
			continue
		}

		base, pattern := doublestar.SplitPattern(arg)
		matches, err := doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(l.fs, base)), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %s matched no files", arg)
		}
		slices.Sort(matches)
		for _, m := range matches {
			out = append(out, joinBase(base, m))
		}
	}
	return out, nil
}

// Load reads one file and detects its language and tab width.
func (l *Loader) Load(path string) (File, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}

	f := File{
		Path:     path,
		Source:   string(data),
		Language: l.Language,
		TabWidth: l.TabWidth,
	}
	if f.Language == "" {
		f.Language = highlight.LanguageFor(filepath.Base(path))
	}
	if f.TabWidth <= 0 {
		f.TabWidth = l.tabWidth(path)
	}
	log.Debug(log.CatConfig, "loaded source", "path", path, "language", f.Language, "tab_width", f.TabWidth)
	return f, nil
}

// LoadAll expands args and loads every match in order.
func (l *Loader) LoadAll(args []string) ([]File, error) {
	paths, err := l.Expand(args)
	if err != nil {
		return nil, err
	}
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		f, err := l.Load(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// tabWidth walks from the file's directory up to the filesystem root,
// applying .editorconfig files until one declares root = true. Nearer
// files win.
func (l *Loader) tabWidth(path string) int {
	abs := filepath.ToSlash(l.resolve(path))
	for dir := filepath.ToSlash(filepath.Dir(abs)); ; {
		if width, root, ok := l.editorconfigWidth(dir, abs); ok {
			return width
		} else if root {
			break
		}
		parent := filepath.ToSlash(filepath.Dir(dir))
		if parent == dir {
			break
		}
		dir = parent
	}
	if l.DefaultTabWidth > 0 {
		return l.DefaultTabWidth
	}
	return layout.DefaultTabWidth
}

// resolve anchors a relative path at the working directory when fs is the
// OS filesystem, so the walk reaches .editorconfig files above it.
func (l *Loader) resolve(path string) string {
	if _, ok := l.fs.(*afero.OsFs); ok && !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return filepath.Clean(path)
}

func (l *Loader) editorconfigWidth(dir, abs string) (width int, root, ok bool) {
	f, err := l.fs.Open(filepath.Join(dir, ".editorconfig"))
	if err != nil {
		return 0, false, false
	}
	defer f.Close()

	ec, err := editorconfig.Parse(f)
	if err != nil {
		log.Warn(log.CatConfig, "ignoring unreadable .editorconfig", "dir", dir, "error", err)
		return 0, false, false
	}

	rel := abs
	if dir != "/" && len(dir) < len(abs) {
		rel = abs[len(dir):]
	}
	def, err := ec.GetDefinitionForFilename(rel)
	if err != nil {
		return 0, ec.Root, false
	}
	if def.TabWidth > 0 {
		return def.TabWidth, ec.Root, true
	}
	if n, err := strconv.Atoi(def.IndentSize); err == nil && n > 0 {
		return n, ec.Root, true
	}
	return 0, ec.Root, false
}

func hasMeta(p string) bool {
	for _, r := range p {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func joinBase(base, rel string) string {
	if base == "" || base == "." {
		return rel
	}
	return base + "/" + rel
}
