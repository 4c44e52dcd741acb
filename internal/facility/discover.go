package facility

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/edufin/internal/parser"
)

// DefaultYear is the reporting year looked for in statement file names.
const DefaultYear = "2024"

// Statement is one discovered statement file and the facility it belongs to.
type Statement struct {
	Facility string
	Path     string
}

// FindStatements walks root for supported files whose name mentions
// "rachunek" and year. The facility name comes from the parent directory.
// Results are sorted by path.
func FindStatements(root, year string) ([]Statement, error) {
	if year == "" {
		year = DefaultYear
	}
	var out []Statement
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !parser.IsSupportedExtension(path) {
			return nil
		}
		lower := strings.ToLower(d.Name())
		if strings.Contains(lower, "rachunek") && strings.Contains(lower, year) {
			out = append(out, Statement{Facility: NameFromDir(filepath.Dir(path)), Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

var transliterationFixes = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`\bSzkoa\b`), "Szkola"},
	{regexp.MustCompile(`\bZespo\b`), "Zespol"},
	{regexp.MustCompile(`\bZobkow\b`), "Zlobkow"},
}

// NameFromDir turns a slugged directory name back into a display name,
// restoring words that lost their "ł" when the directory was created.
func NameFromDir(dir string) string {
	name := strings.ReplaceAll(filepath.Base(dir), "_", " ")
	for _, fix := range transliterationFixes {
		name = fix.re.ReplaceAllString(name, fix.with)
	}
	return name
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slug converts a facility name to a path-safe slug.
func Slug(name string) string {
	s := slugInvalid.ReplaceAllString(NormalizeKey(name), "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "placowka"
	}
	return s
}
