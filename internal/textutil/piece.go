package textutil

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// compoundExtensions are stripped as a whole before falling back to the last
// extension only.
var compoundExtensions = []string{".mmc.json", ".mm.json", ".facts.json", ".measures.tsv"}

var titleCaser = cases.Title(language.Und)

// PieceName returns the base name of path without its extension.
func PieceName(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	lower := strings.ToLower(base)
	for _, ext := range compoundExtensions {
		if strings.HasSuffix(lower, ext) && len(base) > len(ext) {
			return base[:len(base)-len(ext)]
		}
	}
	if ext := filepath.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

// PieceTitle turns a piece name such as "op27_no2-mvt1" into a display
// title ("Op27 No2 Mvt1").
func PieceTitle(name string) string {
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	}), " ")
	return titleCaser.String(name)
}
