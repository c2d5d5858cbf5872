// Package resolver reconciles the free-text image field of catalog products
// with the filenames that actually exist in the image store.
package resolver

import (
	"sort"
	"strings"
	"unicode"

	"productcatalog/pkg/models"
)

// Placeholder is substituted when no candidate file matches a product.
const Placeholder = "placeholder.png"

// NoteFallback marks a resolution that ended on the placeholder.
const NoteFallback = "fallback"

// Strategy names the cascade step that produced a resolution.
type Strategy string

const (
	StrategyExact    Strategy = "exact"
	StrategyBasename Strategy = "basename"
	StrategyName     Strategy = "name"
	StrategyFallback Strategy = "fallback"
)

// Index maps a normalized, extension-stripped base name to the first
// filename that produced it.
type Index map[string]string

// Resolution is the outcome of resolving one product.
type Resolution struct {
	Chosen   string
	Note     string
	Strategy Strategy
}

// Basename returns the final path segment of s. Both '/' and '\' separate
// segments and trailing separators are ignored.
func Basename(s string) string {
	s = strings.TrimRight(s, `/\`)
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// StripExt removes everything from the last '.' onward.
func StripExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// Normalize lower-cases the final path segment of s and drops every '_',
// '-' and whitespace rune. It is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(Basename(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// key is the normalized, extension-stripped form of a filename or path.
func key(name string) string {
	return Normalize(StripExt(Basename(name)))
}

// BuildIndex indexes filenames by normalized base name. The first filename
// seen for a key wins; later ones never overwrite it.
func BuildIndex(filenames []string) Index {
	idx := make(Index, len(filenames))
	for _, f := range filenames {
		k := key(f)
		if _, ok := idx[k]; !ok {
			idx[k] = f
		}
	}
	return idx
}

// Fold lower-cases and sorts a listing so that "first" means
// lexicographically first regardless of directory read order.
func Fold(filenames []string) []string {
	out := make([]string, len(filenames))
	for i, f := range filenames {
		out[i] = strings.ToLower(f)
	}
	sort.Strings(out)
	return out
}

// Resolve runs the matching cascade for one product: exact filename,
// normalized basename, product-name substring, then the placeholder.
// filenames are expected to be folded (see Fold) and idx built from them.
func Resolve(p models.Product, filenames []string, idx Index) Resolution {
	orig := strings.ToLower(p.Image)

	if orig != "" {
		for _, f := range filenames {
			if f == orig {
				return Resolution{Chosen: f, Strategy: StrategyExact}
			}
		}

		if base := key(orig); base != "" {
			if f, ok := idx[base]; ok {
				return Resolution{Chosen: f, Strategy: StrategyBasename}
			}
		}
	}

	// An empty name key is a substring of every key; skip instead of
	// matching the first file.
	if nameKey := Normalize(p.Name); nameKey != "" {
		for _, f := range filenames {
			k := key(f)
			if k == "" {
				continue
			}
			if strings.Contains(k, nameKey) || strings.Contains(nameKey, k) {
				return Resolution{Chosen: f, Strategy: StrategyName}
			}
		}
	}

	return Resolution{Chosen: Placeholder, Note: NoteFallback, Strategy: StrategyFallback}
}

// FindByBase returns the first filename whose extension-stripped,
// lower-cased name equals that of requested. There is no fuzzy matching.
func FindByBase(requested string, filenames []string) (string, bool) {
	want := strings.ToLower(StripExt(Basename(requested)))
	if want == "" {
		return "", false
	}
	for _, f := range filenames {
		if strings.ToLower(StripExt(f)) == want {
			return f, true
		}
	}
	return "", false
}
