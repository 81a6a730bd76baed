// Package verse holds the static verse catalog and the lookups built on it.
package verse

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
)

//go:embed verses.json
var bundledCatalog []byte

// Category groups refs under a name.
type Category struct {
	Name string   `json:"name"`
	Refs []string `json:"refs"`
}

type catalogFile struct {
	Categories []Category `json:"categories"`
	Verses     []Record   `json:"verses"`
}

// Catalog is an immutable ordered list of records. The zero value is an empty catalog.
type Catalog struct {
	records    []Record
	byRef      map[string]int
	categories []Category
}

var (
	bundledOnce sync.Once
	bundled     *Catalog
	bundledErr  error
)

// Bundled returns the catalog compiled into the binary.
func Bundled() (*Catalog, error) {
	bundledOnce.Do(func() {
		bundled, bundledErr = Parse(bundledCatalog)
	})
	return bundled, bundledErr
}

// LoadFile reads a catalog in the bundled JSON shape from path.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Load returns the catalog at path, or the bundled one when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Bundled()
	}
	return LoadFile(path)
}

// Parse decodes and checks a catalog document.
func Parse(b []byte) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(f.Verses, f.Categories)
}

// New builds a catalog, enforcing unique refs and default-translation text on every record.
func New(records []Record, categories []Category) (*Catalog, error) {
	c := &Catalog{
		records: make([]Record, 0, len(records)),
		byRef:   make(map[string]int, len(records)),
	}
	for i, r := range records {
		r.Ref = strings.TrimSpace(r.Ref)
		if r.Ref == "" {
			return nil, fmt.Errorf("%w: record %d has no ref", ErrInvalidCatalog, i)
		}
		if _, dup := c.byRef[r.Ref]; dup {
			return nil, fmt.Errorf("%w: duplicate ref %q", ErrInvalidCatalog, r.Ref)
		}
		tr := make(map[Translation]string, len(r.Translations))
		for k, v := range r.Translations {
			if code, ok := ParseTranslation(string(k)); ok {
				tr[code] = v
			}
		}
		r.Translations = tr
		if _, ok := r.Text(DefaultTranslation); !ok {
			return nil, fmt.Errorf("%w: %q has no %s text", ErrInvalidCatalog, r.Ref, DefaultTranslation)
		}
		c.byRef[r.Ref] = len(c.records)
		c.records = append(c.records, r)
	}
	for _, cat := range categories {
		name := strings.ToLower(strings.TrimSpace(cat.Name))
		if name == "" {
			continue
		}
		refs := make([]string, 0, len(cat.Refs))
		for _, ref := range cat.Refs {
			// Tags for refs that are not in the catalog are ignored.
			if _, ok := c.byRef[strings.TrimSpace(ref)]; ok {
				refs = append(refs, strings.TrimSpace(ref))
			}
		}
		c.categories = append(c.categories, Category{Name: name, Refs: refs})
	}
	return c, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Get returns the record at position i.
func (c *Catalog) Get(i int) (Record, error) {
	if c.Len() == 0 {
		return Record{}, ErrCatalogUnavailable
	}
	if i < 0 || i >= len(c.records) {
		return Record{}, IndexError{Index: i, Length: len(c.records)}
	}
	return c.records[i], nil
}

// ByRef looks a record up by its citation.
func (c *Catalog) ByRef(ref string) (Record, bool) {
	i := c.IndexOf(ref)
	if i < 0 {
		return Record{}, false
	}
	return c.records[i], true
}

// IndexOf returns the position of ref, or -1.
func (c *Catalog) IndexOf(ref string) int {
	if c.Len() == 0 {
		return -1
	}
	i, ok := c.byRef[strings.TrimSpace(ref)]
	if !ok {
		return -1
	}
	return i
}

// All returns a copy of the records in catalog order.
func (c *Catalog) All() []Record {
	if c.Len() == 0 {
		return []Record{}
	}
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Categories returns category names in declaration order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return []string{}
	}
	out := make([]string, 0, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, cat.Name)
	}
	return out
}

// ByCategory returns the tagged records in catalog order. Unknown names yield an empty slice.
func (c *Catalog) ByCategory(name string) []Record {
	out := []Record{}
	if c == nil {
		return out
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, cat := range c.categories {
		if cat.Name != name {
			continue
		}
		tagged := make(map[string]struct{}, len(cat.Refs))
		for _, ref := range cat.Refs {
			tagged[ref] = struct{}{}
		}
		for _, r := range c.records {
			if _, ok := tagged[r.Ref]; ok {
				out = append(out, r)
			}
		}
		break
	}
	return out
}

// Random picks a record using r, or the package source when r is nil.
func (c *Catalog) Random(r *rand.Rand) (Record, error) {
	n := c.Len()
	if n == 0 {
		return Record{}, ErrCatalogUnavailable
	}
	var i int
	if r != nil {
		i = r.IntN(n)
	} else {
		i = rand.IntN(n)
	}
	return c.records[i], nil
}
