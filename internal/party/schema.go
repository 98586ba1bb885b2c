// Package party models the party data domain (people, organizations and the
// records hanging off them) as declarative entity descriptors. One generic
// storage path and one generic HTTP/rendering path consume the descriptors;
// adding an entity is a data edit, not new code.
package party

import "fmt"

// Kind classifies a field for validation, storage and form rendering.
type Kind string

const (
	KindText Kind = "text"
	KindInt  Kind = "int"
	KindDate Kind = "date"
	KindRef  Kind = "ref"
)

// Field describes one scalar or reference attribute of an entity.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Editable bool
	// Ref names the registry slug the field points at; set for KindRef only.
	Ref string
}

// Dependent marks rows in another entity that reference this one and
// therefore block deletion while they exist.
type Dependent struct {
	Entity string
	Column string
}

// Descriptor is the declarative schema for one entity type.
type Descriptor struct {
	Name  string
	Slug  string
	Table string
	// Group drives the console home screen sections: "type", "info",
	// "relation".
	Group string
	// Party marks subtypes of the party supertype: creating a record
	// allocates a party row first and deleting removes it.
	Party bool
	// Lookup marks small reference tables whose rows feed form selects.
	Lookup bool
	// LabelField names the column shown for a row in select options and
	// reference columns.
	LabelField string
	Fields     []Field
	// UniqueBy lists column sets that must not collide across rows.
	UniqueBy [][]string
	// Dependents lists referencing entities that block deletion.
	Dependents []Dependent
}

// Field returns the named field descriptor, nil when unknown.
func (d *Descriptor) Field(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// Columns returns the field names in declaration order, without id.
func (d *Descriptor) Columns() []string {
	cols := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

// Label returns the display text for a record, falling back to the id.
func (d *Descriptor) Label(rec Record) string {
	if d.LabelField != "" {
		if s := rec.String(d.LabelField); s != "" {
			return s
		}
	}
	return fmt.Sprintf("#%d", rec.ID())
}

// MatchesUnique reports whether a and b collide on any UniqueBy column set.
// Records collide when every column in a set carries the same value in both.
func (d *Descriptor) MatchesUnique(a, b Record) bool {
	for _, set := range d.UniqueBy {
		match := true
		for _, col := range set {
			av, aok := a[col]
			bv, bok := b[col]
			if aok != bok || (aok && av != bv) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Registry is the ordered catalog of entity descriptors.
type Registry struct {
	order  []string
	bySlug map[string]*Descriptor
}

// NewRegistry builds a registry preserving declaration order.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{bySlug: make(map[string]*Descriptor, len(descriptors))}
	for i := range descriptors {
		d := descriptors[i]
		if _, dup := r.bySlug[d.Slug]; dup {
			panic(fmt.Sprintf("party: duplicate entity slug %q", d.Slug))
		}
		r.order = append(r.order, d.Slug)
		r.bySlug[d.Slug] = &d
	}
	return r
}

// Lookup returns the descriptor for a slug.
func (r *Registry) Lookup(slug string) (*Descriptor, bool) {
	d, ok := r.bySlug[slug]
	return d, ok
}

// All returns descriptors in declaration order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.bySlug[slug])
	}
	return out
}

// Group returns descriptors carrying the given group tag, in order.
func (r *Registry) Group(group string) []*Descriptor {
	var out []*Descriptor
	for _, d := range r.All() {
		if d.Group == group {
			out = append(out, d)
		}
	}
	return out
}
