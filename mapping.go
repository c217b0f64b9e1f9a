package duckvec

import (
	"github.com/hupe1980/duckvec/internal/errs"
)

// ColumnMapping associates a source column with a destination column. Each
// side is addressed either by name or by ordinal; an ordinal of -1 means the
// name is used.
type ColumnMapping struct {
	SourceName         string
	SourceOrdinal      int
	DestinationName    string
	DestinationOrdinal int
}

// MapNames maps a source column name to a destination column name.
func MapNames(source, destination string) ColumnMapping {
	return ColumnMapping{SourceName: source, SourceOrdinal: -1, DestinationName: destination, DestinationOrdinal: -1}
}

// MapOrdinals maps a source ordinal to a destination ordinal.
func MapOrdinals(source, destination int) ColumnMapping {
	return ColumnMapping{SourceOrdinal: source, DestinationOrdinal: destination}
}

// MapNameToOrdinal maps a source column name to a destination ordinal.
func MapNameToOrdinal(source string, destination int) ColumnMapping {
	return ColumnMapping{SourceName: source, SourceOrdinal: -1, DestinationOrdinal: destination}
}

// MapOrdinalToName maps a source ordinal to a destination column name.
func MapOrdinalToName(source int, destination string) ColumnMapping {
	return ColumnMapping{SourceOrdinal: source, DestinationName: destination, DestinationOrdinal: -1}
}

type mappingScheme uint8

const (
	schemeUndefined mappingScheme = iota
	schemeNamesNames
	schemeNamesOrdinals
	schemeOrdinalsNames
	schemeOrdinalsOrdinals
)

func (m ColumnMapping) scheme() mappingScheme {
	if m.SourceOrdinal >= 0 {
		if m.DestinationOrdinal >= 0 {
			return schemeOrdinalsOrdinals
		}
		return schemeOrdinalsNames
	}
	if m.DestinationOrdinal >= 0 {
		return schemeNamesOrdinals
	}
	return schemeNamesNames
}

func checkSide(side, name string, ordinal int) error {
	switch {
	case ordinal < -1:
		return errs.OutOfRange("%s ordinal %d", side, ordinal)
	case ordinal >= 0 && name != "":
		return errs.Invalid("%s column given by both name %q and ordinal %d", side, name, ordinal)
	case ordinal == -1 && name == "":
		return errs.Invalid("column mapping lacks a %s column", side)
	}
	return nil
}

// ColumnMappings is an ordered collection of column mappings.
type ColumnMappings struct {
	items []ColumnMapping
}

// Add validates and appends m.
func (c *ColumnMappings) Add(m ColumnMapping) error {
	if err := checkSide("source", m.SourceName, m.SourceOrdinal); err != nil {
		return err
	}
	if err := checkSide("destination", m.DestinationName, m.DestinationOrdinal); err != nil {
		return err
	}
	c.items = append(c.items, m)
	return nil
}

// Len returns the number of mappings.
func (c *ColumnMappings) Len() int { return len(c.items) }

// At returns mapping i.
func (c *ColumnMappings) At(i int) ColumnMapping { return c.items[i] }

// Clear removes every mapping.
func (c *ColumnMappings) Clear() { c.items = nil }

// Validate checks that every mapping uses the same addressing scheme.
func (c *ColumnMappings) Validate() error {
	want := schemeUndefined
	for _, m := range c.items {
		s := m.scheme()
		if want == schemeUndefined {
			want = s
			continue
		}
		if s != want {
			return ErrMixedMappingScheme
		}
	}
	return nil
}

// ResolvedMapping is a mapping with both sides reduced to ordinals.
type ResolvedMapping struct {
	Source      int
	Destination int
}

// Resolve validates the collection and reduces every mapping to ordinals
// against the given source and destination column names. An empty
// collection maps source column i to destination column i.
func (c *ColumnMappings) Resolve(source, destination []string) ([]ResolvedMapping, error) {
	if len(c.items) == 0 {
		n := min(len(source), len(destination))
		out := make([]ResolvedMapping, n)
		for i := range out {
			out[i] = ResolvedMapping{Source: i, Destination: i}
		}
		return out, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	srcIdx := indexNames(source)
	dstIdx := indexNames(destination)

	out := make([]ResolvedMapping, 0, len(c.items))
	for _, m := range c.items {
		s, err := resolveSide("source", m.SourceName, m.SourceOrdinal, srcIdx, len(source))
		if err != nil {
			return nil, err
		}
		d, err := resolveSide("destination", m.DestinationName, m.DestinationOrdinal, dstIdx, len(destination))
		if err != nil {
			return nil, err
		}
		out = append(out, ResolvedMapping{Source: s, Destination: d})
	}
	return out, nil
}

func indexNames(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := idx[n]; !dup {
			idx[n] = i
		}
	}
	return idx
}

func resolveSide(side, name string, ordinal int, idx map[string]int, n int) (int, error) {
	if ordinal < 0 {
		i, ok := idx[name]
		if !ok {
			return 0, errs.OutOfRange("no %s column named %q", side, name)
		}
		return i, nil
	}
	if ordinal >= n {
		return 0, errs.OutOfRange("%s ordinal %d of %d columns", side, ordinal, n)
	}
	return ordinal, nil
}
