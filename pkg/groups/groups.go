// Package groups sorts the columns of a food price table into the families
// the preprocessing steps work on: identifiers, time, metadata, base item
// prices and the prefixed derived metrics.
package groups

import (
	"fmt"
	"io"
	"strings"
)

var (
	DefaultGeographic = []string{"ISO3", "country", "adm1_name", "adm2_name", "mkt_name", "lat", "lon", "geo_id"}
	DefaultTemporal   = []string{"DATES", "year", "month"}
	DefaultMetadata   = []string{
		"currency", "components", "start_dense_data", "last_survey_point",
		"data_coverage", "data_coverage_recent", "index_confidence_score", "spatially_interpolated",
	}
)

// Family is a derived metric family recognised by its column prefix.
type Family struct {
	Name   string
	Prefix string
}

// DefaultFamilies is checked in order; the first matching prefix wins.
var DefaultFamilies = []Family{
	{Name: "original", Prefix: "o_"},
	{Name: "high", Prefix: "h_"},
	{Name: "low", Prefix: "l_"},
	{Name: "current", Prefix: "c_"},
	{Name: "inflation", Prefix: "inflation_"},
	{Name: "trust", Prefix: "trust_"},
}

type Options struct {
	Geographic []string
	Temporal   []string
	Metadata   []string
	Families   []Family
}

func (o Options) withDefaults() Options {
	if o.Geographic == nil {
		o.Geographic = DefaultGeographic
	}
	if o.Temporal == nil {
		o.Temporal = DefaultTemporal
	}
	if o.Metadata == nil {
		o.Metadata = DefaultMetadata
	}
	if o.Families == nil {
		o.Families = DefaultFamilies
	}
	return o
}

type Derived struct {
	Family
	Columns []string
}

// Groups lists column names per family, in input order. Only columns that
// exist in the input are listed.
type Groups struct {
	Geographic []string
	Temporal   []string
	Metadata   []string
	// Food holds base item prices; Index holds base columns ending in "_index".
	Food    []string
	Index   []string
	Derived []Derived
}

func Classify(names []string, opt Options) Groups {
	opt = opt.withDefaults()
	fixed := map[string]*[]string{}
	var g Groups
	for _, n := range opt.Geographic {
		fixed[n] = &g.Geographic
	}
	for _, n := range opt.Temporal {
		fixed[n] = &g.Temporal
	}
	for _, n := range opt.Metadata {
		fixed[n] = &g.Metadata
	}
	g.Derived = make([]Derived, len(opt.Families))
	for i, fam := range opt.Families {
		g.Derived[i].Family = fam
	}

outer:
	for _, n := range names {
		if dst, ok := fixed[n]; ok {
			*dst = append(*dst, n)
			continue
		}
		for i, fam := range opt.Families {
			if strings.HasPrefix(n, fam.Prefix) {
				g.Derived[i].Columns = append(g.Derived[i].Columns, n)
				continue outer
			}
		}
		if strings.HasSuffix(n, "_index") {
			g.Index = append(g.Index, n)
			continue
		}
		g.Food = append(g.Food, n)
	}
	return g
}

// DerivedCount is the number of columns across all derived families.
func (g Groups) DerivedCount() int {
	n := 0
	for _, d := range g.Derived {
		n += len(d.Columns)
	}
	return n
}

func (g Groups) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Geographic: %d columns\n", len(g.Geographic))
	fmt.Fprintf(&b, "Temporal: %d columns\n", len(g.Temporal))
	fmt.Fprintf(&b, "Metadata: %d columns\n", len(g.Metadata))
	fmt.Fprintf(&b, "Base food items: %d columns\n", len(g.Food))
	fmt.Fprintf(&b, "Index columns: %d columns\n", len(g.Index))
	fmt.Fprintf(&b, "Derived metrics: %d columns\n", g.DerivedCount())
	for _, d := range g.Derived {
		fmt.Fprintf(&b, "  - %s: %d columns\n", d.Name, len(d.Columns))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
