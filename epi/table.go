package epi

// TableRow is one line of a ParameterSet listing: a canonical parameter or a
// derived alias, its current value, and any provenance carried by the
// canonical param of its group.
type TableRow struct {
	Name    string
	Value   float64
	Low     float64
	High    float64
	HasCI   bool
	Ref     string
	Derived bool // true for aliases (computed views)
}

// Table produces a read-only listing of every canonical and derived
// parameter. Ordering is stable: groups in declaration order, canonical
// before aliases. Groups without an assigned value are skipped.
func (ps *ParameterSet) Table() []TableRow {
	rows := make([]TableRow, 0, 2*len(ps.groups))
	for _, g := range ps.groups {
		p, ok := ps.values[g.Name]
		if !ok {
			continue
		}
		rows = append(rows, TableRow{
			Name:  g.Name,
			Value: p.Value,
			Low:   p.Low,
			High:  p.High,
			HasCI: p.HasCI,
			Ref:   p.Ref,
		})
		for _, a := range g.Aliases {
			rows = append(rows, TableRow{
				Name:    a.Name,
				Value:   a.From(p.Value, ps),
				Ref:     p.Ref,
				Derived: true,
			})
		}
	}
	return rows
}
