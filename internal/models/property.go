package models

// Property is one named value attached to a user. Names may repeat.
type Property struct {
	ID     string `db:"id"`
	UserID string `db:"user_id"`
	Name   string `db:"name"`
	Value  string `db:"value"`
}

// PropertyFilter selects users holding Name=Value.
type PropertyFilter struct {
	Name  string
	Value string
}

// PropertyList is an ordered multimap of name -> values. A (name, value)
// pair appears at most once.
type PropertyList []Property

// Values returns every value stored under name in insertion order.
func (l PropertyList) Values(name string) []string {
	var out []string
	for _, p := range l {
		if p.Name == name {
			out = append(out, p.Value)
		}
	}
	return out
}

// Has reports whether at least one value exists under name.
func (l PropertyList) Has(name string) bool {
	for _, p := range l {
		if p.Name == name {
			return true
		}
	}
	return false
}

// HasValue reports whether the exact pair is present.
func (l PropertyList) HasValue(name, value string) bool {
	return l.index(name, value) >= 0
}

// Add appends the pair unless it is already there. It reports whether
// the list changed.
func (l *PropertyList) Add(name, value string) bool {
	if l.HasValue(name, value) {
		return false
	}
	*l = append(*l, Property{Name: name, Value: value})
	return true
}

// Set replaces the value of the first property called name, or appends a
// new one.
func (l *PropertyList) Set(name, value string) {
	for i := range *l {
		if (*l)[i].Name == name {
			(*l)[i].Value = value
			return
		}
	}
	*l = append(*l, Property{Name: name, Value: value})
}

// Remove drops every property called name and returns how many went.
func (l *PropertyList) Remove(name string) int {
	return l.filter(func(p Property) bool { return p.Name == name })
}

// RemoveValue drops the exact pair.
func (l *PropertyList) RemoveValue(name, value string) int {
	return l.filter(func(p Property) bool { return p.Name == name && p.Value == value })
}

// Clone returns an independent copy.
func (l PropertyList) Clone() PropertyList {
	if l == nil {
		return nil
	}
	out := make(PropertyList, len(l))
	copy(out, l)
	return out
}

func (l PropertyList) index(name, value string) int {
	for i, p := range l {
		if p.Name == name && p.Value == value {
			return i
		}
	}
	return -1
}

func (l *PropertyList) filter(drop func(Property) bool) int {
	kept := (*l)[:0]
	removed := 0
	for _, p := range *l {
		if drop(p) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	*l = kept
	return removed
}
