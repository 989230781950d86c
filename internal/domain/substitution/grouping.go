package substitution

// GroupedEntries maps every grade to its entries in original order.
// An entry naming several grades is shared between their buckets.
type GroupedEntries map[GradeKey][]*Entry

// NewGroupedEntries returns a grouping with an empty bucket for every grade.
func NewGroupedEntries() GroupedEntries {
	g := make(GroupedEntries, len(AllGrades))
	for _, grade := range AllGrades {
		g[grade] = []*Entry{}
	}
	return g
}

// Count returns the number of bucket slots, counting shared entries once per grade.
func (g GroupedEntries) Count() int {
	n := 0
	for _, entries := range g {
		n += len(entries)
	}
	return n
}

// GroupEntries rebuilds the per-grade grouping. Entries whose classes name
// no known grade end up in the second return value and in no bucket.
func GroupEntries(entries []*Entry) (GroupedEntries, []*Entry) {
	grouped := NewGroupedEntries()
	var unclassified []*Entry

	for _, entry := range entries {
		if entry == nil {
			continue
		}
		grades := ExtractGrades(entry.Classes)
		if len(grades) == 0 {
			unclassified = append(unclassified, entry)
			continue
		}
		for _, grade := range grades.Sorted() {
			grouped[grade] = append(grouped[grade], entry)
		}
	}
	return grouped, unclassified
}

// ForGrade returns only the entries mentioning the given grade.
func ForGrade(entries []*Entry, grade GradeKey) []*Entry {
	var out []*Entry
	for _, entry := range entries {
		if entry != nil && ExtractGrades(entry.Classes).Contains(grade) {
			out = append(out, entry)
		}
	}
	return out
}
