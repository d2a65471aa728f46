package scheduler

// PriorityList is an ordered sequence of project ids. Position 0 is the
// highest priority.
type PriorityList struct {
	ids []string
}

// NewPriorityList creates a list holding ids in order.
func NewPriorityList(ids ...string) *PriorityList {
	l := &PriorityList{ids: make([]string, 0, len(ids))}
	l.ids = append(l.ids, ids...)
	return l
}

// Len returns the number of entries.
func (l *PriorityList) Len() int { return len(l.ids) }

// At returns the id at position i.
func (l *PriorityList) At(i int) string { return l.ids[i] }

// IDs returns a copy of the ordered ids.
func (l *PriorityList) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// Index returns the position of id, or -1.
func (l *PriorityList) Index(id string) int {
	for i, v := range l.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id is in the list.
func (l *PriorityList) Contains(id string) bool { return l.Index(id) >= 0 }

// Append adds id at the lowest priority. Duplicates are ignored.
func (l *PriorityList) Append(id string) bool {
	if l.Contains(id) {
		return false
	}
	l.ids = append(l.ids, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (l *PriorityList) Remove(id string) bool {
	i := l.Index(id)
	if i < 0 {
		return false
	}
	l.ids = append(l.ids[:i], l.ids[i+1:]...)
	return true
}

// Move places id at position pos, shifting the entries in between. pos is
// clamped to the list bounds.
func (l *PriorityList) Move(id string, pos int) bool {
	if !l.Remove(id) {
		return false
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.ids) {
		pos = len(l.ids)
	}
	l.ids = append(l.ids, "")
	copy(l.ids[pos+1:], l.ids[pos:])
	l.ids[pos] = id
	return true
}

// Swap exchanges the entries at i and j.
func (l *PriorityList) Swap(i, j int) {
	l.ids[i], l.ids[j] = l.ids[j], l.ids[i]
}

// Clone returns an independent copy.
func (l *PriorityList) Clone() *PriorityList {
	return NewPriorityList(l.ids...)
}
