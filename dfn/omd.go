package dfn

// MultiMap is an ordered, duplicate-preserving map of field names to
// raw attribute records. DFN files legitimately define the same name
// more than once (e.g. an options keyword and a period-block column),
// so both insertion order and duplicates must survive parsing.
type MultiMap struct {
	entries []multiEntry
	index   map[string][]int
}

type multiEntry struct {
	key   string
	attrs map[string]string
}

func NewMultiMap() *MultiMap {
	return &MultiMap{index: make(map[string][]int)}
}

func (m *MultiMap) Add(key string, attrs map[string]string) {
	m.index[key] = append(m.index[key], len(m.entries))
	m.entries = append(m.entries, multiEntry{key: key, attrs: attrs})
}

func (m *MultiMap) Len() int {
	return len(m.entries)
}

// Get returns the first record stored under key.
func (m *MultiMap) Get(key string) (map[string]string, bool) {
	positions, ok := m.index[key]
	if !ok || len(positions) == 0 {
		return nil, false
	}
	return m.entries[positions[0]].attrs, true
}

// GetAll returns every record stored under key, in insertion order.
func (m *MultiMap) GetAll(key string) []map[string]string {
	positions := m.index[key]
	if len(positions) == 0 {
		return nil
	}
	all := make([]map[string]string, 0, len(positions))
	for _, i := range positions {
		all = append(all, m.entries[i].attrs)
	}
	return all
}

func (m *MultiMap) Has(key string) bool {
	return len(m.index[key]) > 0
}

// Keys returns all keys in insertion order, duplicates included.
func (m *MultiMap) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Values returns all records in insertion order, duplicates included.
func (m *MultiMap) Values() []map[string]string {
	values := make([]map[string]string, 0, len(m.entries))
	for _, e := range m.entries {
		values = append(values, e.attrs)
	}
	return values
}
