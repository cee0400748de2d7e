package dfn

import (
	"testing"
)

func TestMultiMapOrder(test *testing.T) {
	m := NewMultiMap()
	m.Add("aux", map[string]string{"name": "aux", "block": "options"})
	m.Add("head", map[string]string{"name": "head", "block": "period"})
	m.Add("aux", map[string]string{"name": "aux", "block": "period"})

	if m.Len() != 3 {
		test.Errorf("expected 3 entries, got %d", m.Len())
	}
	keys := m.Keys()
	if len(keys) != 3 || keys[0] != "aux" || keys[1] != "head" || keys[2] != "aux" {
		test.Errorf("keys out of order: %v", keys)
	}
}

func TestMultiMapGet(test *testing.T) {
	m := NewMultiMap()
	m.Add("aux", map[string]string{"block": "options"})
	m.Add("aux", map[string]string{"block": "period"})

	first, ok := m.Get("aux")
	if !ok || first["block"] != "options" {
		test.Errorf("Get should return the first record, got %v", first)
	}
	all := m.GetAll("aux")
	if len(all) != 2 || all[1]["block"] != "period" {
		test.Errorf("GetAll should return records in insertion order, got %v", all)
	}
	if _, ok := m.Get("missing"); ok {
		test.Errorf("Get should miss on an absent key")
	}
	if m.Has("missing") {
		test.Errorf("Has should miss on an absent key")
	}
}
