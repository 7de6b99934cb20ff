package charset

import "testing"

func TestConsonantsExcludeVowels(t *testing.T) {
	c := Consonants()
	if c.Len() != 20 {
		t.Fatalf("expected 20 consonants, got %d", c.Len())
	}
	for _, r := range "AEIOUY" {
		if c.Contains(r) {
			t.Fatalf("expected %q to be excluded", r)
		}
	}
	if !c.Contains('b') {
		t.Fatalf("expected lower-case lookup to match")
	}
}

func TestNewDedupesAndSorts(t *testing.T) {
	c, err := New("cbaC a")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.String() != "ABC" {
		t.Fatalf("unexpected charset %q", c.String())
	}
	if _, err := New("  "); err == nil {
		t.Fatalf("expected empty charset to fail")
	}
}

func TestLookup(t *testing.T) {
	for _, id := range IDs() {
		if _, err := Lookup(id); err != nil {
			t.Fatalf("lookup %s: %v", id, err)
		}
	}
	if _, err := Lookup("greek"); err == nil {
		t.Fatalf("expected unknown charset to fail")
	}
	c, _ := Lookup("ALPHANUM")
	if c.Len() != 36 {
		t.Fatalf("expected 36 alphanumerics, got %d", c.Len())
	}
}
