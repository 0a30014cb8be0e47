package cache

import "testing"

func TestKeyDeterministic(t *testing.T) {
	a := NewKey("prices").
		StrSet("items", []string{"T4_BAG", "T5_BAG"}).
		StrSet("locations", []string{"Martlock", "Caerleon"}).
		IntSet("qualities", []int{2, 1}).
		Str("region", "west").
		String()

	b := NewKey("prices").
		StrSet("items", []string{"T5_BAG", "T4_BAG"}).
		StrSet("locations", []string{"Caerleon", "Martlock"}).
		IntSet("qualities", []int{1, 2}).
		Str("region", "west").
		String()

	if a != b {
		t.Fatalf("same parameters must build the same key: %q vs %q", a, b)
	}
}

func TestKeyDistinctParams(t *testing.T) {
	a := NewKey("prices").StrSet("items", []string{"T4_BAG"}).Str("region", "west").String()
	b := NewKey("prices").StrSet("items", []string{"T4_BAG"}).Str("region", "east").String()
	if a == b {
		t.Fatalf("distinct queries must not collide: %q", a)
	}
}

func TestKeyPrefixSeparation(t *testing.T) {
	a := NewKey("prices").Str("item", "T4_BAG").String()
	b := NewKey("names").Str("item", "T4_BAG").String()
	if a == b {
		t.Fatalf("namespaces must not collide")
	}
}
