package council

import (
	"errors"
	"testing"
)

func TestSampleReturnsDistinctProfiles(t *testing.T) {
	for n := 3; n <= 7; n++ {
		profiles := Sample(n)
		if len(profiles) != n {
			t.Fatalf("Sample(%d) returned %d profiles", n, len(profiles))
		}

		seen := make(map[string]bool)
		for _, p := range profiles {
			if seen[p.Name] {
				t.Errorf("Sample(%d) returned duplicate profile %q", n, p.Name)
			}
			seen[p.Name] = true

			if _, err := Lookup(p.Name); err != nil {
				t.Errorf("Sample(%d) returned profile %q not in catalog", n, p.Name)
			}
		}
	}
}

func TestSampleClampsToCatalogSize(t *testing.T) {
	profiles := Sample(100)
	if len(profiles) != Size() {
		t.Errorf("Expected full catalog of %d profiles, got %d", Size(), len(profiles))
	}

	if got := Sample(0); len(got) != 0 {
		t.Errorf("Sample(0) returned %d profiles", len(got))
	}
	if got := Sample(-1); len(got) != 0 {
		t.Errorf("Sample(-1) returned %d profiles", len(got))
	}
}

func TestCatalogSize(t *testing.T) {
	if Size() != 7 {
		t.Errorf("Expected 7 profiles in catalog, got %d", Size())
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("Dr. Chaos")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if p.Specialty != "Probability and statistics" {
		t.Errorf("Unexpected specialty %q", p.Specialty)
	}
	if p.Description == "" || len(p.Traits) == 0 {
		t.Error("Expected description and traits to be populated")
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("Dr. Nobody")
	if !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("Expected ErrUnknownProfile, got %v", err)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "mutated"

	if catalog[0].Name == "mutated" {
		t.Error("All() must not expose the underlying catalog")
	}
}
