package scoring

import "testing"

func TestInitialWeightCorrection(t *testing.T) {
	got, err := InitialWeight(CategoryCorrection, 1500, DefaultAvgTokensPerTask, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1.0 + 1500.0/10000
	if got != want {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestInitialWeightUserSources(t *testing.T) {
	cases := []struct {
		source UserSource
		want   float64
	}{
		{UserSourceDenial, 2.0},
		{UserSourceCorrection, 2.5},
		{UserSourceInput, 2.0},
		{UserSource("unknown"), 2.0},
	}
	for _, c := range cases {
		got, err := InitialWeight(CategoryUser, 0, 0, c.source)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != c.want {
			t.Errorf("source %q: want %v got %v", c.source, c.want, got)
		}
	}
}

func TestInitialWeightFlatCategories(t *testing.T) {
	for _, cat := range []Category{CategoryInsight, CategoryConsolidated, CategoryDiscovery} {
		got, err := InitialWeight(cat, 0, 0, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 1.0 {
			t.Errorf("category %q: want 1.0 got %v", cat, got)
		}
	}
}

func TestInitialWeightUnknownCategoryErrors(t *testing.T) {
	if _, err := InitialWeight(Category("bogus"), 0, 0, ""); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestCategoryValid(t *testing.T) {
	if !CategoryCorrection.Valid() {
		t.Error("expected correction to be valid")
	}
	if Category("bogus").Valid() {
		t.Error("expected bogus to be invalid")
	}
}
