package enums

import "testing"

func TestParseProfileRole(t *testing.T) {
	role, err := ParseProfileRole("admin")
	if err != nil || role != ProfileRoleAdmin {
		t.Fatalf("expected admin role, got %q err=%v", role, err)
	}
	if _, err := ParseProfileRole("owner"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
	if ProfileRole("").IsValid() {
		t.Fatalf("empty role should be invalid")
	}
}

func TestCategories(t *testing.T) {
	all := Categories()
	if len(all) != 7 {
		t.Fatalf("expected 7 categories, got %d", len(all))
	}
	all[0] = "mutated"
	if Categories()[0] != CategoryQuant {
		t.Fatalf("Categories must return a copy")
	}
	if got := CategoryDataScience.Label(); got != "Data Science" {
		t.Fatalf("unexpected label %q", got)
	}
	if _, err := ParseCategory("biology"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
	if c, err := ParseCategory("software-eng"); err != nil || c != CategorySoftwareEng {
		t.Fatalf("unexpected parse result %q err=%v", c, err)
	}
}
