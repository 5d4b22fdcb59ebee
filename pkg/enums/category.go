package enums

import "fmt"

// Category is the fixed interview topic taxonomy.
type Category string

const (
	CategoryQuant         Category = "quant"
	CategoryML            Category = "ml"
	CategoryAI            Category = "ai"
	CategoryBlockchain    Category = "blockchain"
	CategoryCybersecurity Category = "cybersecurity"
	CategoryDataScience   Category = "data-science"
	CategorySoftwareEng   Category = "software-eng"
)

var validCategories = []Category{
	CategoryQuant,
	CategoryML,
	CategoryAI,
	CategoryBlockchain,
	CategoryCybersecurity,
	CategoryDataScience,
	CategorySoftwareEng,
}

var categoryLabels = map[Category]string{
	CategoryQuant:         "Quantitative Finance",
	CategoryML:            "Machine Learning",
	CategoryAI:            "Artificial Intelligence",
	CategoryBlockchain:    "Blockchain",
	CategoryCybersecurity: "Cybersecurity",
	CategoryDataScience:   "Data Science",
	CategorySoftwareEng:   "Software Engineering",
}

// Categories returns the taxonomy in display order.
func Categories() []Category {
	out := make([]Category, len(validCategories))
	copy(out, validCategories)
	return out
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// Label returns the human readable name.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory converts raw input into a Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}
