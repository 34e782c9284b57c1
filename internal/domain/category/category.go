package category

import "fmt"

// Category identifies which complaint subsystem and admin realm a request
// belongs to. Every screen past the landing page is parameterized by exactly
// one Category, threaded through the URL.
type Category string

const (
	Lab Category = "lab"
	ICC Category = "icc"
)

// All lists the known categories in display order.
var All = []Category{Lab, ICC}

// Parse validates a raw URL segment.
// PRE: raw is the category path segment as received from the router
// POST: returns a valid Category or an error for anything else
func Parse(raw string) (Category, error) {
	switch Category(raw) {
	case Lab, ICC:
		return Category(raw), nil
	}
	return "", fmt.Errorf("unknown category: %q", raw)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == Lab || c == ICC
}

// DisplayName returns the human-facing name used in page titles.
func (c Category) DisplayName() string {
	if c == ICC {
		return "ICC"
	}
	return "Lab"
}

// AdminRealm returns the backend auth realm slug for this category.
func (c Category) AdminRealm() string {
	return string(c) + "-admin"
}

func (c Category) String() string {
	return string(c)
}
