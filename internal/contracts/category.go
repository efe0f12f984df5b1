// Package contracts defines contract identity, the category enumeration, intake file
// filtering, and model-backed classification.
package contracts

import "strings"

// Category is one of the fixed contract categories.
type Category string

// Categories in enumeration order. The first entry is the fallback category.
const (
	ServiceContract      Category = "Service Contract"
	EmploymentContract   Category = "Employment Contract"
	LeaseAgreement       Category = "Lease and Rent Agreement"
	NDA                  Category = "Non-Disclosure Agreement (NDA)"
	PartnershipAgreement Category = "Partnership and Joint Venture Agreement"
	LoanContract         Category = "Loan and Financing Contract"
	GovernmentContract   Category = "Government and Procurement Contract"
	SoftwareLicense      Category = "Software License Agreement"
	FreelancerAgreement  Category = "Freelancer and Contractor Agreement"
)

var categories = []Category{
	ServiceContract,
	EmploymentContract,
	LeaseAgreement,
	NDA,
	PartnershipAgreement,
	LoanContract,
	GovernmentContract,
	SoftwareLicense,
	FreelancerAgreement,
}

// DefaultCategory is used when a contract cannot be classified.
const DefaultCategory = ServiceContract

// Categories returns the category enumeration in order.
func Categories() []Category {
	return categories
}

// CategoryNames returns the category names in enumeration order.
func CategoryNames() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

// MatchCategory maps a free-form model answer onto a category. An exact
// case-insensitive match on any category wins; otherwise the first category, in
// enumeration order, that contains the answer or is contained by it is returned.
func MatchCategory(answer string) (Category, bool) {
	a := normalize(answer)
	if a == "" {
		return "", false
	}

	for _, c := range categories {
		if strings.EqualFold(a, string(c)) {
			return c, true
		}
	}

	lower := strings.ToLower(a)
	for _, c := range categories {
		name := strings.ToLower(string(c))
		if strings.Contains(lower, name) || strings.Contains(name, lower) {
			return c, true
		}
	}

	return "", false
}

// normalize strips whitespace, surrounding quotes, a leading list marker, and a
// trailing period from a model answer.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "- "))
	s = strings.Trim(s, "\"'`*")
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}
