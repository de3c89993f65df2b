package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
)

var (
	// optional "R$", digits, optional "," or "." and fractional digits
	monetaryPattern = regexp.MustCompile(`(?:R\$\s*)?(\d+(?:[.,]\d*)?)`)
	integerPattern  = regexp.MustCompile(`\d+`)
)

// ExtractEntities pulls customer references, a monetary value and an integer
// out of an utterance. It never fails: anything it cannot find is left empty.
//
// Every customer whose display name occurs in the text (case-insensitive) is a
// candidate; ambiguity is kept for the classifier. The integer is parsed on
// its own, so "R$ 12,50" yields both 12.5 and 12.
func ExtractEntities(text string, customers []domain.Customer) domain.EntityExtraction {
	return domain.EntityExtraction{
		CandidateCustomers: matchCustomers(text, customers),
		MonetaryValue:      parseMonetary(text),
		IntegerValue:       parseInteger(text),
	}
}

func matchCustomers(text string, customers []domain.Customer) []domain.Customer {
	lower := strings.ToLower(text)
	var out []domain.Customer
	for _, c := range customers {
		name := strings.TrimSpace(c.DisplayName())
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			out = append(out, c)
		}
	}
	return out
}

func parseMonetary(text string) *float64 {
	m := monetaryPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInteger(text string) *int {
	m := integerPattern.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &v
}
