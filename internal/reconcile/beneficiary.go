package reconcile

import (
	"strings"

	"opsconsole/pkg/models"
)

// ResolveBeneficiary matches an extracted beneficiary name against the known
// beneficiaries. An exact match wins over a known name contained in the extracted
// name, which wins over the extracted name contained in a known name. Within a tier
// the first entry in list order is taken.
//
// Without a match it returns a placeholder with id "new" whose type is taken from
// beneficiaryType, defaulting to company. The placeholder is never stored here; the
// caller persists it when the draft is saved.
func ResolveBeneficiary(name, beneficiaryType string, known []models.Beneficiary) models.Beneficiary {
	needle := strings.ToLower(strings.TrimSpace(name))

	if needle != "" {
		tiers := []func(candidate string) bool{
			func(candidate string) bool { return candidate == needle },
			func(candidate string) bool { return strings.Contains(needle, candidate) },
			func(candidate string) bool { return strings.Contains(candidate, needle) },
		}
		for _, matches := range tiers {
			for _, b := range known {
				candidate := strings.ToLower(strings.TrimSpace(b.Name))
				if candidate != "" && matches(candidate) {
					return b
				}
			}
		}
	}

	typ, ok := models.ParseBeneficiaryType(beneficiaryType)
	if !ok {
		typ = models.BeneficiaryTypeCompany
	}
	return models.Beneficiary{
		ID:   models.BeneficiaryIDNew,
		Name: strings.TrimSpace(name),
		Type: typ,
	}
}
