package eligibility

import "strings"

// CheckGeo evaluates the geo gate. Eligible when the project carries no
// country restriction or the resolved country matches it. An unresolved
// country (empty string) blocks unless the descriptor is a test one.
func CheckGeo(resolvedCountry string, requiredCountry string, isTest bool) bool {
	if isTest {
		return true
	}
	if requiredCountry == "" {
		return true
	}
	if resolvedCountry == "" {
		return false
	}
	return strings.EqualFold(resolvedCountry, requiredCountry)
}

// CheckDevice evaluates the device gate. Restrictions list the device
// classes a project is NOT available on, so membership blocks.
func CheckDevice(detected DeviceClass, restrictions []string, isTest bool) bool {
	if isTest {
		return true
	}
	if len(restrictions) == 0 {
		return true
	}
	detectedLower := strings.ToLower(string(detected))
	for _, restricted := range restrictions {
		if strings.ToLower(restricted) == detectedLower {
			return false
		}
	}
	return true
}
