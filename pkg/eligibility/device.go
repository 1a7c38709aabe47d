package eligibility

import "strings"

type DeviceClass string

const (
	DEVICE_CLASS_MOBILE  DeviceClass = "mobile"
	DEVICE_CLASS_TABLET  DeviceClass = "tablet"
	DEVICE_CLASS_DESKTOP DeviceClass = "desktop"
)

var tabletMarkers = []string{
	"ipad",
	"tablet",
	"kindle",
	"silk/",
	"playbook",
}

var mobileMarkers = []string{
	"iphone",
	"ipod",
	"android",
	"windows phone",
	"blackberry",
	"okhttp",
	"expo",
	"mobile",
}

// DetectDeviceClass classifies the calling device from its user agent.
// A single synchronous classification with no network dependency; anything
// unrecognized counts as desktop.
func DetectDeviceClass(userAgent string) DeviceClass {
	ua := strings.ToLower(userAgent)

	for _, marker := range tabletMarkers {
		if strings.Contains(ua, marker) {
			return DEVICE_CLASS_TABLET
		}
	}
	// Android tablets carry "android" but no "mobile" token.
	if strings.Contains(ua, "android") && !strings.Contains(ua, "mobile") {
		return DEVICE_CLASS_TABLET
	}
	for _, marker := range mobileMarkers {
		if strings.Contains(ua, marker) {
			return DEVICE_CLASS_MOBILE
		}
	}
	return DEVICE_CLASS_DESKTOP
}
