package outcome

import (
	"strings"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
)

// Action types a terminal screening outcome can resolve to.
const (
	// Hand over to the in-app survey question flow.
	ACTION_SHOW_INTERNAL_CONTINUATION = "SHOW_INTERNAL_CONTINUATION"
	// Open the survey link in an embedded web view.
	ACTION_OPEN_EXTERNAL = "OPEN_EXTERNAL"
	// Move to the results page for the given status.
	ACTION_NAVIGATE_TO_RESULT = "NAVIGATE_TO_RESULT"
	// Device gate failed; offer the original link for use on another device.
	ACTION_SHOW_DEVICE_BLOCKED = "SHOW_DEVICE_BLOCKED"
)

type Action struct {
	Type             string   `json:"type"`
	Status           string   `json:"status,omitempty"`
	Link             string   `json:"link,omitempty"`
	OriginalURL      string   `json:"originalUrl,omitempty"`
	SupportedDevices []string `json:"supportedDevices,omitempty"`
	Title            string   `json:"title,omitempty"`
	Message          string   `json:"message,omitempty"`
}

// Route maps a terminal status to the next action. Pure and deterministic:
// the same inputs always yield the same action.
func Route(status string, hostingType string, externalLink string) Action {
	status = enrollmentTypes.NormalizeStatus(status)

	if status == enrollmentTypes.STATUS_TARGET_SUITABLE {
		if hostingType == enrollmentTypes.SURVEY_HOSTING_TYPE_INTERNAL {
			return Action{Type: ACTION_SHOW_INTERNAL_CONTINUATION}
		}
		if externalLink != "" {
			return Action{Type: ACTION_OPEN_EXTERNAL, Link: externalLink}
		}
		// Suitable but nowhere to go; fall through to the result page so the
		// user never ends up on a blank screen.
	}

	return NavigateToResult(status)
}

// NavigateToResult builds the result page action, including the
// status-specific title and message.
func NavigateToResult(status string) Action {
	presented := PresentedStatus(status)
	return Action{
		Type:    ACTION_NAVIGATE_TO_RESULT,
		Status:  presented,
		Title:   TitleFor(presented),
		Message: MessageFor(presented),
	}
}

// ShowDeviceBlocked builds the fallback action for a failed device gate,
// carrying the original deep link for copy/share to a compatible device.
func ShowDeviceBlocked(originalURL string, restrictions []string) Action {
	supported := []string{}
	for _, device := range []string{"mobile", "tablet", "desktop"} {
		restricted := false
		for _, r := range restrictions {
			if strings.EqualFold(r, device) {
				restricted = true
				break
			}
		}
		if !restricted {
			supported = append(supported, device)
		}
	}
	return Action{
		Type:             ACTION_SHOW_DEVICE_BLOCKED,
		OriginalURL:      originalURL,
		SupportedDevices: supported,
	}
}

// PresentedStatus maps the reported status to the one shown to the user.
// GEO_LOCKED is reported to the backend verbatim but presented as
// TARGET_UNSUITABLE.
func PresentedStatus(status string) string {
	normalized := enrollmentTypes.NormalizeStatus(status)
	if normalized == enrollmentTypes.STATUS_GEO_LOCKED {
		return enrollmentTypes.STATUS_TARGET_UNSUITABLE
	}
	return normalized
}
