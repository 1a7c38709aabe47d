package outcome

import (
	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
)

var statusTitles = map[string]string{
	enrollmentTypes.STATUS_COMPLETED:            "Survey Completed Successfully",
	enrollmentTypes.STATUS_SCREEN_OUT:           "Survey Screening Complete",
	enrollmentTypes.STATUS_QUOTA_FULL:           "Survey Quota Reached",
	enrollmentTypes.STATUS_TARGET_UNSUITABLE:    "Target Unsuitable",
	enrollmentTypes.STATUS_CLOSED:               "Survey Closed",
	enrollmentTypes.STATUS_BOT_DETECTED:         "Access Denied",
	enrollmentTypes.STATUS_MAX_SURVEY_REACHED:   "Daily Survey Limit Reached",
	enrollmentTypes.STATUS_SURVEY_TAKEN:         "Survey Already Taken",
	enrollmentTypes.STATUS_NO_SURVEYS:           "No Surveys Available",
	enrollmentTypes.STATUS_NO_COOKIES:           "Cookies Required",
	enrollmentTypes.STATUS_SURVEY_NOT_AVAILABLE: "Survey No Longer Available",
}

var statusMessages = map[string]string{
	enrollmentTypes.STATUS_COMPLETED:            "Thank you for completing the survey! Your responses have been successfully recorded. Your reward will be credited to your account shortly.",
	enrollmentTypes.STATUS_SCREEN_OUT:           "Unfortunately, you did not qualify for this survey. Please try another survey from your dashboard.",
	enrollmentTypes.STATUS_TARGET_UNSUITABLE:    "Unfortunately, you did not qualify for this survey. Please try another survey from your dashboard.",
	enrollmentTypes.STATUS_QUOTA_FULL:           "This survey has reached its response quota. Please choose a different survey from your dashboard.",
	enrollmentTypes.STATUS_CLOSED:               "This survey is closed and no longer accepting responses.",
	enrollmentTypes.STATUS_BOT_DETECTED:         "Automated activity was detected for this survey. If you believe this is a mistake, please contact support.",
	enrollmentTypes.STATUS_MAX_SURVEY_REACHED:   "You have reached the maximum number of surveys allowed for today (25 starts or 5 completes). Please try again tomorrow.",
	enrollmentTypes.STATUS_SURVEY_TAKEN:         "Our records show that you have already taken this survey. Please choose a different survey from your dashboard.",
	enrollmentTypes.STATUS_NO_SURVEYS:           "There are currently no surveys available that match your profile. Please check back later for new opportunities.",
	enrollmentTypes.STATUS_NO_COOKIES:           "Please enable cookies in your browser to participate in surveys. Cookies are required for proper survey functionality.",
	enrollmentTypes.STATUS_SURVEY_NOT_AVAILABLE: "This survey is no longer active. Please return to your dashboard to find available surveys.",
}

const (
	defaultTitle   = "Survey Status"
	defaultMessage = "An unexpected status was received. Please return to your dashboard and try again."
)

// TitleFor returns the result page title for a presented status. Unknown
// statuses fall back to a generic title, never an empty string.
func TitleFor(status string) string {
	if title, ok := statusTitles[enrollmentTypes.NormalizeStatus(status)]; ok {
		return title
	}
	return defaultTitle
}

// MessageFor returns the result page body for a presented status.
func MessageFor(status string) string {
	if message, ok := statusMessages[enrollmentTypes.NormalizeStatus(status)]; ok {
		return message
	}
	return defaultMessage
}
