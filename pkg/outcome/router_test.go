package outcome

import (
	"reflect"
	"testing"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name         string
		status       string
		hostingType  string
		externalLink string
		expectedType string
	}{
		{
			name:         "suitable internal",
			status:       enrollmentTypes.STATUS_TARGET_SUITABLE,
			hostingType:  enrollmentTypes.SURVEY_HOSTING_TYPE_INTERNAL,
			expectedType: ACTION_SHOW_INTERNAL_CONTINUATION,
		},
		{
			name:         "suitable external with link",
			status:       enrollmentTypes.STATUS_TARGET_SUITABLE,
			hostingType:  enrollmentTypes.SURVEY_HOSTING_TYPE_EXTERNAL,
			externalLink: "https://x",
			expectedType: ACTION_OPEN_EXTERNAL,
		},
		{
			name:         "suitable external without link falls back to result",
			status:       enrollmentTypes.STATUS_TARGET_SUITABLE,
			hostingType:  enrollmentTypes.SURVEY_HOSTING_TYPE_EXTERNAL,
			expectedType: ACTION_NAVIGATE_TO_RESULT,
		},
		{
			name:         "unsuitable",
			status:       enrollmentTypes.STATUS_TARGET_UNSUITABLE,
			hostingType:  enrollmentTypes.SURVEY_HOSTING_TYPE_INTERNAL,
			expectedType: ACTION_NAVIGATE_TO_RESULT,
		},
		{
			name:         "quota full external",
			status:       enrollmentTypes.STATUS_QUOTA_FULL,
			hostingType:  enrollmentTypes.SURVEY_HOSTING_TYPE_EXTERNAL,
			externalLink: "https://x",
			expectedType: ACTION_NAVIGATE_TO_RESULT,
		},
		{
			name:         "lower case status",
			status:       "completed",
			hostingType:  enrollmentTypes.SURVEY_HOSTING_TYPE_EXTERNAL,
			expectedType: ACTION_NAVIGATE_TO_RESULT,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := Route(tt.status, tt.hostingType, tt.externalLink)
			if action.Type != tt.expectedType {
				t.Errorf("Route(%q, %q, %q).Type = %q, want %q", tt.status, tt.hostingType, tt.externalLink, action.Type, tt.expectedType)
			}
		})
	}

	t.Run("deterministic", func(t *testing.T) {
		first := Route(enrollmentTypes.STATUS_QUOTA_FULL, enrollmentTypes.SURVEY_HOSTING_TYPE_EXTERNAL, "https://x")
		second := Route(enrollmentTypes.STATUS_QUOTA_FULL, enrollmentTypes.SURVEY_HOSTING_TYPE_EXTERNAL, "https://x")
		if !reflect.DeepEqual(first, second) {
			t.Errorf("route not deterministic: %+v != %+v", first, second)
		}
	})

	t.Run("open external carries link", func(t *testing.T) {
		action := Route(enrollmentTypes.STATUS_TARGET_SUITABLE, enrollmentTypes.SURVEY_HOSTING_TYPE_EXTERNAL, "https://surveys.example.com/s/1")
		if action.Link != "https://surveys.example.com/s/1" {
			t.Errorf("unexpected link: %q", action.Link)
		}
	})
}

func TestNavigateToResult(t *testing.T) {
	t.Run("quota full title", func(t *testing.T) {
		action := NavigateToResult(enrollmentTypes.STATUS_QUOTA_FULL)
		if action.Title != "Survey Quota Reached" {
			t.Errorf("unexpected title: %q", action.Title)
		}
		if action.Message == "" {
			t.Error("message must not be empty")
		}
	})

	t.Run("geo locked presented as unsuitable", func(t *testing.T) {
		action := NavigateToResult(enrollmentTypes.STATUS_GEO_LOCKED)
		if action.Status != enrollmentTypes.STATUS_TARGET_UNSUITABLE {
			t.Errorf("unexpected status: %q", action.Status)
		}
		if action.Title != "Target Unsuitable" {
			t.Errorf("unexpected title: %q", action.Title)
		}
	})

	t.Run("disqualified presented as screen out", func(t *testing.T) {
		action := NavigateToResult(enrollmentTypes.STATUS_DISQUALIFIED)
		if action.Title != "Survey Screening Complete" {
			t.Errorf("unexpected title: %q", action.Title)
		}
	})

	t.Run("unknown status falls back", func(t *testing.T) {
		action := NavigateToResult("SOMETHING_NEW")
		if action.Title != "Survey Status" {
			t.Errorf("unexpected title: %q", action.Title)
		}
		if action.Message == "" {
			t.Error("message must not be empty")
		}
	})
}

func TestShowDeviceBlocked(t *testing.T) {
	action := ShowDeviceBlocked("https://app.example.com/enroll?data=abc", []string{"Desktop"})
	if action.Type != ACTION_SHOW_DEVICE_BLOCKED {
		t.Errorf("unexpected type: %q", action.Type)
	}
	if action.OriginalURL != "https://app.example.com/enroll?data=abc" {
		t.Errorf("unexpected url: %q", action.OriginalURL)
	}
	if len(action.SupportedDevices) != 2 {
		t.Errorf("unexpected supported devices: %v", action.SupportedDevices)
		return
	}
	for _, device := range action.SupportedDevices {
		if device == "desktop" {
			t.Error("restricted device listed as supported")
		}
	}
}

func TestTitlesAndMessagesCoverTaxonomy(t *testing.T) {
	statuses := []string{
		enrollmentTypes.STATUS_TARGET_UNSUITABLE,
		enrollmentTypes.STATUS_QUOTA_FULL,
		enrollmentTypes.STATUS_CLOSED,
		enrollmentTypes.STATUS_BOT_DETECTED,
		enrollmentTypes.STATUS_MAX_SURVEY_REACHED,
		enrollmentTypes.STATUS_SURVEY_TAKEN,
		enrollmentTypes.STATUS_NO_SURVEYS,
		enrollmentTypes.STATUS_NO_COOKIES,
		enrollmentTypes.STATUS_SURVEY_NOT_AVAILABLE,
		enrollmentTypes.STATUS_COMPLETED,
		enrollmentTypes.STATUS_SCREEN_OUT,
	}
	for _, status := range statuses {
		t.Run(status, func(t *testing.T) {
			if TitleFor(status) == "" || TitleFor(status) == defaultTitle {
				t.Errorf("missing title for %s", status)
			}
			if MessageFor(status) == "" || MessageFor(status) == defaultMessage {
				t.Errorf("missing message for %s", status)
			}
		})
	}
}
