package enrollmentcodec

import (
	"errors"
	"testing"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := New("test-secret")

	t.Run("simple map", func(t *testing.T) {
		encoded, err := codec.Encode(map[string]string{"projectCode": "P1", "status": "COMPLETED"})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		var out map[string]string
		if err := codec.Decode(encoded, &out); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if out["projectCode"] != "P1" || out["status"] != "COMPLETED" {
			t.Errorf("unexpected value: %v", out)
		}
	})

	t.Run("descriptor", func(t *testing.T) {
		descriptor := enrollmentTypes.EnrollmentDescriptor{
			ProjectCode:        "PX-2201",
			ProjectID:          42,
			CountryCode:        "KE",
			DeviceRestrictions: []string{"desktop"},
			SurveyHostingType:  enrollmentTypes.SURVEY_HOSTING_TYPE_EXTERNAL,
		}
		link, err := codec.BuildEnrollmentLink(descriptor)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		got, err := codec.ConsumeEnrollmentLink(link)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if got.ProjectCode != descriptor.ProjectCode ||
			got.ProjectID != descriptor.ProjectID ||
			got.CountryCode != descriptor.CountryCode ||
			got.SurveyHostingType != descriptor.SurveyHostingType ||
			len(got.DeviceRestrictions) != 1 || got.DeviceRestrictions[0] != "desktop" {
			t.Errorf("unexpected descriptor: %+v", got)
		}
	})

	t.Run("values with special characters survive", func(t *testing.T) {
		encoded, err := codec.Encode(map[string]string{"q": "a&b=c, d%20 +/ä"})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		var out map[string]string
		if err := codec.Decode(encoded, &out); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if out["q"] != "a&b=c, d%20 +/ä" {
			t.Errorf("unexpected value: %v", out["q"])
		}
	})
}

func TestDecodeFailures(t *testing.T) {
	codec := New("test-secret")

	t.Run("not base64", func(t *testing.T) {
		var out map[string]string
		if err := codec.Decode("%%%not-base64%%%", &out); !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("base64 but not a bundle", func(t *testing.T) {
		var out map[string]string
		if err := codec.Decode("bm90IGpzb24=", &out); !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		encoded, err := codec.Encode(map[string]string{"projectCode": "P1"})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		// Flip one character at every position; decode must either fail or,
		// when the mutation only touches unused trailing base64 bits, still
		// recover the original value. It must never return something else.
		for i := 0; i < len(encoded); i++ {
			mutated := []byte(encoded)
			if mutated[i] == 'A' {
				mutated[i] = 'B'
			} else {
				mutated[i] = 'A'
			}
			var out map[string]string
			err := codec.Decode(string(mutated), &out)
			if err == nil {
				if out["projectCode"] != "P1" {
					t.Errorf("tampered payload at index %d decoded to a different value: %v", i, out)
					return
				}
				continue
			}
			if !errors.Is(err, ErrDecode) && !errors.Is(err, ErrIntegrity) {
				t.Errorf("unexpected error kind at index %d: %v", i, err)
				return
			}
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		encoded, err := codec.Encode(map[string]string{"projectCode": "P1"})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		other := New("other-secret")
		var out map[string]string
		if err := other.Decode(encoded, &out); !errors.Is(err, ErrIntegrity) {
			t.Errorf("expected ErrIntegrity, got %v", err)
		}
	})
}

func TestDefaultSecretFallback(t *testing.T) {
	withFallback := New("")
	explicit := New(DEFAULT_SECRET)

	encoded, err := withFallback.Encode(map[string]string{"projectCode": "P1"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
		return
	}
	var out map[string]string
	if err := explicit.Decode(encoded, &out); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConsumeEnrollmentLinkRequiresProjectCode(t *testing.T) {
	codec := New("test-secret")

	if _, err := codec.BuildEnrollmentLink(enrollmentTypes.EnrollmentDescriptor{}); err == nil {
		t.Error("should produce error")
	}

	encoded, err := codec.Encode(map[string]string{"somethingElse": "x"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
		return
	}
	if _, err := codec.ConsumeEnrollmentLink(encoded); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}
