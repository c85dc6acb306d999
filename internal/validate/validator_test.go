package validate_test

import (
	"errors"
	"testing"

	"pixbatch/internal/failure"
	"pixbatch/internal/testsupport"
	"pixbatch/internal/validate"
)

func TestValidateRejectsOversizedFile(t *testing.T) {
	d := testsupport.SizedDescriptor("big.jpg", "image/jpeg", 11*1024*1024, nil)

	_, err := validate.Validate(d)
	if !errors.Is(err, failure.KindTooLarge) {
		t.Fatalf("expected TooLarge, got %v", err)
	}
	if key := failure.MessageKey(err, ""); key != validate.KeyFileSize {
		t.Fatalf("message key = %q", key)
	}
}

func TestValidateAcceptsExactLimit(t *testing.T) {
	d := testsupport.SizedDescriptor("edge.png", "image/png", 10*1024*1024, nil)
	if _, err := validate.Validate(d); err != nil {
		t.Fatalf("expected file at limit to pass, got %v", err)
	}
}

func TestValidateRejectsUnsupportedType(t *testing.T) {
	for _, mediaType := range []string{"image/gif", "application/pdf", ""} {
		d := testsupport.Descriptor("x.gif", mediaType, []byte("GIF89a"))
		_, err := validate.Validate(d)
		if !errors.Is(err, failure.KindUnsupportedType) {
			t.Fatalf("%q: expected UnsupportedType, got %v", mediaType, err)
		}
		if key := failure.MessageKey(err, ""); key != validate.KeyFormat {
			t.Fatalf("message key = %q", key)
		}
	}
}

func TestValidateSanitizesName(t *testing.T) {
	d := testsupport.Descriptor("café photo.jpg", "IMAGE/JPEG", []byte{0xff})

	got, err := validate.Validate(d)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Name != "caf_ photo.jpg" {
		t.Fatalf("Name = %q", got.Name)
	}
	if got.MediaType != "image/jpeg" {
		t.Fatalf("MediaType = %q", got.MediaType)
	}

	again, err := validate.Validate(got)
	if err != nil || again.Name != got.Name {
		t.Fatalf("re-validation changed name to %q (%v)", again.Name, err)
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		kind    failure.Kind
		key     string
		warning bool
	}{
		{"minimum", 10, 10, "", "", false},
		{"too small width", 9, 100, failure.KindTooSmall, validate.KeyDimensionsTooSmall, false},
		{"too big height", 100, 8001, failure.KindTooBig, validate.KeyDimensionsTooBig, false},
		{"unusual", 8000, 4001, failure.KindUnusual, validate.KeyDimensionsUnusual, false},
		{"exactly max pixels", 8000, 4000, "", validate.KeyDimensionsWebSize, true},
		{"web size", 2001, 100, "", validate.KeyDimensionsWebSize, true},
		{"web size boundary", 2000, 2000, "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			report, err := validate.ValidateDimensions(tc.w, tc.h)
			if tc.kind != "" {
				if !errors.Is(err, tc.kind) {
					t.Fatalf("expected %s, got %v", tc.kind, err)
				}
				if key := failure.MessageKey(err, ""); key != tc.key {
					t.Fatalf("message key = %q, want %q", key, tc.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if report.HasWarning() != tc.warning {
				t.Fatalf("HasWarning = %v, want %v", report.HasWarning(), tc.warning)
			}
			if tc.warning && (report.Warning != failure.KindWebSizeWarning || report.WarningKey != tc.key) {
				t.Fatalf("unexpected warning %+v", report)
			}
		})
	}
}

func TestLimitsFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxFileBytes(1024))
	v := validate.New(validate.LimitsFromConfig(cfg))

	_, err := v.Validate(testsupport.SizedDescriptor("a.png", "image/png", 2048, nil))
	if !errors.Is(err, failure.KindTooLarge) {
		t.Fatalf("expected configured limit to apply, got %v", err)
	}
	if v.Limits().MaxDimension != 8000 {
		t.Fatalf("MaxDimension = %d", v.Limits().MaxDimension)
	}
}
