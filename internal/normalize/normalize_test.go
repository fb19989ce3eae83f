package normalize

import "testing"

func strPtr(s string) *string { return &s }

func TestNullable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *string
	}{
		{"plain value", "adalimumab", strPtr("adalimumab")},
		{"trims whitespace", "  40 mg  ", strPtr("40 mg")},
		{"empty", "", nil},
		{"whitespace only", "   \t ", nil},
		{"literal null", "null", nil},
		{"literal NULL", "NULL", nil},
		{"padded null", " Null ", nil},
		{"null inside word survives", "nullify", strPtr("nullify")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Nullable(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Nullable(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Nullable(%q) = %q, want %q", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestInteger(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *int
	}{
		{"plain", "5", intPtr(5)},
		{"padded", " 120 ", intPtr(120)},
		{"negative", "-3", intPtr(-3)},
		{"empty", "", nil},
		{"null", "null", nil},
		{"non-numeric", "two", nil},
		{"decimal rejected", "2.5", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Integer(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Integer(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Integer(%q) = %d, want %d", tt.in, *got, *tt.want)
			}
		})
	}
}

func intPtr(n int) *int { return &n }

func TestAuthorityCode(t *testing.T) {
	if got := AuthorityCode(" streamlined "); got == nil || *got != "STREAMLINED" {
		t.Errorf("AuthorityCode(streamlined) = %v, want STREAMLINED", got)
	}
	if got := AuthorityCode(""); got != nil {
		t.Errorf("AuthorityCode(empty) = %v, want nil", got)
	}
	if got := AuthorityCode("null"); got != nil {
		t.Errorf("AuthorityCode(null) = %v, want nil", got)
	}
}

func TestHospitalType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HS", "Private"},
		{"hs", "Private"},
		{"HB", "Public"},
		{"hb", "Public"},
		{"GE", "Any"},
		{"R1", "Any"},
	}
	for _, tt := range tests {
		got := HospitalType(tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("HospitalType(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"", "  ", "null"} {
		if got := HospitalType(in); got != nil {
			t.Errorf("HospitalType(%q) = %v, want nil", in, got)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "adalimumab", "Adalimumab"},
		{"multi word", "rheumatoid arthritis", "Rheumatoid Arthritis"},
		{"internal casing preserved", "etanercept 50mg mAb", "Etanercept 50mg MAb"},
		{"collapses runs of whitespace", "initial  treatment", "Initial Treatment"},
		{"non-letter first char untouched", "(anca) associated vasculitis", "(anca) Associated Vasculitis"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleCase(tt.in); got != tt.want {
				t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
