package regioncfg

import (
	"testing"
)

func TestParseMS_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1000", 1000, false},
		{"5s", 5000, false},
		{"3m", 180000, false},
		{"2h", 7200000, false},
		{"20ms", 20, false},
		{"-45", 0, true},
		{"3.235", 0, true},
		{"3z", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMS(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMS(%q) = %d, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMS(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMS(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestDerive_AppliesDefaultsAndThresholdMath(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`
regions:
  - name: r1
    send_interval: "1s"
    groups:
      - name: g1
        tests: ["ping 1.1.1.1"]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	regions, err := Derive(f)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("len(regions) = %d, want 1", len(regions))
	}

	r := regions[0]
	if r.IntervalMs != 1000 {
		t.Errorf("IntervalMs = %d, want 1000", r.IntervalMs)
	}
	// default miss_threshold = 3 -> 1000*3+1000 = 4000
	if r.ThresholdMs != 4000 {
		t.Errorf("region ThresholdMs = %d, want 4000", r.ThresholdMs)
	}
	if len(r.Groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(r.Groups))
	}
	// default fail_threshold = 3 -> 1000*3+1000 = 4000
	if r.Groups[0].ThresholdMs != 4000 {
		t.Errorf("group ThresholdMs = %d, want 4000", r.Groups[0].ThresholdMs)
	}
}

func TestDerive_RejectsEmptyRegionName(t *testing.T) {
	t.Parallel()

	f := &File{Regions: []RegionDecl{{SendInterval: "1s"}}}
	if _, err := Derive(f); err == nil {
		t.Fatal("expected error for empty region name")
	}
}
