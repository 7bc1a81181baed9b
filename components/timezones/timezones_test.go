package timezones

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultZones(t *testing.T) {
	zones, err := DefaultZones()
	if err != nil {
		t.Fatalf("DefaultZones() error = %v", err)
	}
	if len(zones) == 0 {
		t.Fatal("embedded zone list is empty")
	}
	for i := 1; i < len(zones); i++ {
		if zones[i-1] >= zones[i] {
			t.Fatalf("zones not sorted: %q before %q", zones[i-1], zones[i])
		}
	}

	zones[0] = "mutated"
	again, err := DefaultZones()
	if err != nil {
		t.Fatalf("DefaultZones() error = %v", err)
	}
	if again[0] == "mutated" {
		t.Error("DefaultZones must return a copy")
	}
}

func TestLoadZones(t *testing.T) {
	input := strings.NewReader(`
# header comment
Europe/Paris
America/New_York

Europe/Paris
UTC
`)
	zones, err := LoadZones(input)
	if err != nil {
		t.Fatalf("LoadZones() error = %v", err)
	}
	want := []string{"America/New_York", "Europe/Paris", "UTC"}
	if diff := cmp.Diff(want, zones); diff != "" {
		t.Errorf("zones mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadZonesErrors(t *testing.T) {
	if _, err := LoadZones(nil); err == nil {
		t.Error("LoadZones(nil) expected an error")
	}
	if _, err := LoadZones(strings.NewReader("# only comments\n")); err == nil {
		t.Error("LoadZones on an empty list expected an error")
	}
}

func TestSearchRanking(t *testing.T) {
	zones := []string{
		"America/New_York",
		"Asia/Tokyo",
		"Europe/Paris",
		"Pacific/Pago_Pago",
		"UTC",
	}

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "segment prefix beats substring",
			query: "pa",
			want:  []string{"Europe/Paris", "Pacific/Pago_Pago"},
		},
		{
			name:  "exact match first",
			query: "utc",
			want:  []string{"UTC"},
		},
		{
			name:  "full identifier prefix",
			query: "asia",
			want:  []string{"Asia/Tokyo"},
		},
		{
			name:  "case insensitive substring",
			query: "YORK",
			want:  []string{"America/New_York"},
		},
		{
			name:  "no matches",
			query: "zzz",
			want:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Search(zones, tc.query, 0)
			if len(got) == 0 {
				got = nil
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tc.query, diff)
			}
		})
	}
}

func TestSearchEmptyQueryAndLimit(t *testing.T) {
	zones := []string{"A", "B", "C"}

	all := Search(zones, "", 0)
	if diff := cmp.Diff(zones, all); diff != "" {
		t.Errorf("empty query mismatch (-want +got):\n%s", diff)
	}

	capped := Search(zones, "", 2)
	if diff := cmp.Diff([]string{"A", "B"}, capped); diff != "" {
		t.Errorf("capped result mismatch (-want +got):\n%s", diff)
	}
}
