package features

import "testing"

func TestSetEnabledFallsBackToDefaults(t *testing.T) {
	cases := []struct {
		name string
		set  Set
		key  string
		want bool
	}{
		{name: "nil set autoscroll", set: nil, key: Autoscroll, want: true},
		{name: "nil set autostart", set: nil, key: Autostart, want: false},
		{name: "explicit off", set: Set{Autoscroll: false}, key: Autoscroll, want: false},
		{name: "explicit on", set: Set{Autostart: true}, key: Autostart, want: true},
		{name: "unknown", set: Set{}, key: "nope", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.set.Enabled(tc.key); got != tc.want {
				t.Fatalf("Enabled(%q) = %v, want %v", tc.key, got, tc.want)
			}
		})
	}
}

func TestDefaultsCoverSpecs(t *testing.T) {
	d := Defaults()
	if len(d) != len(Specs) {
		t.Fatalf("len(Defaults()) = %d, want %d", len(d), len(Specs))
	}
	for _, spec := range Specs {
		if !IsKnown(spec.Key) {
			t.Fatalf("IsKnown(%q) = false", spec.Key)
		}
		if d[spec.Key] != spec.DefaultEnabled {
			t.Fatalf("Defaults()[%q] = %v, want %v", spec.Key, d[spec.Key], spec.DefaultEnabled)
		}
	}
	if StageFor("missing") != StageExperimental {
		t.Fatalf("StageFor(missing) = %q", StageFor("missing"))
	}
}
