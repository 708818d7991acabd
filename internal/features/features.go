package features

// Stage describes how settled a feature flag is.
type Stage string

const (
	StageStable       Stage = "stable"
	StageBeta         Stage = "beta"
	StageExperimental Stage = "experimental"
)

const (
	// Autoscroll keeps the newest quote in view whenever the list grows.
	Autoscroll = "autoscroll"
	// Clipboard enables copying the latest quote with "y".
	Clipboard = "clipboard"
	// Autostart opens the stream as soon as the UI starts.
	Autostart = "autostart"
)

// Spec describes a feature flag exposed by the CLI.
type Spec struct {
	Key            string
	Stage          Stage
	DefaultEnabled bool
	Description    string
}

var Specs = []Spec{
	{Key: Autoscroll, Stage: StageStable, DefaultEnabled: true, Description: "scroll to the newest quote on arrival"},
	{Key: Clipboard, Stage: StageBeta, DefaultEnabled: true, Description: "copy the latest quote with y"},
	{Key: Autostart, Stage: StageExperimental, DefaultEnabled: false, Description: "connect immediately on launch"},
}

var known = func() map[string]Spec {
	m := make(map[string]Spec, len(Specs))
	for _, spec := range Specs {
		m[spec.Key] = spec
	}
	return m
}()

// IsKnown reports whether the feature key is recognized.
func IsKnown(key string) bool {
	_, ok := known[key]
	return ok
}

// StageFor returns the lifecycle stage for a feature, defaulting to experimental.
func StageFor(key string) Stage {
	if spec, ok := known[key]; ok {
		return spec.Stage
	}
	return StageExperimental
}

// DefaultEnabled reports the default value for the given feature key.
func DefaultEnabled(key string) bool {
	if spec, ok := known[key]; ok {
		return spec.DefaultEnabled
	}
	return false
}

// Set is a resolved view of feature toggles; keys missing from the map fall
// back to their defaults.
type Set map[string]bool

// Enabled reports whether key is on.
func (s Set) Enabled(key string) bool {
	if v, ok := s[key]; ok {
		return v
	}
	return DefaultEnabled(key)
}

// Defaults returns a Set holding every known flag at its default value.
func Defaults() Set {
	out := make(Set, len(Specs))
	for _, spec := range Specs {
		out[spec.Key] = spec.DefaultEnabled
	}
	return out
}
