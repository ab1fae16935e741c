package featureflag

import "strings"

// FeatureFlag is a lookup map for features that are enabled.
type FeatureFlag map[Flag]struct{}

// New returns feature flags initialized with the given list of flags. Flags
// are trimmed and upper cased so that " sequential_cast" enables
// SEQUENTIAL_CAST.
func New(flags []string) FeatureFlag {
	featureFlag := make(FeatureFlag)
	for _, f := range flags {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		featureFlag[Flag(f)] = struct{}{}
	}
	return featureFlag
}

// IsSet reports whether the flag is enabled. It is safe to call on nil
// feature flags.
func (f FeatureFlag) IsSet(flag Flag) bool {
	_, ok := f[flag]
	return ok
}

// IfSet runs function `do` if flag is set in the feature flags.
func (f FeatureFlag) IfSet(flag Flag, do func()) {
	if !f.IsSet(flag) {
		return
	}
	do()
}

// IfNotSet runs function `do` if flag is not set in the feature flags.
func (f FeatureFlag) IfNotSet(flag Flag, do func()) {
	if f.IsSet(flag) {
		return
	}
	do()
}
