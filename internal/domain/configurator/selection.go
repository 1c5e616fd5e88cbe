package configurator

import "sort"

// OptionSelection maps option name to the selected value.
// Keys outside the product schema are kept and ignored by pricing.
type OptionSelection map[string]string

// Get returns the selected value for name
func (s OptionSelection) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Clone returns an independent copy; a nil selection clones to an empty one
func (s OptionSelection) Clone() OptionSelection {
	out := make(OptionSelection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether both selections hold the same entries
func (s OptionSelection) Equal(other OptionSelection) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Names returns the option names in sorted order
func (s OptionSelection) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
