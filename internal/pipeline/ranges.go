package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// Range is an inclusive interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max]. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Input field names, as they appear in validation errors.
const (
	FieldFrequency = "frequency_ghz"
	FieldS11       = "s11_db"
	FieldBandwidth = "bandwidth_ghz"
)

// RangeTable is the set of accepted input ranges for one form variant.
type RangeTable struct {
	FrequencyGHz Range
	S11dB        Range
	BandwidthGHz Range
}

// Variants are the range tables of the three form layouts.
var Variants = map[string]RangeTable{
	"A": {
		FrequencyGHz: Range{Min: 37.0, Max: 40.0},
		S11dB:        Range{Min: -60.0, Max: -10.0},
		BandwidthGHz: Range{Min: 0.1, Max: 10.0},
	},
	"B": {
		FrequencyGHz: Range{Min: 37.0, Max: 40.0},
		S11dB:        Range{Min: -60.0, Max: -10.0},
		BandwidthGHz: Range{Min: 0.1, Max: 10.0},
	},
	"C": {
		FrequencyGHz: Range{Min: 37.0, Max: 40.0},
		S11dB:        Range{Min: -50.0, Max: -10.0},
		BandwidthGHz: Range{Min: 0.1, Max: 5.0},
	},
}

// DefaultVariant is used when no variant is configured.
const DefaultVariant = "A"

// VariantTable looks up a variant by name, case-insensitively.
func VariantTable(name string) (RangeTable, error) {
	if name == "" {
		name = DefaultVariant
	}
	t, ok := Variants[strings.ToUpper(name)]
	if !ok {
		names := make([]string, 0, len(Variants))
		for k := range Variants {
			names = append(names, k)
		}
		sort.Strings(names)
		return RangeTable{}, fmt.Errorf("unknown range variant %q, expected one of %s", name, strings.Join(names, ", "))
	}
	return t, nil
}
