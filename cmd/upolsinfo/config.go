package main

import (
	"encoding/json"
	"fmt"
)

// intList unmarshals either a bare JSON number or a JSON array of numbers,
// the "scalar or index-sequence forms" routing.Init accepts per the
// routing-table contract.
type intList []int

func (l *intList) UnmarshalJSON(data []byte) error {
	var scalar int
	if err := json.Unmarshal(data, &scalar); err == nil {
		*l = intList{scalar}
		return nil
	}
	var seq []int
	if err := json.Unmarshal(data, &seq); err != nil {
		return fmt.Errorf("expected a number or array of numbers, got %s", data)
	}
	*l = seq
	return nil
}

// floatList unmarshals either a bare JSON number or a JSON array of
// numbers, mirroring intList. SparseGainRoutingList::fromJson in the
// original C++ sources (librbbl/sparse_gain_routing.cpp) applies this
// same scalar-or-sequence treatment to row, column, AND gain; cmd/
// upolsinfo extends it to gain the same way.
type floatList []float64

func (l *floatList) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		*l = floatList{scalar}
		return nil
	}
	var seq []float64
	if err := json.Unmarshal(data, &seq); err != nil {
		return fmt.Errorf("expected a number or array of numbers, got %s", data)
	}
	*l = seq
	return nil
}

// routeSpec is one JSON routing entry. In, Out and Gain may each be a
// scalar or a sequence; a scalar paired with a sequence is broadcast
// across it, and sequences of equal length are zipped pairwise.
type routeSpec struct {
	In     intList   `json:"in"`
	Out    intList   `json:"out"`
	Filter int       `json:"filter"`
	Gain   floatList `json:"gain"`
}

// routeEntry is one fully-resolved (in, out, gain) routing assignment.
type routeEntry struct {
	In, Out int
	Gain    float64
}

// expand returns the individual (in, out, gain) assignments this entry
// denotes, broadcasting In/Out/Gain against each other the way the
// original's fromJson broadcasts a scalar field against its non-scalar
// siblings and zips fields that are already the same length.
func (r routeSpec) expand() ([]routeEntry, error) {
	var pairs [][2]int
	switch {
	case len(r.In) == 1 && len(r.Out) > 1:
		pairs = make([][2]int, len(r.Out))
		for i, o := range r.Out {
			pairs[i] = [2]int{r.In[0], o}
		}
	case len(r.Out) == 1 && len(r.In) > 1:
		pairs = make([][2]int, len(r.In))
		for i, in := range r.In {
			pairs[i] = [2]int{in, r.Out[0]}
		}
	case len(r.In) == len(r.Out):
		pairs = make([][2]int, len(r.In))
		for i := range r.In {
			pairs[i] = [2]int{r.In[i], r.Out[i]}
		}
	default:
		return nil, fmt.Errorf("route in=%v out=%v: sequence lengths must match or one side must be scalar", r.In, r.Out)
	}

	gain := r.Gain
	if len(gain) == 0 {
		gain = floatList{1.0}
	}

	entries := make([]routeEntry, len(pairs))
	for i, p := range pairs {
		var g float64
		switch {
		case len(gain) == 1:
			g = gain[0]
		case len(gain) == len(pairs):
			g = gain[i]
		default:
			return nil, fmt.Errorf("route in=%v out=%v gain=%v: gain must be scalar or match the %d expanded route(s)", r.In, r.Out, r.Gain, len(pairs))
		}
		entries[i] = routeEntry{In: p[0], Out: p[1], Gain: g}
	}
	return entries, nil
}

// config is the JSON routing/IR description cmd/upolsinfo loads.
type config struct {
	NumInputs    int         `json:"numInputs"`
	NumOutputs   int         `json:"numOutputs"`
	BlockLength  int         `json:"blockLength"`
	MaxFilterLen int         `json:"maxFilterLen"`
	MaxFilters   int         `json:"maxFilters"`
	Alignment    int         `json:"alignment"`
	FFTBackend   string      `json:"fftBackend"`
	IRLibrary    string      `json:"irLibrary"`
	Routes       []routeSpec `json:"routes"`
}
