package reconcile

import (
	"slices"

	"github.com/angelmondragon/discountsync/pkg/types"
)

// State is a point-in-time copy of the store.
type State struct {
	Scope        int64              `json:"scope"`
	HasScope     bool               `json:"has_scope"`
	Items        []types.Item       `json:"items"`
	Discounts    []types.Discount   `json:"discounts"`
	Assignments  []types.Assignment `json:"assignments"`
	Loading      bool               `json:"loading"`
	Status       string             `json:"status,omitempty"`
	Error        string             `json:"error,omitempty"`
	LoadToken    uint64             `json:"load_token"`
	RefreshToken uint64             `json:"refresh_token"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Items = cloneOrEmpty(s.Items)
	out.Assignments = cloneOrEmpty(s.Assignments)
	out.Discounts = make([]types.Discount, len(s.Discounts))
	for i, d := range s.Discounts {
		out.Discounts[i] = d.Clone()
	}
	return out
}

func (s *State) clearCollections() {
	s.Items = nil
	s.Discounts = nil
	s.Assignments = nil
}

func cloneOrEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}
