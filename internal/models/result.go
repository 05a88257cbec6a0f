package models

import "fmt"

type Drop struct {
	Bucket Bucket `json:"bucket"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type DecodedResult struct {
	Best    []Itinerary `json:"best"`
	Other   []Itinerary `json:"other"`
	Dropped int         `json:"dropped"`
	Drops   []Drop      `json:"drops,omitempty"`
}

// All returns best followed by other.
func (r *DecodedResult) All() []Itinerary {
	all := make([]Itinerary, 0, len(r.Best)+len(r.Other))
	all = append(all, r.Best...)
	return append(all, r.Other...)
}

// Loss reports skipped entries as a PartialDecodeLoss. A nil return means every
// entry decoded. The result itself stays usable either way.
func (r *DecodedResult) Loss() error {
	if r.Dropped == 0 {
		return nil
	}
	return &PartialDecodeLoss{Dropped: r.Dropped, Drops: r.Drops}
}

type PartialDecodeLoss struct {
	Dropped int
	Drops   []Drop
}

func (e *PartialDecodeLoss) Error() string {
	return fmt.Sprintf("partial decode loss: %d itinerary entries skipped", e.Dropped)
}
