// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"sort"
	"time"
)

// RoomType says whether a meeting needs a physical room.
type RoomType string

const (
	RoomTypeVirtual  RoomType = "virtual"
	RoomTypePhysical RoomType = "physical"
)

// Valid reports whether the room type is known.
func (t RoomType) Valid() bool {
	return t == RoomTypeVirtual || t == RoomTypePhysical
}

// Known meeting room features.
const (
	FeatureAirConditioning = "air_conditioning"
	FeatureComputers       = "computers"
	FeatureProjector       = "projector"
	FeatureWindows         = "windows"
	FeatureChairs          = "chairs"
	FeatureTables          = "tables"
)

// Features maps a feature name to the number of units available or required.
type Features map[string]int

// Validate rejects negative counts.
func (f Features) Validate() error {
	for _, name := range f.Names() {
		if f[name] < 0 {
			return fmt.Errorf("feature %q has negative count %d", name, f[name])
		}
	}
	return nil
}

// Names returns the feature names sorted alphabetically.
func (f Features) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Building groups meeting rooms.
type Building struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SoftDelete
}

// CandidateRoom is a meeting room the negotiation may book. It is read-only
// to the engine.
type CandidateRoom struct {
	ID          string    `json:"id"`
	BuildingID  string    `json:"building_id"`
	Name        string    `json:"name"`
	CalendarID  string    `json:"calendar_id"`
	Capacity    int       `json:"capacity"`
	Features    Features  `json:"features"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	SoftDelete
}

// Satisfies reports whether the room offers at least the requested count of
// every required feature. A missing feature counts as zero.
func (r CandidateRoom) Satisfies(required Features) bool {
	for name, count := range required {
		if r.Features[name] < count {
			return false
		}
	}
	return true
}

// MissingFeatures returns, for every deficient feature, how many units the
// room lacks. Features the room fully satisfies are omitted.
func (r CandidateRoom) MissingFeatures(required Features) Features {
	missing := Features{}
	for name, count := range required {
		if gap := count - r.Features[name]; gap > 0 {
			missing[name] = gap
		}
	}
	return missing
}

// RoomFilter selects candidate rooms from the catalog.
type RoomFilter struct {
	BuildingID  string
	MinCapacity int
}

// Matches reports whether the room is active and passes the filter.
func (f RoomFilter) Matches(r CandidateRoom) bool {
	return r.IsActive() && r.BuildingID == f.BuildingID && r.Capacity >= f.MinCapacity
}
