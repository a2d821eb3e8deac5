// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// SoftDelete marks an entity as logically removed. Entities are never
// physically removed while something still references them.
type SoftDelete struct {
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsActive reports whether the entity has not been soft-deleted.
func (s SoftDelete) IsActive() bool {
	return s.DeletedAt == nil
}

// MarkDeleted stamps the deletion time. Marking an already deleted entity keeps
// the original timestamp.
func (s *SoftDelete) MarkDeleted(now time.Time) {
	if s.DeletedAt != nil {
		return
	}
	deletedAt := now.UTC()
	s.DeletedAt = &deletedAt
}

// Activity is implemented by every soft-deletable entity.
type Activity interface {
	IsActive() bool
}

// Active returns the items that have not been soft-deleted, keeping their order.
// Every query path filters through this predicate.
func Active[T Activity](items []T) []T {
	active := make([]T, 0, len(items))
	for _, item := range items {
		if item.IsActive() {
			active = append(active, item)
		}
	}
	return active
}
