package recur

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sagebudget/sage/internal/model"
)

// User-owned field defaults applied to brand-new patterns. Once a user has
// touched these fields they are never overwritten by recomputation.
const (
	DefaultReminderEnabled    = true
	DefaultReminderDaysBefore = 2
)

// Reconcile merges freshly computed drafts for one merchant group with the
// patterns previously persisted for that group, returning the final set to
// persist.
//
// A draft matches a persisted pattern when their expected amounts fall in
// the same tolerance band used for clustering. Matched pairs keep the
// persisted identity and user-owned fields and take every computed field
// from the draft. Unmatched drafts become new records with documented
// defaults. Persisted patterns with no matching draft are retained, with
// liveness re-evaluated as of the given time; deletion is an explicit user
// action outside the engine.
func (d *Detector) Reconcile(drafts, persisted []model.RecurringPattern, asOf time.Time) []model.RecurringPattern {
	claimed := make(map[string]model.RecurringPattern, len(persisted))

	var newDrafts []model.RecurringPattern
	for _, draft := range drafts {
		match := d.matchPersisted(draft, persisted)
		if match == nil {
			newDrafts = append(newDrafts, draft)
			continue
		}

		prev, conflict := claimed[match.ID]
		if !conflict {
			claimed[match.ID] = draft
			continue
		}

		// Two drafts matching one persisted pattern means the caller fed us
		// overlapping clusters. Keep the better-evidenced draft and treat
		// the other as new rather than dropping data.
		slog.Warn("Multiple drafts matched one persisted pattern",
			"merchant_group_id", draft.MerchantGroupID,
			"pattern_id", match.ID,
			"kept_occurrences", max(prev.OccurrenceCount, draft.OccurrenceCount),
			"demoted_occurrences", min(prev.OccurrenceCount, draft.OccurrenceCount))
		if draft.OccurrenceCount > prev.OccurrenceCount {
			claimed[match.ID] = draft
			newDrafts = append(newDrafts, prev)
		} else {
			newDrafts = append(newDrafts, draft)
		}
	}

	result := make([]model.RecurringPattern, 0, len(persisted)+len(newDrafts))
	for _, existing := range persisted {
		draft, matched := claimed[existing.ID]
		if !matched {
			// No fresh evidence: keep the record addressable but let
			// liveness lapse naturally.
			stale := existing
			stale.IsActive = isActive(stale.LastOccurrenceDate, approximateDays(stale.Frequency, stale.Interval), asOf, d.cfg)
			result = append(result, stale)
			continue
		}
		result = append(result, mergePattern(existing, draft))
	}

	for _, draft := range newDrafts {
		fresh := draft
		fresh.ID = uuid.NewString()
		fresh.IsConfirmed = false
		fresh.Notes = ""
		fresh.ReminderEnabled = DefaultReminderEnabled
		fresh.ReminderDaysBefore = DefaultReminderDaysBefore
		result = append(result, fresh)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type < result[j].Type
		}
		return result[i].ExpectedAmount < result[j].ExpectedAmount
	})
	return result
}

// matchPersisted finds the persisted pattern of the same type whose expected
// amount is nearest to the draft's and within tolerance.
func (d *Detector) matchPersisted(draft model.RecurringPattern, persisted []model.RecurringPattern) *model.RecurringPattern {
	draftCents := toCents(draft.ExpectedAmount)
	best := -1
	var bestDist int64
	for i := range persisted {
		if persisted[i].Type != draft.Type {
			continue
		}
		cents := toCents(persisted[i].ExpectedAmount)
		if !withinTolerance(draftCents, cents, d.cfg.AmountTolerance) {
			continue
		}
		dist := draftCents - cents
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	if best == -1 {
		return nil
	}
	return &persisted[best]
}

// mergePattern replaces all computed fields with the draft's values while
// carrying identity and user-owned fields over from the persisted record.
func mergePattern(existing, draft model.RecurringPattern) model.RecurringPattern {
	merged := draft
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.IsConfirmed = existing.IsConfirmed
	merged.Notes = existing.Notes
	merged.ReminderEnabled = existing.ReminderEnabled
	merged.ReminderDaysBefore = existing.ReminderDaysBefore
	return merged
}
