// Package reconcile computes the keep/add/delete diff an edit applies to a
// child collection (post images, post codes, and the comment equivalents).
//
// The functions here are pure: they take the collection's current state and
// the client's instructions and return the exact sets to delete, update, and
// insert. Nothing in this package touches the database — the repository
// loads current rows inside the edit transaction, calls these functions, and
// applies the three sets. That keeps the diff logic testable with plain
// slices and keeps every apply step operating on rows as they exist at
// transaction time.
package reconcile

import "strings"

// ImageInstructions is the client's intent for an image collection.
//
// KeepIDs is accepted for wire compatibility but never used to compute a
// deletion set by exclusion: an image is removed only when its id appears in
// DeleteIDs. Deleting by omission would destroy images whenever a client
// forgets the field, so the explicit list wins.
type ImageInstructions struct {
	KeepIDs   []int64
	DeleteIDs []int64
}

// ImageChanges is the computed diff for images. New images are handled by
// the caller (they need uploads before ids exist), so only deletions appear.
type ImageChanges struct {
	ToDelete []int64
}

// Images filters DeleteIDs down to ids that actually belong to the
// collection. Unknown ids are dropped silently — deleting them is a no-op,
// which makes retried edits idempotent and stops one post's edit from ever
// touching another post's rows. Duplicates are collapsed.
func Images(currentIDs []int64, instr ImageInstructions) ImageChanges {
	return ImageChanges{ToDelete: intersect(instr.DeleteIDs, currentIDs)}
}

// CodeUpdate is an in-place rewrite of one existing code block.
type CodeUpdate struct {
	ID   int64
	Code string
}

// CodeInstructions is the client's intent for a code collection.
type CodeInstructions struct {
	DeleteIDs []int64
	Updates   []CodeUpdate
	New       []string
}

// CodeChanges is the computed diff for code blocks.
type CodeChanges struct {
	ToDelete []int64
	ToUpdate []CodeUpdate
	ToInsert []string
}

// Codes computes the code-block diff:
//
//   - deletions are filtered to existing ids, like Images
//   - updates apply only to ids that exist and are not being deleted in the
//     same edit; a blank new text (after trimming) skips the update rather
//     than deleting the row
//   - inserts drop strings that are blank after trimming
//
// Update and insert texts come back trimmed.
func Codes(currentIDs []int64, instr CodeInstructions) CodeChanges {
	ch := CodeChanges{ToDelete: intersect(instr.DeleteIDs, currentIDs)}

	deleted := make(map[int64]bool, len(ch.ToDelete))
	for _, id := range ch.ToDelete {
		deleted[id] = true
	}
	existing := make(map[int64]bool, len(currentIDs))
	for _, id := range currentIDs {
		existing[id] = true
	}

	for _, u := range instr.Updates {
		text := strings.TrimSpace(u.Code)
		if text == "" {
			continue // blank update is a skip, never a delete
		}
		if !existing[u.ID] || deleted[u.ID] {
			continue
		}
		ch.ToUpdate = append(ch.ToUpdate, CodeUpdate{ID: u.ID, Code: text})
	}

	for _, code := range instr.New {
		if text := strings.TrimSpace(code); text != "" {
			ch.ToInsert = append(ch.ToInsert, text)
		}
	}

	return ch
}

// NonBlank trims every string and drops the blank ones. Create paths use it
// so a post created with codes ["print(1)", "  "] stores exactly one row.
func NonBlank(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if text := strings.TrimSpace(c); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// intersect returns the ids from want that appear in have, in want's order,
// without duplicates.
func intersect(want, have []int64) []int64 {
	haveSet := make(map[int64]bool, len(have))
	for _, id := range have {
		haveSet[id] = true
	}
	var out []int64
	seen := make(map[int64]bool, len(want))
	for _, id := range want {
		if haveSet[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}
