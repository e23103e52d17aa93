package reconcile

import (
	"reflect"
	"testing"
)

func TestImages_UnknownIDIsNoOp(t *testing.T) {
	// Deleting an id that belongs to no image of this post must change nothing.
	got := Images([]int64{1, 2, 3}, ImageInstructions{DeleteIDs: []int64{99}})
	if len(got.ToDelete) != 0 {
		t.Errorf("ToDelete = %v, want empty", got.ToDelete)
	}
}

func TestImages_FiltersAndDedupes(t *testing.T) {
	got := Images([]int64{1, 2, 3}, ImageInstructions{DeleteIDs: []int64{3, 99, 1, 3}})
	want := []int64{3, 1}
	if !reflect.DeepEqual(got.ToDelete, want) {
		t.Errorf("ToDelete = %v, want %v", got.ToDelete, want)
	}
}

func TestImages_KeepIDsNotApplied(t *testing.T) {
	// keepImageIds never drives deletion by exclusion: an image absent from
	// KeepIDs but also absent from DeleteIDs stays.
	got := Images([]int64{1, 2}, ImageInstructions{KeepIDs: []int64{1}})
	if len(got.ToDelete) != 0 {
		t.Errorf("ToDelete = %v, want empty — keep list must not imply deletion", got.ToDelete)
	}
}

func TestCodes_EditScenario(t *testing.T) {
	// Post currently has code rows 11 and 12. Delete 11, rewrite 12 to
	// "x=1", insert "y=2" — afterwards exactly rows 12 (updated) and the new
	// one exist.
	got := Codes([]int64{11, 12}, CodeInstructions{
		DeleteIDs: []int64{11},
		Updates:   []CodeUpdate{{ID: 12, Code: "x=1"}},
		New:       []string{"y=2"},
	})

	if !reflect.DeepEqual(got.ToDelete, []int64{11}) {
		t.Errorf("ToDelete = %v, want [11]", got.ToDelete)
	}
	if !reflect.DeepEqual(got.ToUpdate, []CodeUpdate{{ID: 12, Code: "x=1"}}) {
		t.Errorf("ToUpdate = %v, want [{12 x=1}]", got.ToUpdate)
	}
	if !reflect.DeepEqual(got.ToInsert, []string{"y=2"}) {
		t.Errorf("ToInsert = %v, want [y=2]", got.ToInsert)
	}
}

func TestCodes_BlankUpdateIsSkippedNotDelete(t *testing.T) {
	got := Codes([]int64{12}, CodeInstructions{
		Updates: []CodeUpdate{{ID: 12, Code: "   "}},
	})
	if len(got.ToUpdate) != 0 {
		t.Errorf("ToUpdate = %v, want empty", got.ToUpdate)
	}
	if len(got.ToDelete) != 0 {
		t.Errorf("ToDelete = %v, want empty — blank update must not delete", got.ToDelete)
	}
}

func TestCodes_UpdateOfDeletedIDDropped(t *testing.T) {
	// Delete and update of the same id in one edit: the delete wins, the
	// update affects zero rows and is not counted.
	got := Codes([]int64{12}, CodeInstructions{
		DeleteIDs: []int64{12},
		Updates:   []CodeUpdate{{ID: 12, Code: "x=1"}},
	})
	if !reflect.DeepEqual(got.ToDelete, []int64{12}) {
		t.Errorf("ToDelete = %v, want [12]", got.ToDelete)
	}
	if len(got.ToUpdate) != 0 {
		t.Errorf("ToUpdate = %v, want empty", got.ToUpdate)
	}
}

func TestCodes_UpdateOfUnknownIDDropped(t *testing.T) {
	got := Codes([]int64{12}, CodeInstructions{
		Updates: []CodeUpdate{{ID: 999, Code: "x=1"}},
	})
	if len(got.ToUpdate) != 0 {
		t.Errorf("ToUpdate = %v, want empty", got.ToUpdate)
	}
}

func TestCodes_TrimsTexts(t *testing.T) {
	got := Codes([]int64{12}, CodeInstructions{
		Updates: []CodeUpdate{{ID: 12, Code: "  x=1  "}},
		New:     []string{"  y=2\n"},
	})
	if got.ToUpdate[0].Code != "x=1" {
		t.Errorf("update text = %q, want trimmed", got.ToUpdate[0].Code)
	}
	if got.ToInsert[0] != "y=2" {
		t.Errorf("insert text = %q, want trimmed", got.ToInsert[0])
	}
}

func TestNonBlank_DropsBlankCodes(t *testing.T) {
	// createPost(codes=["print(1)", "  "]) stores exactly one row.
	got := NonBlank([]string{"print(1)", "  "})
	if !reflect.DeepEqual(got, []string{"print(1)"}) {
		t.Errorf("NonBlank = %v, want [print(1)]", got)
	}
}

func TestNonBlank_Empty(t *testing.T) {
	if got := NonBlank(nil); len(got) != 0 {
		t.Errorf("NonBlank(nil) = %v, want empty", got)
	}
}
