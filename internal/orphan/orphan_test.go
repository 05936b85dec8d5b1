package orphan

import (
	"reflect"
	"testing"

	"github.com/starford/inkwell/internal/refs"
	"github.com/starford/inkwell/internal/storage"
	"github.com/starford/inkwell/internal/testutil"
)

var dirs = []string{"References", "Daily", "Drafts"}

func setup(t *testing.T) (*Detector, *storage.FS) {
	t.Helper()
	root, store := testutil.TestVault(t)
	testutil.WriteFiles(t, root, map[string]string{
		"Attachments/used.png":    "u",
		"Attachments/also.png":    "a",
		"Attachments/orphan2.png": "o",
		"Attachments/orphan1.png": "o",
		"References/n.md":         "![[used.png]]\n",
		"Daily/d.md":              "![x](../Attachments/also.png)\n",
	})
	return NewDetector(storage.NewDiskAttachments(store, "Attachments"), refs.NewScanner(store, nil)), store
}

func TestFind_Idempotent(t *testing.T) {
	d, _ := setup(t)
	first, err := d.Find(dirs)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Find(dirs)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"orphan1.png", "orphan2.png"}
	if !reflect.DeepEqual(first.Orphans, want) || !reflect.DeepEqual(second.Orphans, first.Orphans) {
		t.Errorf("first %v, second %v", first.Orphans, second.Orphans)
	}
}

func TestDelete_RequiresApproval(t *testing.T) {
	d, store := setup(t)
	rep, _ := d.Find(dirs)

	var asked []string
	none := d.Delete(rep.Orphans, func(list []string) bool { asked = list; return false })
	if len(none.Deleted) != 0 || !reflect.DeepEqual(asked, rep.Orphans) {
		t.Errorf("declined delete = %+v, asked %v", none, asked)
	}
	if !store.Exists("Attachments/orphan1.png") {
		t.Fatal("deleted without approval")
	}

	done := d.Delete(rep.Orphans, func([]string) bool { return true })
	if !reflect.DeepEqual(done.Deleted, rep.Orphans) {
		t.Errorf("deleted = %v", done.Deleted)
	}
	if store.Exists("Attachments/orphan1.png") || !store.Exists("Attachments/used.png") {
		t.Error("wrong files deleted")
	}
	if again, _ := d.Find(dirs); len(again.Orphans) != 0 {
		t.Errorf("orphans after delete = %v", again.Orphans)
	}
}
