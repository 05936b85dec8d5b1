package attachfmt

import (
	"reflect"
	"testing"

	"github.com/starford/inkwell/internal/refs"
	"github.com/starford/inkwell/internal/storage"
	"github.com/starford/inkwell/internal/testutil"
)

var dirs = []string{"References", "Daily"}

func vault(t *testing.T, files map[string]string) (string, *storage.FS, *Formatter) {
	t.Helper()
	root, store := testutil.TestVault(t)
	testutil.WriteFiles(t, root, files)
	return root, store, New(store, storage.NewDiskAttachments(store, "Attachments"), dirs, nil)
}

func TestFormat_RenamesAndPreservesReferences(t *testing.T) {
	_, store, f := vault(t, map[string]string{
		"Attachments/Screenshot 1.png": "s",
		"Attachments/已命名.png":          "k",
		"References/健身.md":             "# 健身\nTopics: 健身\n这是截图 ![[Screenshot 1.png]]\n",
		"Daily/2026-10-14.md":          "see ![a](../Attachments/Screenshot%201.png)\nand ![[Screenshot 1.png|200]]\n",
	})
	scanner := refs.NewScanner(store, nil)
	before := scanner.Scan("Screenshot 1.png", dirs)

	rep, err := f.Format(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Items) != 1 {
		t.Fatalf("items = %+v", rep.Items)
	}
	it := rep.Items[0]
	if it.State != StateRenamed || it.NewName != "健身-截图.png" || it.Source != "References/健身.md" {
		t.Fatalf("item = %+v", it)
	}
	if !store.Exists("Attachments/健身-截图.png") || store.Exists("Attachments/Screenshot 1.png") {
		t.Error("attachment not renamed on disk")
	}

	after := scanner.Scan("健身-截图.png", dirs)
	if len(after.Refs) != len(before.Refs) || !reflect.DeepEqual(after.Documents(), before.Documents()) {
		t.Errorf("before %+v\nafter %+v", before.Refs, after.Refs)
	}
	if old := scanner.Scan("Screenshot 1.png", dirs); len(old.Refs) != 0 {
		t.Errorf("old name still referenced: %+v", old.Refs)
	}
}

func TestFormat_DryRunLeavesVault(t *testing.T) {
	root, _, f := vault(t, map[string]string{
		"Attachments/IMG_1.jpg": "i",
		"References/架构.md":      "主题: 架构\n示意图 ![[IMG_1.jpg]]\n",
	})
	before := testutil.Snapshot(t, root)

	rep, err := f.Format(true)
	if err != nil {
		t.Fatal(err)
	}
	if it := rep.Items[0]; it.State != StatePlanned || it.NewName != "架构-示意图.jpg" || len(it.Documents) != 1 || !it.Documents[0].Changed {
		t.Errorf("item = %+v", it)
	}
	if after := testutil.Snapshot(t, root); !reflect.DeepEqual(before, after) {
		t.Error("dry run changed the vault")
	}
}

func TestFormat_SkipsUnreferenced(t *testing.T) {
	_, store, f := vault(t, map[string]string{
		"Attachments/123.png": "a",
		"Attachments/456.png": "b",
		"References/a.md":     "Topics: 主题\nexample ![[456.png]]\n",
		"References/b.md":     "no refs",
	})
	rep, err := f.Format(false)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]Item{}
	for _, it := range rep.Items {
		got[it.Name] = it
	}
	if it := got["123.png"]; it.State != StateSkipped || it.Reason != "unreferenced" {
		t.Errorf("123.png = %+v", it)
	}
	if it := got["456.png"]; it.State != StateRenamed || it.NewName != "主题-example.png" {
		t.Errorf("456.png = %+v", it)
	}
	if !store.Exists("Attachments/123.png") {
		t.Error("unreferenced attachment touched")
	}
}

func TestFormat_ConflictTriesNextDocument(t *testing.T) {
	_, _, f := vault(t, map[string]string{
		"Attachments/Pasted image 1.png": "p",
		"Attachments/冲突-截图.png":          "taken",
		"References/a.md":                "Topics: 冲突\n截图 ![[Pasted image 1.png]]\n",
		"References/b.md":                "Topics: 备选\n截图 ![[Pasted image 1.png]]\n",
	})
	rep, err := f.Format(false)
	if err != nil {
		t.Fatal(err)
	}
	if it := rep.Items[0]; it.NewName != "备选-截图.png" || it.Source != "References/b.md" {
		t.Errorf("item = %+v", it)
	}
}

func TestFormat_NoUsableContextSkipped(t *testing.T) {
	_, store, f := vault(t, map[string]string{
		"Attachments/Pasted image 1.png": "p",
		"Attachments/冲突-截图.png":          "taken",
		"References/a.md":                "Topics: 冲突\n截图 ![[Pasted image 1.png]]\n",
	})
	rep, _ := f.Format(false)
	if it := rep.Items[0]; it.State != StateSkipped || it.Reason != "no usable context" {
		t.Errorf("item = %+v", it)
	}
	if !store.Exists("Attachments/Pasted image 1.png") {
		t.Error("attachment renamed despite conflict")
	}
}
