package carryover

import (
	"path/filepath"
	"testing"

	"github.com/fstree/crawld/internal/model"
)

func TestSpillAndLookup(t *testing.T) {
	carry := model.NewReindexCarryover()
	carry.File["/data/a.txt"] = model.TagPair{Tag: "important", TagCustom: "project-x"}
	carry.Directory["/data"] = model.TagPair{Tag: "archived"}

	path := filepath.Join(t.TempDir(), "carryover.db")
	store, err := Spill(path, carry)
	if err != nil {
		t.Fatalf("Spill() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	tags, ok := store.LookupFile("/data/a.txt")
	if !ok {
		t.Fatal("LookupFile(/data/a.txt) found = false, want true")
	}
	if tags.Tag != "important" || tags.TagCustom != "project-x" {
		t.Errorf("LookupFile(/data/a.txt) = %+v, want {important project-x}", tags)
	}

	if _, ok := store.LookupFile("/data/missing.txt"); ok {
		t.Error("LookupFile(missing) found = true, want false")
	}

	dirTags, ok := store.LookupDirectory("/data")
	if !ok || dirTags.Tag != "archived" {
		t.Errorf("LookupDirectory(/data) = %+v, %v, want {archived ...}, true", dirTags, ok)
	}
}

func TestSpillEmptyCarryoverDisabled(t *testing.T) {
	carry := model.NewReindexCarryover()
	path := filepath.Join(t.TempDir(), "carryover.db")

	store, err := Spill(path, carry)
	if err != nil {
		t.Fatalf("Spill() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, ok := store.LookupFile("/anything"); ok {
		t.Error("LookupFile on an empty carryover found = true, want false")
	}
}
