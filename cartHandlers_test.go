package main

import (
	"errors"
	"testing"
)

type testDraft struct {
	Lines int
}

// fakeDraftStore records whether each call ran while the lock was held.
type fakeDraftStore struct {
	held      bool
	draft     *testDraft
	storeErr  error
	removeErr error
	removed   bool
	logged    []string
	outside   []string
}

func (f *fakeDraftStore) lock(fn func() error) error {
	f.held = true
	defer func() { f.held = false }()
	return fn()
}

func (f *fakeDraftStore) load() (*testDraft, error) {
	if !f.held {
		f.outside = append(f.outside, "load")
	}
	copied := *f.draft
	return &copied, nil
}

func (f *fakeDraftStore) writer() draftWriter[testDraft] {
	return draftWriter[testDraft]{
		store: func(draft *testDraft) error {
			if !f.held {
				f.outside = append(f.outside, "store")
			}
			if f.storeErr != nil {
				return f.storeErr
			}
			f.draft = draft
			return nil
		},
		remove: func() error {
			if !f.held {
				f.outside = append(f.outside, "remove")
			}
			if f.removeErr != nil {
				return f.removeErr
			}
			f.removed = true
			f.draft = &testDraft{}
			return nil
		},
		logError: func(context string, err error) { f.logged = append(f.logged, context) },
	}
}

// saveOnce empties the draft like a cart finalize and counts saved records.
func saveOnce(saves *int) func(draft *testDraft) (int, error) {
	return func(draft *testDraft) (int, error) {
		if draft.Lines == 0 {
			return 0, errors.New("cart is empty")
		}
		*saves++
		draft.Lines = 0
		return *saves, nil
	}
}

func TestFinalizeUnderLockWritesDraftInsideLock(t *testing.T) {
	store := &fakeDraftStore{draft: &testDraft{Lines: 2}}
	saves := 0

	id, err := finalizeUnderLock(store.lock, store.load, store.writer(), saveOnce(&saves))
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if id != 1 || store.draft.Lines != 0 {
		t.Fatalf("id=%d stored lines=%d", id, store.draft.Lines)
	}
	if len(store.outside) != 0 {
		t.Fatalf("draft touched outside the lock: %v", store.outside)
	}

	// a second submission reads the emptied draft and saves nothing
	if _, err := finalizeUnderLock(store.lock, store.load, store.writer(), saveOnce(&saves)); err == nil {
		t.Fatalf("second finalize should fail on the empty cart")
	}
	if saves != 1 {
		t.Fatalf("saves = %d, want 1", saves)
	}
}

func TestFinalizeUnderLockSucceedsWhenDraftStoreFails(t *testing.T) {
	store := &fakeDraftStore{draft: &testDraft{Lines: 2}, storeErr: errors.New("redis down")}
	saves := 0

	id, err := finalizeUnderLock(store.lock, store.load, store.writer(), saveOnce(&saves))
	if err != nil {
		t.Fatalf("saved record reported as failure: %v", err)
	}
	if id != 1 || !store.removed {
		t.Fatalf("id=%d removed=%v", id, store.removed)
	}
	if len(store.logged) != 1 || store.logged[0] != "store finalized draft" {
		t.Fatalf("logged = %v", store.logged)
	}

	// the reviewed draft is gone, so a retry cannot save it again
	store.storeErr = nil
	if _, err := finalizeUnderLock(store.lock, store.load, store.writer(), saveOnce(&saves)); err == nil {
		t.Fatalf("retry should fail on the empty cart")
	}
	if saves != 1 {
		t.Fatalf("saves = %d, want 1", saves)
	}
}

func TestFinalizeUnderLockKeepsDraftWhenSaveFails(t *testing.T) {
	store := &fakeDraftStore{draft: &testDraft{Lines: 2}}
	failing := func(draft *testDraft) (int, error) { return 0, errors.New("db down") }

	if _, err := finalizeUnderLock(store.lock, store.load, store.writer(), failing); err == nil {
		t.Fatalf("expected the save error")
	}
	if store.draft.Lines != 2 || store.removed {
		t.Fatalf("draft changed after a failed save: %+v removed=%v", store.draft, store.removed)
	}
}

func TestFinalizeUnderLockReturnsBusy(t *testing.T) {
	store := &fakeDraftStore{draft: &testDraft{Lines: 2}}
	busy := errors.New("busy")
	saves := 0

	_, err := finalizeUnderLock(func(fn func() error) error { return busy }, store.load, store.writer(), saveOnce(&saves))
	if !errors.Is(err, busy) || saves != 0 {
		t.Fatalf("err=%v saves=%d", err, saves)
	}
}
