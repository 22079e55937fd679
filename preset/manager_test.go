package preset_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"status-viewer/catalog"
	"status-viewer/preset"
	"status-viewer/storage"
)

func newManager(t *testing.T, store storage.Store) *preset.Manager {
	t.Helper()
	pm, err := preset.NewManager(context.Background(), store)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return pm
}

func TestNewManagerMissingKey(t *testing.T) {
	pm := newManager(t, storage.NewMemoryStore())
	snap := pm.List()
	if len(snap.Presets) != 0 {
		t.Fatalf("expected empty presets, got %d", len(snap.Presets))
	}
	if snap.Presets == nil {
		t.Fatal("expected non-nil empty list")
	}
}

func TestSaveAndReload(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	pm := newManager(t, store)

	f := catalog.FilterState{Search: "not", Category: catalog.Category4xx}
	idx, err := pm.Save(ctx, "missing pages", f)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}

	// Reload from disk.
	pm2 := newManager(t, store)
	got := pm2.List().Presets
	want := []preset.Preset{{Name: "missing pages", Filter: f}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reloaded presets mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistedFormat(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	pm := newManager(t, store)
	pm.Save(ctx, "errors", catalog.FilterState{Search: "", Category: catalog.Category5xx})

	data, err := store.Get(ctx, preset.StorageKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := `[{"name":"errors","filter":{"search":"","category":"5xx"}}]`
	if string(data) != want {
		t.Fatalf("unexpected stored value:\n got %s\nwant %s", data, want)
	}
}

func TestLoadsExistingSavedFilters(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.Put(ctx, preset.StorageKey, []byte(`[{"name":"teapots","filter":{"search":"tea","category":"all"}}]`))

	pm := newManager(t, store)
	f, err := pm.Apply(0)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if f.Search != "tea" || f.Category != catalog.CategoryAll {
		t.Fatalf("unexpected filter %+v", f)
	}
}

func TestSaveEmptyNameIsRejected(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	pm := newManager(t, store)

	if _, err := pm.Save(ctx, "", catalog.DefaultFilter()); !errors.Is(err, preset.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if len(pm.List().Presets) != 0 {
		t.Fatal("empty name must not add a preset")
	}
	if _, err := store.Get(ctx, preset.StorageKey); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("empty name must not write storage, got %v", err)
	}
}

func TestDuplicateNamesAllowed(t *testing.T) {
	ctx := context.Background()
	pm := newManager(t, storage.NewMemoryStore())
	pm.Save(ctx, "same", catalog.FilterState{Search: "a", Category: catalog.CategoryAll})
	pm.Save(ctx, "same", catalog.FilterState{Search: "b", Category: catalog.CategoryAll})

	presets := pm.List().Presets
	if len(presets) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(presets))
	}
	if presets[0].Filter.Search != "a" || presets[1].Filter.Search != "b" {
		t.Fatalf("unexpected order: %+v", presets)
	}
}

func TestSaveThenApplyIsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	pm := newManager(t, storage.NewMemoryStore())

	live := catalog.FilterState{Search: "server", Category: catalog.Category5xx}
	idx, _ := pm.Save(ctx, "server errors", live)

	live.Search = "changed"
	live.Category = catalog.Category1xx

	applied, err := pm.Apply(idx)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := catalog.FilterState{Search: "server", Category: catalog.Category5xx}
	if diff := cmp.Diff(want, applied); diff != "" {
		t.Fatalf("stored preset changed with live filter (-want +got):\n%s", diff)
	}

	applied.Search = "mutated after apply"
	again, _ := pm.Apply(idx)
	if again.Search != "server" {
		t.Fatalf("mutating an applied filter changed the preset: %+v", again)
	}

	snap := pm.List()
	snap.Presets[0].Name = "renamed"
	if pm.List().Presets[0].Name != "server errors" {
		t.Fatal("List exposed internal state")
	}
}

func TestApplyOutOfRange(t *testing.T) {
	pm := newManager(t, storage.NewMemoryStore())
	pm.Save(context.Background(), "one", catalog.DefaultFilter())
	for _, idx := range []int{-1, 1, 99} {
		if _, err := pm.Apply(idx); !errors.Is(err, preset.ErrNotFound) {
			t.Fatalf("Apply(%d): expected ErrNotFound, got %v", idx, err)
		}
	}
}

func TestDeleteShiftsIndices(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	pm := newManager(t, store)
	for _, name := range []string{"a", "b", "c"} {
		pm.Save(ctx, name, catalog.FilterState{Search: name, Category: catalog.CategoryAll})
	}

	if err := pm.Delete(ctx, 1, preset.Confirmed); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	presets := pm.List().Presets
	if len(presets) != 2 || presets[0].Name != "a" || presets[1].Name != "c" {
		t.Fatalf("unexpected presets after delete: %+v", presets)
	}
	f, _ := pm.Apply(1)
	if f.Search != "c" {
		t.Fatalf("index 1 should now be c, got %+v", f)
	}
	if _, err := pm.Apply(2); !errors.Is(err, preset.ErrNotFound) {
		t.Fatalf("old last index should be gone, got %v", err)
	}

	// Deletion is persisted.
	reloaded := newManager(t, store).List().Presets
	if len(reloaded) != 2 {
		t.Fatalf("expected 2 persisted presets, got %d", len(reloaded))
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	pm := newManager(t, storage.NewMemoryStore())
	pm.Save(ctx, "keep", catalog.DefaultFilter())

	if err := pm.Delete(ctx, 0, preset.Cancelled); !errors.Is(err, preset.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if len(pm.List().Presets) != 1 {
		t.Fatal("cancelled delete removed a preset")
	}
}

func TestDeleteOutOfRange(t *testing.T) {
	pm := newManager(t, storage.NewMemoryStore())
	if err := pm.Delete(context.Background(), 0, preset.Confirmed); !errors.Is(err, preset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStaleRevisionIsRejected(t *testing.T) {
	ctx := context.Background()
	pm := newManager(t, storage.NewMemoryStore())
	pm.Save(ctx, "a", catalog.FilterState{Search: "a", Category: catalog.CategoryAll})
	pm.Save(ctx, "b", catalog.FilterState{Search: "b", Category: catalog.CategoryAll})

	shown := pm.List()
	if err := pm.Delete(ctx, 0, preset.Confirmed, preset.AtRevision(shown.Revision)); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Index 1 of the displayed list no longer refers to "b".
	if _, err := pm.Apply(1, preset.AtRevision(shown.Revision)); !errors.Is(err, preset.ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if err := pm.Delete(ctx, 0, preset.Confirmed, preset.AtRevision(shown.Revision)); !errors.Is(err, preset.ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	f, err := pm.Apply(0, preset.AtRevision(pm.Revision()))
	if err != nil || f.Search != "b" {
		t.Fatalf("fresh revision should apply b, got %+v, %v", f, err)
	}
}

func TestMalformedStorageFailsFast(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.Put(ctx, preset.StorageKey, []byte("not-json"))

	if _, err := preset.NewManager(ctx, store); !errors.Is(err, storage.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestMalformedStorageReset(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.Put(ctx, preset.StorageKey, []byte(`{"presets":"wrong shape"}`))

	pm, err := preset.NewManager(ctx, store, preset.WithResetMalformed(true))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if len(pm.List().Presets) != 0 {
		t.Fatal("expected empty list after reset")
	}
	if _, err := pm.Save(ctx, "fresh", catalog.DefaultFilter()); err != nil {
		t.Fatalf("Save after reset: %v", err)
	}
}

type failingStore struct{ storage.Store }

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("disk full") }

func TestFailedWriteLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	pm := newManager(t, failingStore{storage.NewMemoryStore()})
	if _, err := pm.Save(ctx, "x", catalog.DefaultFilter()); err == nil {
		t.Fatal("expected write error")
	}
	snap := pm.List()
	if len(snap.Presets) != 0 || snap.Revision != 0 {
		t.Fatalf("failed save changed state: %+v", snap)
	}
}

func TestConcurrentSave(t *testing.T) {
	ctx := context.Background()
	pm := newManager(t, storage.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pm.Save(ctx, "p", catalog.DefaultFilter())
		}()
	}
	wg.Wait()
	if n := len(pm.List().Presets); n != 10 {
		t.Fatalf("expected 10 presets, got %d", n)
	}
	if rev := pm.Revision(); rev != 10 {
		t.Fatalf("expected revision 10, got %d", rev)
	}
}
