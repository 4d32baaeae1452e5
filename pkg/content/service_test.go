package content

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(store Store) *Service {
	return NewService(store, WithClock(func() time.Time { return fixedNow }))
}

func newBunStore(t *testing.T) *BunStore {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	sqldb, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := NewBunStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store
}

var storeFactories = map[string]func(t *testing.T) Store{
	"memory": func(*testing.T) Store { return NewMemoryStore() },
	"bun":    func(t *testing.T) Store { return newBunStore(t) },
}

var sectionCmp = cmpopts.IgnoreFields(Section{}, "BaseModel", "CreatedAt", "UpdatedAt")

func TestCreateThenLoadRoundTrip(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			svc := newService(store)
			ctx := context.Background()
			pageID := uuid.New()

			data := map[string]any{
				"title":  "Welcome",
				"images": []any{map[string]any{"image": "a.jpg", "alt": ""}},
				"price":  float64(12.5),
				"show":   true,
			}
			res, err := svc.CreateContent(ctx, pageID, "hero", data, true, 2)
			if err != nil {
				t.Fatalf("CreateContent: %v", err)
			}
			if !res.Created || res.Section.ID == uuid.Nil {
				t.Fatalf("expected created section with id, got %+v", res)
			}

			loaded, err := svc.Get(ctx, res.Section.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			want := Section{ID: res.Section.ID, PageID: pageID, SectionType: "hero", OrderIndex: 2, Published: true, Data: data}
			if diff := cmp.Diff(want, loaded, sectionCmp); diff != "" {
				t.Fatalf("loaded mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateContent(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			svc := newService(factory(t))
			ctx := context.Background()

			created, err := svc.CreateContent(ctx, uuid.New(), "faq", map[string]any{"title": "Old"}, false, 0)
			if err != nil {
				t.Fatalf("CreateContent: %v", err)
			}
			updated, err := svc.UpdateContent(ctx, created.Section.ID, map[string]any{"title": "New"}, true, 3)
			if err != nil {
				t.Fatalf("UpdateContent: %v", err)
			}
			if updated.Created {
				t.Fatal("update must not report created")
			}
			loaded, _ := svc.Get(ctx, created.Section.ID)
			if loaded.Data["title"] != "New" || !loaded.Published || loaded.OrderIndex != 3 {
				t.Fatalf("unexpected section after update: %+v", loaded)
			}
			if loaded.SectionType != "faq" {
				t.Fatalf("update must keep section type, got %q", loaded.SectionType)
			}
		})
	}
}

func TestUpdateMissingSection(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			svc := newService(factory(t))
			_, err := svc.UpdateContent(context.Background(), uuid.New(), map[string]any{}, false, 0)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
				t.Fatalf("expected command category, got %v", err)
			}
		})
	}
}

func TestCommandValidation(t *testing.T) {
	svc := newService(NewMemoryStore())
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
	}{
		{"missing page", func() error {
			_, err := svc.CreateContent(ctx, uuid.Nil, "hero", map[string]any{}, false, 0)
			return err
		}},
		{"missing type", func() error {
			_, err := svc.CreateContent(ctx, uuid.New(), "", map[string]any{}, false, 0)
			return err
		}},
		{"nil data", func() error {
			_, err := svc.CreateContent(ctx, uuid.New(), "hero", nil, false, 0)
			return err
		}},
		{"negative order", func() error {
			_, err := svc.CreateContent(ctx, uuid.New(), "hero", map[string]any{}, false, -1)
			return err
		}},
		{"update missing id", func() error {
			_, err := svc.UpdateContent(ctx, uuid.Nil, map[string]any{}, false, 0)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
		})
	}
}

func TestStoreIsolatesCallerData(t *testing.T) {
	svc := newService(NewMemoryStore())
	ctx := context.Background()

	data := map[string]any{"items": []any{"a"}}
	res, err := svc.CreateContent(ctx, uuid.New(), "list", data, false, 0)
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}
	data["items"].([]any)[0] = "mutated"
	res.Section.Data["items"] = nil

	loaded, _ := svc.Get(ctx, res.Section.ID)
	if diff := cmp.Diff([]any{"a"}, loaded.Data["items"]); diff != "" {
		t.Fatalf("store data leaked (-want +got):\n%s", diff)
	}
}

func TestListByPageOrdersByIndex(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			svc := newService(store)
			ctx := context.Background()
			pageID := uuid.New()

			for i, typeID := range []string{"faq", "hero", "gallery"} {
				order := []int{2, 0, 1}[i]
				if _, err := svc.CreateContent(ctx, pageID, typeID, map[string]any{}, false, order); err != nil {
					t.Fatalf("CreateContent: %v", err)
				}
			}
			if _, err := svc.CreateContent(ctx, uuid.New(), "other", map[string]any{}, false, 0); err != nil {
				t.Fatalf("CreateContent: %v", err)
			}

			sections, err := store.ListByPage(ctx, pageID)
			if err != nil {
				t.Fatalf("ListByPage: %v", err)
			}
			got := make([]string, 0, len(sections))
			for _, s := range sections {
				got = append(got, s.SectionType)
			}
			if diff := cmp.Diff([]string{"hero", "gallery", "faq"}, got); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeleteSection(t *testing.T) {
	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			svc := newService(store)
			ctx := context.Background()

			res, _ := svc.CreateContent(ctx, uuid.New(), "hero", map[string]any{}, false, 0)
			if err := store.Delete(ctx, res.Section.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Get(ctx, res.Section.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := store.Delete(ctx, res.Section.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	}
}
