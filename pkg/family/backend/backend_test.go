package backend

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/kintree/pkg/config"
	errs "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// samplePeople is a small family with every optional field exercised and
// link sets in non-sorted order.
func samplePeople() []family.Person {
	return []family.Person{
		{ID: 3, Name: "Ana", BirthDate: family.Opt("1950"), Parents: []int{}, Children: []int{7, 5}},
		{ID: 5, Name: "Bea", Description: family.Opt("painter"), Parents: []int{3}, Children: []int{},
			Position: &family.Position{X: -100, Y: 200}},
		{ID: 7, Name: "Cy", Parents: []int{3}, Children: []int{}, Position: &family.Position{X: 100.5, Y: 200}},
	}
}

func roundTrip(t *testing.T, b family.Backend) {
	t.Helper()
	ctx := context.Background()

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on empty backend error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Load() on empty backend = %d people, want 0", len(got))
	}

	want := samplePeople()
	if err := b.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err = b.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	// A second save replaces, never appends.
	if err := b.Save(ctx, want[:1]); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err = b.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("Load() after overwrite = %+v, want only id 3", got)
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "nested", "data.json"))
	roundTrip(t, b)
}

func TestFileBackend_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileBackend(path).Load(context.Background()); err == nil {
		t.Error("Load() expected error for malformed file")
	}
}

func TestFileBackend_TrailingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	data := `[{"id":1,"name":"Ana","parents":[],"children":[]}] {"broken`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileBackend(path).Load(context.Background()); err == nil {
		t.Fatal("Load() expected error for data after the array")
	}

	store := family.NewStore(NewFileBackend(path))
	err := store.Load(context.Background())
	if !errs.Is(err, errs.ErrCodeStorageRead) {
		t.Fatalf("Store.Load() error = %v, want %s", err, errs.ErrCodeStorageRead)
	}
	if len(store.People()) != 0 {
		t.Errorf("People() = %v, want empty after failed load", store.People())
	}
}

func TestFileBackend_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := NewFileBackend(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
}

func TestFileBackend_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBackend(filepath.Join(dir, "data.json"))
	if err := b.Save(context.Background(), samplePeople()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "kintree.db"))
	if err != nil {
		t.Fatalf("NewSQLiteBackend() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })
	roundTrip(t, b)
}

func TestSQLiteBackend_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kintree.db")
	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Save(context.Background(), samplePeople()); err != nil {
		t.Fatal(err)
	}
	b.Close()

	b, err = NewSQLiteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	got, err := b.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, samplePeople()) {
		t.Errorf("Load() after reopen = %+v", got)
	}
}

func TestMongoDoc_Conversion(t *testing.T) {
	for i, p := range samplePeople() {
		d := toDoc(p, i)
		if d.Ord != i {
			t.Errorf("toDoc().Ord = %d, want %d", d.Ord, i)
		}
		if got := d.person(); !reflect.DeepEqual(got, p) {
			t.Errorf("person() = %+v, want %+v", got, p)
		}
	}
}

func TestMongoSaveModels(t *testing.T) {
	tests := []struct {
		name   string
		people []family.Person
	}{
		{"empty", nil},
		{"sample", samplePeople()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := saveModels(tt.people)
			if len(models) != len(tt.people)+1 {
				t.Fatalf("saveModels() len = %d, want %d", len(models), len(tt.people)+1)
			}

			// Upserts come first, in stored order, so nothing is removed
			// before every current person has been written.
			for i, p := range tt.people {
				m, ok := models[i].(*mongo.ReplaceOneModel)
				if !ok {
					t.Fatalf("models[%d] = %T, want *mongo.ReplaceOneModel", i, models[i])
				}
				if m.Upsert == nil || !*m.Upsert {
					t.Errorf("models[%d] is not an upsert", i)
				}
				wantFilter := bson.D{{Key: "_id", Value: p.ID}}
				if !reflect.DeepEqual(m.Filter, wantFilter) {
					t.Errorf("models[%d].Filter = %v, want %v", i, m.Filter, wantFilter)
				}
				if got := m.Replacement.(personDoc); got.ID != p.ID || got.Ord != i {
					t.Errorf("models[%d].Replacement = {ID:%d Ord:%d}, want {ID:%d Ord:%d}", i, got.ID, got.Ord, p.ID, i)
				}
			}

			last, ok := models[len(models)-1].(*mongo.DeleteManyModel)
			if !ok {
				t.Fatalf("last model = %T, want *mongo.DeleteManyModel", models[len(models)-1])
			}
			ids := bson.A{}
			for _, p := range tt.people {
				ids = append(ids, p.ID)
			}
			wantFilter := bson.D{{Key: "_id", Value: bson.D{{Key: "$nin", Value: ids}}}}
			if !reflect.DeepEqual(last.Filter, wantFilter) {
				t.Errorf("delete Filter = %v, want %v", last.Filter, wantFilter)
			}
		})
	}
}

func TestNeo4jProps_Conversion(t *testing.T) {
	for i, p := range samplePeople() {
		props := personProps(p, i)
		if _, ok := props["birth_date"]; ok != (p.BirthDate != nil) {
			t.Errorf("props[birth_date] present = %v, want %v", ok, p.BirthDate != nil)
		}
		if got := personFromProps(props); !reflect.DeepEqual(got, p) {
			t.Errorf("personFromProps() = %+v, want %+v", got, p)
		}
	}
}

func TestNeo4jProps_DriverTypes(t *testing.T) {
	// The driver returns lists as []any and integers as int64.
	props := map[string]any{
		"id":       int64(4),
		"name":     "Dan",
		"parents":  []any{int64(2), int64(1)},
		"children": []any{},
		"x":        int64(0),
		"y":        400.0,
	}
	want := family.Person{
		ID:       4,
		Name:     "Dan",
		Parents:  []int{2, 1},
		Children: []int{},
		Position: &family.Position{X: 0, Y: 400},
	}
	if got := personFromProps(props); !reflect.DeepEqual(got, want) {
		t.Errorf("personFromProps() = %+v, want %+v", got, want)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name     string
		storage  config.Storage
		wantType string
		wantCode errs.Code
	}{
		{"file", config.Storage{Backend: config.BackendFile, Path: filepath.Join(dir, "a.json")}, "*backend.FileBackend", ""},
		{"sqlite", config.Storage{Backend: config.BackendSQLite, Path: filepath.Join(dir, "a.db")}, "*backend.SQLiteBackend", ""},
		{"unknown", config.Storage{Backend: "etcd"}, "", errs.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(ctx, tt.storage)
			if tt.wantCode != "" {
				if !errs.Is(err, tt.wantCode) {
					t.Errorf("Open() error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer b.Close()
			if got := reflect.TypeOf(b).String(); got != tt.wantType {
				t.Errorf("Open() type = %s, want %s", got, tt.wantType)
			}
		})
	}
}
