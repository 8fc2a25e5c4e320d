package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/dynkit/retype/internal/object"
)

func TestMemStoreAppendList(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	seed := []Entry{
		{Kind: KindCapture, Class: "Tagged"},
		{Kind: KindUpgrade, From: "Budget", To: "Tagged", Outcome: "upgraded"},
		{Kind: KindUpgrade, From: "Budget", To: "Tagged", Outcome: "failed", Detail: "boom"},
	}
	for _, e := range seed {
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries, want 3", len(all))
	}
	for i, e := range all {
		if e.ID != int64(i+1) {
			t.Errorf("entry %d has id %d", i, e.ID)
		}
		if e.At.IsZero() {
			t.Errorf("entry %d has zero timestamp", i)
		}
	}

	upgrades, err := s.List(ctx, Filter{Kind: KindUpgrade})
	if err != nil {
		t.Fatalf("List upgrades: %v", err)
	}
	if len(upgrades) != 2 {
		t.Errorf("got %d upgrades, want 2", len(upgrades))
	}

	failed, err := s.List(ctx, Filter{Outcome: "failed"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].Detail != "boom" {
		t.Errorf("failed filter returned %+v", failed)
	}

	limited, err := s.List(ctx, Filter{Limit: 2})
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d entries with limit 2", len(limited))
	}
}

func TestMemStoreSummarize(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	seed := []Entry{
		{Kind: KindCapture, Class: "Tagged"},
		{Kind: KindUpgrade, From: "Budget", To: "Tagged", Outcome: "upgraded"},
		{Kind: KindUpgrade, From: "Budget", To: "Tagged", Outcome: "upgraded"},
		{Kind: KindUpgrade, From: "Budget", To: "Labeled", Outcome: "upgraded"},
		{Kind: KindUpgrade, From: "Budget", To: "Tagged", Outcome: "failed"},
		{Kind: KindMigrate, Method: "tag", Outcome: "copied"},
	}
	for _, e := range seed {
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	sum, err := s.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Total != 6 {
		t.Errorf("Total = %d, want 6", sum.Total)
	}
	if sum.ByKind[KindUpgrade] != 4 {
		t.Errorf("upgrade count = %d, want 4", sum.ByKind[KindUpgrade])
	}
	if sum.Failures != 1 {
		t.Errorf("Failures = %d, want 1", sum.Failures)
	}
	want := []UpgradePath{
		{From: "Budget", To: "Tagged", Count: 2},
		{From: "Budget", To: "Labeled", Count: 1},
	}
	if len(sum.Paths) != len(want) {
		t.Fatalf("got %d paths, want %d", len(sum.Paths), len(want))
	}
	for i := range want {
		if sum.Paths[i] != want[i] {
			t.Errorf("path %d = %+v, want %+v", i, sum.Paths[i], want[i])
		}
	}
}

func TestRecorderCapturesProtocol(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	rec := NewRecorder(store)

	sub := upgradeWorld(t, rec)
	inst, err := sub.Call([]object.Object{&object.Integer{Value: 7}, &object.Str{Value: "alpha"}}, nil)
	if err != nil {
		t.Fatalf("Tagged(...): %v", err)
	}
	made := callFactory(t, inst)

	if rec.Dropped() != 0 {
		t.Fatalf("Dropped = %d, want 0", rec.Dropped())
	}

	captures, err := store.List(ctx, Filter{Kind: KindCapture})
	if err != nil {
		t.Fatalf("List captures: %v", err)
	}
	if len(captures) == 0 {
		t.Fatal("no capture entries recorded")
	}
	if captures[0].Class != "Tagged" || captures[0].Detail != "args=1 kwargs=0" {
		t.Errorf("capture entry = %+v", captures[0])
	}

	upgrades, err := store.List(ctx, Filter{Kind: KindUpgrade, Outcome: "upgraded"})
	if err != nil {
		t.Fatalf("List upgrades: %v", err)
	}
	if len(upgrades) != 1 {
		t.Fatalf("got %d upgrade entries, want 1", len(upgrades))
	}
	up := upgrades[0]
	if up.From != "Budget" || up.To != "Tagged" || up.Class != "Budget" || up.Method != "make" {
		t.Errorf("upgrade entry = %+v", up)
	}

	migrations, err := store.List(ctx, Filter{Kind: KindMigrate, Outcome: "copied"})
	if err != nil {
		t.Fatalf("List migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no migration entries recorded")
	}
	madeID := made.(*object.Instance).ID()
	for _, m := range migrations {
		if m.To != madeID {
			t.Errorf("migration target %s, want %s", m.To, madeID)
		}
	}
}

func TestRecorderCountsDrops(t *testing.T) {
	rec := NewRecorder(failStore{})
	rec.OnCapture(object.CaptureEvent{Class: "Tagged"})
	rec.OnUpgrade(object.UpgradeEvent{Outcome: object.OutcomeUpgraded})
	rec.OnMigrate(object.MigrateEvent{Outcome: object.OutcomeCopied})
	if got := rec.Dropped(); got != 3 {
		t.Errorf("Dropped = %d, want 3", got)
	}
}

func TestNewStoreFactory(t *testing.T) {
	s, err := NewStore(Config{})
	if err != nil {
		t.Fatalf("default store: %v", err)
	}
	if _, ok := s.(*MemStore); !ok {
		t.Errorf("default store is %T, want *MemStore", s)
	}

	s, err = NewStore(Config{Type: "sqlite", Path: t.TempDir() + "/j.db"})
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("sqlite store is %T, want *SQLiteStore", s)
	}
	s.Close()

	if _, err := NewStore(Config{Type: "bolt"}); !errors.Is(err, ErrUnsupportedStore) {
		t.Errorf("unknown type error = %v", err)
	}
}

// --- Helpers ---

type failStore struct{}

func (failStore) Append(context.Context, Entry) error           { return errors.New("full") }
func (failStore) List(context.Context, Filter) ([]Entry, error) { return nil, nil }
func (failStore) Summarize(context.Context) (*Summary, error)   { return nil, nil }
func (failStore) Close() error                                  { return nil }

// upgradeWorld builds a Budget base with a classmethod factory and a
// derived Tagged class, wired to the given hook.
func upgradeWorld(tb testing.TB, hook object.Hook) *object.Class {
	tb.Helper()
	rt := object.NewRuntime(object.WithHook(hook))

	factory := object.NewClassMethod("make", object.NewFunction("make", func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
		return args[0].(*object.Class).Call([]object.Object{&object.Integer{Value: 9}}, nil)
	}))
	base, err := rt.NewClass("Budget", nil, object.ClassSpec{
		Init:  storeArg("x", 1),
		Attrs: map[string]object.Object{"make": factory},
	})
	if err != nil {
		tb.Fatalf("NewClass: %v", err)
	}
	sub, err := rt.Derive("Tagged", base, object.ClassSpec{Init: storeArg("tag", 2)})
	if err != nil {
		tb.Fatalf("Derive: %v", err)
	}
	return sub
}

func storeArg(name string, pos int) *object.Method {
	return object.NewMethod("init", object.NewFunction("init", func(args []object.Object, kwargs object.Kwargs) (object.Object, error) {
		if len(args) > pos {
			if err := args[0].(object.AttrSetter).SetAttr(name, args[pos]); err != nil {
				return nil, err
			}
		}
		return object.NIL, nil
	}))
}

func callFactory(tb testing.TB, inst object.Object) object.Object {
	tb.Helper()
	v, err := object.Attr(inst, "make")
	if err != nil {
		tb.Fatalf("attr make: %v", err)
	}
	made, err := v.(object.Caller).Call(nil, nil)
	if err != nil {
		tb.Fatalf("make(): %v", err)
	}
	return made
}
