package orgchart

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var equateEmpty = cmpopts.EquateEmpty()

func sampleForest() Forest {
	return Forest{
		{ID: "1", Name: "Alice", Role: "Lead", Subordinates: Forest{
			{ID: "2", Name: "Bob", Role: "Dev"},
			{ID: "3", Name: "Cleo", Role: "QA", Subordinates: Forest{
				{ID: "4", Name: "Dan", Role: "Intern"},
			}},
		}},
		{ID: "5", Name: "Eve", Role: "Ops"},
	}
}

func collectRows(f Forest) []Row {
	var rows []Row
	for r := range Flatten(f) {
		rows = append(rows, r)
	}
	return rows
}

func TestFlatten_PreOrderWithDepth(t *testing.T) {
	t.Parallel()

	rows := collectRows(sampleForest())

	gotIDs := make([]string, 0, len(rows))
	gotDepths := make([]int, 0, len(rows))
	for _, r := range rows {
		gotIDs = append(gotIDs, r.Employee.ID)
		gotDepths = append(gotDepths, r.Depth)
	}

	if diff := cmp.Diff([]string{"1", "2", "3", "4", "5"}, gotIDs); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 1, 2, 0}, gotDepths); diff != "" {
		t.Fatalf("unexpected depths (-want +got):\n%s", diff)
	}
}

func TestFlatten_Restartable(t *testing.T) {
	t.Parallel()

	seq := Flatten(sampleForest())
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	if first != 5 || second != 5 {
		t.Fatalf("expected 5 rows on each pass, got %d and %d", first, second)
	}
}

func TestFlatten_EarlyStop(t *testing.T) {
	t.Parallel()

	var seen []string
	for r := range Flatten(sampleForest()) {
		seen = append(seen, r.Employee.ID)
		if r.Employee.ID == "3" {
			break
		}
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, seen); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestFindByID(t *testing.T) {
	t.Parallel()

	f := sampleForest()
	found, ok := FindByID(f, "4")
	if !ok || found.Name != "Dan" {
		t.Fatalf("expected Dan, got %+v (ok=%t)", found, ok)
	}

	if _, ok := FindByID(f, "missing"); ok {
		t.Fatal("expected missing id to be not found")
	}
}

func TestInsert_TopLevel(t *testing.T) {
	t.Parallel()

	f := sampleForest()
	got := Insert(f, Employee{ID: "9", Name: "Zed"}, "")

	want := append(sampleForest(), Employee{ID: "9", Name: "Zed"})
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Fatalf("unexpected forest (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sampleForest(), f, equateEmpty); diff != "" {
		t.Fatalf("input forest was mutated:\n%s", diff)
	}
}

func TestInsert_Nested(t *testing.T) {
	t.Parallel()

	f := sampleForest()
	got := Insert(f, Employee{ID: "9", Name: "Zed"}, "3")

	want := sampleForest()
	want[0].Subordinates[1].Subordinates = append(want[0].Subordinates[1].Subordinates, Employee{ID: "9", Name: "Zed"})
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Fatalf("unexpected forest (-want +got):\n%s", diff)
	}
	if len(f[0].Subordinates[1].Subordinates) != 1 {
		t.Fatal("input forest was mutated")
	}
}

func TestInsert_NestedDoesNotAliasSpareCapacity(t *testing.T) {
	t.Parallel()

	subs := make(Forest, 1, 4)
	subs[0] = Employee{ID: "c1"}
	f := Forest{{ID: "p", Subordinates: subs}}

	a := Insert(f, Employee{ID: "a"}, "p")
	b := Insert(f, Employee{ID: "b"}, "p")

	if a[0].Subordinates[1].ID != "a" || b[0].Subordinates[1].ID != "b" {
		t.Fatalf("inserts interfered with each other: %+v / %+v", a, b)
	}
}

func TestInsert_UnknownParentIsNoop(t *testing.T) {
	t.Parallel()

	got := Insert(sampleForest(), Employee{ID: "9"}, "nonexistent")
	if diff := cmp.Diff(sampleForest(), got, equateEmpty); diff != "" {
		t.Fatalf("expected unchanged forest (-want +got):\n%s", diff)
	}
}

func TestDelete_RemovesSubtree(t *testing.T) {
	t.Parallel()

	got := Delete(sampleForest(), "3")
	if Contains(got, "3") || Contains(got, "4") {
		t.Fatalf("expected node 3 and descendant 4 removed, got %+v", got)
	}
	if Count(got) != 3 {
		t.Fatalf("expected 3 remaining nodes, got %d", Count(got))
	}
}

func TestDelete_Idempotent(t *testing.T) {
	t.Parallel()

	once := Delete(sampleForest(), "2")
	twice := Delete(once, "2")
	if diff := cmp.Diff(once, twice, equateEmpty); diff != "" {
		t.Fatalf("delete is not idempotent (-once +twice):\n%s", diff)
	}

	unknown := Delete(sampleForest(), "nope")
	if diff := cmp.Diff(sampleForest(), unknown, equateEmpty); diff != "" {
		t.Fatalf("unknown id should be a no-op:\n%s", diff)
	}
}

func TestUpdate_PreservesSubordinates(t *testing.T) {
	t.Parallel()

	f := sampleForest()
	name := "New"
	got := Update(f, EmployeePatch{ID: "3", Name: &name})

	before, _ := FindByID(f, "3")
	after, _ := FindByID(got, "3")

	if after.Name != "New" {
		t.Fatalf("expected name updated, got %q", after.Name)
	}
	if after.Role != before.Role || after.Image != before.Image {
		t.Fatalf("expected other fields untouched, got %+v", after)
	}
	if diff := cmp.Diff(before.Subordinates, after.Subordinates, equateEmpty); diff != "" {
		t.Fatalf("subordinates changed (-before +after):\n%s", diff)
	}
	if f[0].Subordinates[1].Name != "Cleo" {
		t.Fatal("input forest was mutated")
	}
}

func TestUpdate_UnknownIsNoop(t *testing.T) {
	t.Parallel()

	role := "x"
	got := Update(sampleForest(), EmployeePatch{ID: "zz", Role: &role})
	if diff := cmp.Diff(sampleForest(), got, equateEmpty); diff != "" {
		t.Fatalf("expected unchanged forest:\n%s", diff)
	}
}

func TestBulkDelete_OrderIndependent(t *testing.T) {
	t.Parallel()

	f := sampleForest()
	orders := [][]string{
		{"2", "4", "5"},
		{"5", "2", "4"},
		{"4", "5", "2"},
	}

	want := Delete(Delete(Delete(f, "2"), "4"), "5")
	for _, ids := range orders {
		got := BulkDelete(f, ids)
		if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
			t.Fatalf("order %v produced a different forest (-want +got):\n%s", ids, diff)
		}
	}

	sequential := Delete(Delete(Delete(f, "5"), "4"), "2")
	if diff := cmp.Diff(want, sequential, equateEmpty); diff != "" {
		t.Fatalf("sequential deletes differ:\n%s", diff)
	}
}

func TestBulkDelete_AncestorAndDescendant(t *testing.T) {
	t.Parallel()

	a := BulkDelete(sampleForest(), []string{"1", "4"})
	b := BulkDelete(sampleForest(), []string{"4", "1"})
	if diff := cmp.Diff(a, b, equateEmpty); diff != "" {
		t.Fatalf("ancestor/descendant order mattered:\n%s", diff)
	}
	if Count(a) != 1 {
		t.Fatalf("expected only node 5 left, got %d nodes", Count(a))
	}
}

func TestScenario_AliceAndBob(t *testing.T) {
	t.Parallel()

	f := Forest{{ID: "1", Name: "Alice", Role: "Lead", Subordinates: Forest{
		{ID: "2", Name: "Bob", Role: "Dev", Subordinates: Forest{}},
	}}}

	if got := Delete(f, "1"); len(got) != 0 {
		t.Fatalf("expected empty forest, got %+v", got)
	}

	got := Insert(f, Employee{ID: "c-1", Name: "Cara", Role: "Dev"}, "1")
	names := make([]string, 0, 2)
	for _, s := range got[0].Subordinates {
		names = append(names, s.Name)
	}
	if !slices.Equal(names, []string{"Bob", "Cara"}) {
		t.Fatalf("expected [Bob Cara], got %v", names)
	}
}

func TestAssignIDsAndDuplicates(t *testing.T) {
	t.Parallel()

	n := 0
	gen := func() string {
		n++
		return "gen-" + string(rune('0'+n))
	}

	f := Forest{{Name: "a", Subordinates: Forest{{Name: "b"}, {ID: "x"}}}}
	got := AssignIDs(f, gen)

	ids := []string{got[0].ID, got[0].Subordinates[0].ID, got[0].Subordinates[1].ID}
	if diff := cmp.Diff([]string{"gen-1", "gen-2", "x"}, ids); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
	if f[0].ID != "" {
		t.Fatal("input forest was mutated")
	}
	if MissingIDs(f) != 2 || MissingIDs(got) != 0 {
		t.Fatalf("unexpected missing id counts: before=%d after=%d", MissingIDs(f), MissingIDs(got))
	}

	dup := Forest{{ID: "a"}, {ID: "b", Subordinates: Forest{{ID: "a"}}}}
	if diff := cmp.Diff([]string{"a"}, DuplicateIDs(dup)); diff != "" {
		t.Fatalf("unexpected duplicates:\n%s", diff)
	}
}

func TestDisplayHelpers(t *testing.T) {
	t.Parallel()

	empty := Employee{}
	if DisplayName(empty) != "Unknown" || DisplayRole(empty) != "No role" || Initial(empty) != "?" {
		t.Fatalf("unexpected placeholders: %q %q %q", DisplayName(empty), DisplayRole(empty), Initial(empty))
	}

	e := Employee{Name: "Émile", Role: "Chair"}
	if DisplayName(e) != "Émile" || DisplayRole(e) != "Chair" || Initial(e) != "É" {
		t.Fatalf("unexpected display values: %q %q %q", DisplayName(e), DisplayRole(e), Initial(e))
	}
}
