package orgchart

import (
	"iter"
	"slices"
)

// transform は forest を深さ優先で複製しながら各ノードに fn を適用します。
// fn が false を返したノードは部分木ごと除外され、残ったノードの部下にも再帰的に適用されます。
// 入力は変更されません。
func transform(f Forest, fn func(Employee) (Employee, bool)) Forest {
	out := make(Forest, 0, len(f))
	for _, e := range f {
		next, keep := fn(e)
		if !keep {
			continue
		}
		next.Subordinates = transform(next.Subordinates, fn)
		out = append(out, next)
	}
	return out
}

func keepAll(e Employee) (Employee, bool) {
	return e, true
}

// Clone はフォレストの深いコピーを返します。
func Clone(f Forest) Forest {
	return transform(f, keepAll)
}

// Flatten は深さ優先の先行順で (社員, 深さ) を列挙します。
// 何度でも列挙し直せます。返される Employee の Subordinates は入力と共有されるため読み取り専用です。
func Flatten(f Forest) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		walk(f, 0, yield)
	}
}

func walk(f Forest, depth int, yield func(Row) bool) bool {
	for _, e := range f {
		if !yield(Row{Employee: e, Depth: depth}) {
			return false
		}
		if !walk(e.Subordinates, depth+1, yield) {
			return false
		}
	}
	return true
}

// FindByID は id に一致する最初のノードのコピーを返します。
func FindByID(f Forest, id string) (Employee, bool) {
	for row := range Flatten(f) {
		if row.Employee.ID == id {
			return Clone(Forest{row.Employee})[0], true
		}
	}
	return Employee{}, false
}

// Contains は id を持つノードが存在するかを返します。
func Contains(f Forest, id string) bool {
	for row := range Flatten(f) {
		if row.Employee.ID == id {
			return true
		}
	}
	return false
}

// Count はフォレスト内の全ノード数を返します。
func Count(f Forest) int {
	n := 0
	for range Flatten(f) {
		n++
	}
	return n
}

// Insert は e を追加した新しいフォレストを返します。
// parentID が空ならトップレベル末尾、そうでなければ該当ノードの部下末尾に追加します。
// 該当ノードが無い場合は f と同じ内容を返します。
func Insert(f Forest, e Employee, parentID string) Forest {
	child := Clone(Forest{e})
	if parentID == "" {
		return append(Clone(f), child...)
	}

	inserted := false
	return transform(f, func(n Employee) (Employee, bool) {
		if !inserted && n.ID == parentID {
			inserted = true
			n.Subordinates = slices.Concat(n.Subordinates, child)
		}
		return n, true
	})
}

// Update は patch.ID に一致するノードのスカラー項目を置き換えます。部下はそのまま保持されます。
func Update(f Forest, patch EmployeePatch) Forest {
	return transform(f, func(n Employee) (Employee, bool) {
		if n.ID != patch.ID {
			return n, true
		}
		if patch.Name != nil {
			n.Name = *patch.Name
		}
		if patch.Role != nil {
			n.Role = *patch.Role
		}
		if patch.Image != nil {
			n.Image = *patch.Image
		}
		return n, true
	})
}

// Delete は id のノードをその部分木ごと取り除きます。
func Delete(f Forest, id string) Forest {
	return transform(f, func(n Employee) (Employee, bool) {
		return n, n.ID != id
	})
}

// BulkDelete は ids の順に Delete を畳み込みます。
// 祖先が先に消えた子孫の削除は no-op になるため、結果は順序に依存しません。
func BulkDelete(f Forest, ids []string) Forest {
	out := Clone(f)
	for _, id := range ids {
		out = Delete(out, id)
	}
	return out
}

// AssignIDs は ID が空のノードに gen の値を割り当てたコピーを返します。
func AssignIDs(f Forest, gen func() string) Forest {
	return transform(f, func(n Employee) (Employee, bool) {
		if n.ID == "" {
			n.ID = gen()
		}
		return n, true
	})
}

// MissingIDs は ID が空のノード数を返します。
func MissingIDs(f Forest) int {
	n := 0
	for row := range Flatten(f) {
		if row.Employee.ID == "" {
			n++
		}
	}
	return n
}

// DuplicateIDs はフォレスト内で重複している ID を出現順に返します。
func DuplicateIDs(f Forest) []string {
	seen := make(map[string]int)
	var dups []string
	for row := range Flatten(f) {
		id := row.Employee.ID
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
