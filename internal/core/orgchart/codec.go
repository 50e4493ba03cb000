package orgchart

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type documentJSON struct {
	Employees json.RawMessage `json:"employees"`
}

type employeeInJSON struct {
	ID           *string          `json:"id"`
	Name         *string          `json:"name"`
	Role         *string          `json:"role"`
	Image        *string          `json:"image"`
	Subordinates []employeeInJSON `json:"subordinates"`
}

type employeeOutJSON struct {
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name"`
	Role         string            `json:"role"`
	Image        string            `json:"image"`
	Subordinates []employeeOutJSON `json:"subordinates"`
}

type documentOutJSON struct {
	Employees []employeeOutJSON `json:"employees"`
}

// DecodeDocument は { "employees": [...] } 形式の JSON をフォレストに変換します。
// 形式不正や name / role / image の欠落は ErrMalformedDocument を返します。
func DecodeDocument(b []byte) (Forest, error) {
	var doc documentJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return DecodeEmployees(doc.Employees)
}

// DecodeEmployees は社員配列の JSON をフォレストに変換します。
func DecodeEmployees(raw json.RawMessage) (Forest, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: employees must be an array", ErrMalformedDocument)
	}

	var nodes []employeeInJSON
	if err := json.Unmarshal(trimmed, &nodes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return fromJSON(nodes, "employees")
}

// DecodeEmployee は単一社員の JSON を変換します。
func DecodeEmployee(b []byte) (Employee, error) {
	var node employeeInJSON
	if err := json.Unmarshal(b, &node); err != nil {
		return Employee{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	f, err := fromJSON([]employeeInJSON{node}, "employee")
	if err != nil {
		return Employee{}, err
	}
	return f[0], nil
}

func fromJSON(nodes []employeeInJSON, path string) (Forest, error) {
	out := make(Forest, 0, len(nodes))
	for i, n := range nodes {
		at := fmt.Sprintf("%s[%d]", path, i)
		if n.Name == nil || n.Role == nil || n.Image == nil {
			return nil, fmt.Errorf("%w: %s: name, role and image are required", ErrMalformedDocument, at)
		}
		subs, err := fromJSON(n.Subordinates, at+".subordinates")
		if err != nil {
			return nil, err
		}
		e := Employee{
			Name:         *n.Name,
			Role:         *n.Role,
			Image:        *n.Image,
			Subordinates: subs,
		}
		if n.ID != nil {
			e.ID = *n.ID
		}
		out = append(out, e)
	}
	return out, nil
}

// EncodeDocument はフォレストを { "employees": [...] } 形式の JSON に変換します。
func EncodeDocument(f Forest) ([]byte, error) {
	return json.Marshal(documentOutJSON{Employees: toJSON(f)})
}

// EncodeEmployees はフォレストを社員配列の JSON に変換します。空でも [] を返します。
func EncodeEmployees(f Forest) ([]byte, error) {
	return json.Marshal(toJSON(f))
}

// EncodeEmployee は単一社員を JSON に変換します。
func EncodeEmployee(e Employee) ([]byte, error) {
	return json.Marshal(toJSON(Forest{e})[0])
}

func toJSON(f Forest) []employeeOutJSON {
	out := make([]employeeOutJSON, 0, len(f))
	for _, e := range f {
		out = append(out, employeeOutJSON{
			ID:           e.ID,
			Name:         e.Name,
			Role:         e.Role,
			Image:        e.Image,
			Subordinates: toJSON(e.Subordinates),
		})
	}
	return out
}
