package orgchart

import (
	"strings"
	"unicode/utf8"
)

const (
	unknownName = "Unknown"
	noRole      = "No role"
)

// DisplayName は表示用の名前を返します。空の場合は "Unknown" です。
func DisplayName(e Employee) string {
	if strings.TrimSpace(e.Name) == "" {
		return unknownName
	}
	return e.Name
}

// DisplayRole は表示用の役職を返します。空の場合は "No role" です。
func DisplayRole(e Employee) string {
	if strings.TrimSpace(e.Role) == "" {
		return noRole
	}
	return e.Role
}

// Initial はアバター画像が無いときに使う頭文字です。
func Initial(e Employee) string {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(r)
}
