package orgchart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID         = errors.New("orgchart: invalid id")
	ErrDuplicateID       = errors.New("orgchart: duplicate id")
	ErrMalformedDocument = errors.New("orgchart: malformed document")
)

// LoadError はストアからの読み込み失敗を表します。
// 呼び出し側は「データなし」として扱い、処理を継続します。
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("orgchart: load: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SaveError はストアへの書き込み失敗を表します。
// 失敗した変更はコミットされず、直前のフォレストが維持されます。
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("orgchart: save: %v", e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// AsLoadError は err を LoadError として返します。既に LoadError ならそのまま返します。
func AsLoadError(err error) error {
	if err == nil {
		return nil
	}
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{Err: err}
}

// AsSaveError は err を SaveError として返します。既に SaveError ならそのまま返します。
func AsSaveError(err error) error {
	if err == nil {
		return nil
	}
	var se *SaveError
	if errors.As(err, &se) {
		return err
	}
	return &SaveError{Err: err}
}
