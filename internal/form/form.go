// Package form はフォーム入力の宣言的バリデーションを提供する。
//
// フィールド名と制約のリストからなる静的なスキーマに対して送信値を検査し、
// 正常化された値セットまたはフィールドごとのエラーメッセージのマップを返す。
// 制約はフィールド単位ですべて評価され、エラーは蓄積される。
// フィールド間に依存関係はなく、それぞれ独立に評価される。
package form

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Constraint は単一フィールドに対する検査規則。
// 違反があればエラーメッセージを、なければ空文字列を返す。
type Constraint interface {
	Check(value string) string
}

// Required は非空を要求する制約。
type Required struct{}

// Check はConstraintを実装する。
func (Required) Check(value string) string {
	if strings.TrimSpace(value) == "" {
		return "この項目は必須です。"
	}
	return ""
}

// MinLen は最小文字数を要求する制約。空値はRequiredの担当とし検査しない。
type MinLen struct{ N int }

// Check はConstraintを実装する。
func (c MinLen) Check(value string) string {
	if value == "" {
		return ""
	}
	if utf8.RuneCountInString(value) < c.N {
		return fmt.Sprintf("%d文字以上で入力してください。", c.N)
	}
	return ""
}

// MaxLen は最大文字数を制限する制約。
type MaxLen struct{ N int }

// Check はConstraintを実装する。
func (c MaxLen) Check(value string) string {
	if utf8.RuneCountInString(value) > c.N {
		return fmt.Sprintf("%d文字以内で入力してください。", c.N)
	}
	return ""
}

// Email はメールアドレス形式を要求する制約。空値は検査しない。
type Email struct{}

// Check はConstraintを実装する。
func (Email) Check(value string) string {
	if value == "" {
		return ""
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "メールアドレスの形式が正しくありません。"
	}
	return ""
}

// Field はスキーマ内の1フィールドを表す。
type Field struct {
	Name        string
	Constraints []Constraint
}

// Schema はフォーム全体の静的スキーマ。
type Schema struct {
	Fields []Field
}

// Errors はフィールド名からエラーメッセージ列へのマップ。
type Errors map[string][]string

// Any は1件以上のエラーがあるかを返す。
func (e Errors) Any() bool {
	return len(e) > 0
}

// Validate は送信値をスキーマに照らして検査する。
// 戻り値はトリム済みの値セットと、フィールドごとのエラー。
// エラーがない場合、Errorsは空マップになる。
func (s Schema) Validate(values map[string]string) (map[string]string, Errors) {
	cleaned := make(map[string]string, len(s.Fields))
	errs := make(Errors)

	for _, field := range s.Fields {
		value := strings.TrimSpace(values[field.Name])
		cleaned[field.Name] = value

		for _, constraint := range field.Constraints {
			if msg := constraint.Check(value); msg != "" {
				errs[field.Name] = append(errs[field.Name], msg)
			}
		}
	}

	return cleaned, errs
}

// FieldNames はスキーマのフィールド名を定義順で返す。
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, field := range s.Fields {
		names[i] = field.Name
	}
	return names
}
