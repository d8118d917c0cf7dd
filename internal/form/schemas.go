package form

// 各フォームの静的スキーマ。フィールドの制約は元のDBスキーマの桁数に合わせる。

// RegisterSchema はユーザー登録フォームのスキーマを返す。
func RegisterSchema() Schema {
	return Schema{Fields: []Field{
		{Name: "username", Constraints: []Constraint{Required{}, MinLen{1}, MaxLen{20}}},
		{Name: "password", Constraints: []Constraint{Required{}, MinLen{6}, MaxLen{55}}},
		{Name: "email", Constraints: []Constraint{Required{}, Email{}, MaxLen{50}}},
		{Name: "first_name", Constraints: []Constraint{Required{}, MaxLen{30}}},
		{Name: "last_name", Constraints: []Constraint{Required{}, MaxLen{30}}},
	}}
}

// LoginSchema はログインフォームのスキーマを返す。
func LoginSchema() Schema {
	return Schema{Fields: []Field{
		{Name: "username", Constraints: []Constraint{Required{}, MinLen{1}, MaxLen{20}}},
		{Name: "password", Constraints: []Constraint{Required{}, MinLen{6}, MaxLen{55}}},
	}}
}

// FeedbackSchema はフィードバック投稿・編集フォームのスキーマを返す。
func FeedbackSchema() Schema {
	return Schema{Fields: []Field{
		{Name: "title", Constraints: []Constraint{Required{}, MaxLen{100}}},
		{Name: "content", Constraints: []Constraint{Required{}}},
	}}
}
