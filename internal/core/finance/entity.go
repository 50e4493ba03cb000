package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllAccounts は口座で絞り込まないことを表します。
const AllAccounts = "all"

// UncategorizedLabel はカテゴリ未設定の支出の集計名です。
const UncategorizedLabel = "Uncategorized"

// Transaction は 1 件の入出金です。Amount が正なら収入、負なら支出です。
type Transaction struct {
	ID       string
	Date     time.Time
	Category string
	Payee    string
	Amount   decimal.Decimal
	Account  string
	Notes    string
}

// Period は日単位の両端を含む期間です。
type Period struct {
	From time.Time
	To   time.Time
}

// MonthBucket は月ごとの収入と支出です。Label は "Jan 2024" 形式です。
type MonthBucket struct {
	Month    time.Time
	Label    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// CategoryTotal はカテゴリ別の支出合計です。
type CategoryTotal struct {
	Name  string
	Value decimal.Decimal
}

// Totals は期間内の収入、支出、残額です。Expenses は絶対値で保持します。
type Totals struct {
	Income    decimal.Decimal
	Expenses  decimal.Decimal
	Remaining decimal.Decimal
}

// Changes は前期比の変化率（%、整数に丸め済み）です。
type Changes struct {
	Income    int64
	Expenses  int64
	Remaining int64
}

// Summary は口座と期間に対する集計結果です。
type Summary struct {
	Account    string
	Current    Period
	Previous   Period
	Totals     Totals
	Prior      Totals
	Changes    Changes
	Months     []MonthBucket
	Categories []CategoryTotal
}
