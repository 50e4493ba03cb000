package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const monthLabelLayout = "Jan 2006"

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// PercentageChange は previous から current への変化率（%）を返します。previous が 0 なら 0 です。
func PercentageChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}

// PreviousPeriod は p の直前にある同じ日数の期間を返します。
func PreviousPeriod(p Period) Period {
	from, to := day(p.From), day(p.To)
	days := int(to.Sub(from).Hours() / 24)
	prevTo := from.AddDate(0, 0, -1)
	return Period{From: prevTo.AddDate(0, 0, -days), To: prevTo}
}

// Contains は t が期間に含まれるかを日単位で判定します。
func (p Period) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(day(p.From)) && !d.After(day(p.To))
}

// Summarize は account の取引を期間 p で集計し、前期比と月別・カテゴリ別の内訳を返します。
// account が AllAccounts なら全口座が対象です。口座名は大文字小文字を区別しません。
func Summarize(txns []Transaction, account string, p Period) (Summary, error) {
	if p.From.IsZero() || p.To.IsZero() || day(p.To).Before(day(p.From)) {
		return Summary{}, fmt.Errorf("%s..%s: %w", p.From.Format(time.DateOnly), p.To.Format(time.DateOnly), ErrInvalidPeriod)
	}

	scoped := ForAccount(txns, account)
	prev := PreviousPeriod(p)

	current := totals(Within(scoped, p))
	prior := totals(Within(scoped, prev))

	return Summary{
		Account:  account,
		Current:  Period{From: day(p.From), To: day(p.To)},
		Previous: prev,
		Totals:   current,
		Prior:    prior,
		Changes: Changes{
			Income:    roundHalfUp(changeOr(current.Income, prior.Income, hundred)),
			Expenses:  roundHalfUp(changeOr(current.Expenses, prior.Expenses, decimal.Zero)),
			Remaining: roundHalfUp(remainingChange(current.Remaining, prior.Remaining)),
		},
		Months:     MonthlyBuckets(scoped, p),
		Categories: ExpensesByCategory(Within(scoped, p)),
	}, nil
}

// SummarizeAccounts は accounts の各口座について Summarize を行います。
func SummarizeAccounts(txns []Transaction, accounts []string, p Period) (map[string]Summary, error) {
	out := make(map[string]Summary, len(accounts))
	for _, a := range accounts {
		s, err := Summarize(txns, a, p)
		if err != nil {
			return nil, err
		}
		out[a] = s
	}
	return out, nil
}

// ForAccount は口座で絞り込んだ取引を返します。
func ForAccount(txns []Transaction, account string) []Transaction {
	if account == "" || strings.EqualFold(account, AllAccounts) {
		return txns
	}
	var out []Transaction
	for _, t := range txns {
		if strings.EqualFold(t.Account, account) {
			out = append(out, t)
		}
	}
	return out
}

// Within は期間内の取引を返します。
func Within(txns []Transaction, p Period) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// MonthlyBuckets は p の開始月から終了月までの各月について収入と支出を集計します。
// 月の集計は月全体が対象で、期間の端で切り詰めません。
func MonthlyBuckets(txns []Transaction, p Period) []MonthBucket {
	start := monthStart(p.From)
	end := monthStart(p.To)

	var out []MonthBucket
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		month := Period{From: m, To: m.AddDate(0, 1, -1)}
		t := totals(Within(txns, month))
		out = append(out, MonthBucket{
			Month:    m,
			Label:    m.Format(monthLabelLayout),
			Income:   t.Income,
			Expenses: t.Expenses,
		})
	}
	return out
}

// ExpensesByCategory は支出をカテゴリごとに合計します。順序はカテゴリの初出順です。
func ExpensesByCategory(txns []Transaction) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for _, t := range txns {
		if !t.Amount.IsNegative() {
			continue
		}
		name := t.Category
		if name == "" {
			name = UncategorizedLabel
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryTotal{Name: name, Value: decimal.Zero})
		}
		out[i].Value = out[i].Value.Add(t.Amount.Abs())
	}
	return out
}

func totals(txns []Transaction) Totals {
	income, spent := decimal.Zero, decimal.Zero
	for _, t := range txns {
		switch {
		case t.Amount.IsPositive():
			income = income.Add(t.Amount)
		case t.Amount.IsNegative():
			spent = spent.Add(t.Amount)
		}
	}
	expenses := spent.Abs()
	return Totals{Income: income, Expenses: expenses, Remaining: income.Sub(expenses)}
}

// changeOr は previous が 0 のとき fallback を返します。
func changeOr(current, previous, fallback decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return fallback
	}
	return PercentageChange(current, previous)
}

// remainingChange は前期残額の絶対値を分母にします。前期残額が 0 なら 100 です。
func remainingChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return hundred
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred)
}

// roundHalfUp は 0.5 を正の無限大方向へ丸めます（-2.5 は -2）。
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// ParseDate は "2006-01-02" または RFC 3339 の日付を読み取ります。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, ErrInvalidTransaction)
	}
	return t, nil
}
