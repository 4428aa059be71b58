package ledger

import "gagyebu/internal/core"

// DemoTransactions returns the May 2025 sample month shown on first start.
// The salary day carries both a salary and an expense, kept as two entries.
func DemoTransactions() []core.Transaction {
	d := core.NewDate
	return []core.Transaction{
		{Date: d(2025, 5, 1), Income: 150000, Memo: "월급", Kind: core.KindIncome},
		{Date: d(2025, 5, 1), Expense: 50000, Memo: "월급", Kind: core.KindExpense},
		{Date: d(2025, 5, 8), Expense: 49500, Memo: "온라인 쇼핑", Category: core.CategoryOther, Kind: core.KindExpense, PaymentMethod: "card"},
		{Date: d(2025, 5, 27), Income: 200000, Memo: "추가 수입", Kind: core.KindIncome},
		{Date: d(2025, 5, 27), Expense: 15000, Memo: "커피", Category: core.CategoryFood, Kind: core.KindExpense, PaymentMethod: "card"},
		{Date: d(2025, 5, 9), Expense: 49500, Memo: "여행 준비", Category: core.CategoryCulture, Kind: core.KindExpense, PaymentMethod: "card"},
		{Date: d(2025, 5, 9), Expense: 15000, Memo: "교통비", Category: core.CategoryTransport, Kind: core.KindExpense, PaymentMethod: "cash"},
		{Date: d(2025, 5, 26), Expense: 3000, Memo: "간식", Category: core.CategoryFood, Kind: core.KindExpense, PaymentMethod: "cash"},
	}
}
