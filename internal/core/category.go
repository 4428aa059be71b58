package core

import (
	"fmt"
	"strings"
)

// Category is a closed vocabulary. The zero value means "no category".
type Category string

const (
	CategoryNone Category = ""

	CategoryFood      Category = "food"
	CategoryHousing   Category = "housing"
	CategoryUtilities Category = "utilities"
	CategoryHealth    Category = "health"
	CategoryCulture   Category = "culture"
	CategoryEducation Category = "education"
	CategoryTransport Category = "transport"
	CategoryDues      Category = "dues"
	CategoryInterest  Category = "interest"
	CategoryInsurance Category = "insurance"
	CategoryOther     Category = "other"

	// Transfer vocabulary, only valid on transfer entries.
	CategoryRealEstate          Category = "real_estate"
	CategoryLoan                Category = "loan"
	CategoryDeposit             Category = "deposit"
	CategoryOtherFinancialAsset Category = "other_financial_asset"
	CategoryCardBillWithdrawal  Category = "card_bill_withdrawal"
)

var generalCategories = []Category{
	CategoryFood, CategoryHousing, CategoryUtilities, CategoryHealth,
	CategoryCulture, CategoryEducation, CategoryTransport, CategoryDues,
	CategoryInterest, CategoryInsurance, CategoryOther,
}

var transferCategories = []Category{
	CategoryRealEstate, CategoryLoan, CategoryDeposit,
	CategoryOtherFinancialAsset, CategoryCardBillWithdrawal,
}

var categoryLabels = map[Category]string{
	CategoryFood:      "식비",
	CategoryHousing:   "주거비",
	CategoryUtilities: "통신비",
	CategoryHealth:    "건강",
	CategoryCulture:   "문화",
	CategoryEducation: "교육",
	CategoryTransport: "교통",
	CategoryDues:      "회비",
	CategoryInterest:  "이자",
	CategoryInsurance: "보험",
	CategoryOther:     "기타",

	CategoryRealEstate:          "부동산",
	CategoryLoan:                "대출",
	CategoryDeposit:             "예금",
	CategoryOtherFinancialAsset: "기타 금융자산",
	CategoryCardBillWithdrawal:  "카드 대금 출금",
}

var categoryByLabel = func() map[string]Category {
	m := make(map[string]Category, 2*len(categoryLabels))
	for c, label := range categoryLabels {
		m[string(c)] = c
		m[label] = c
	}
	return m
}()

// ParseCategory resolves a slug ("food") or a localized label ("식비").
// An empty string yields CategoryNone.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryNone, nil
	}
	if c, ok := categoryByLabel[s]; ok {
		return c, nil
	}
	if c, ok := categoryByLabel[strings.ToLower(s)]; ok {
		return c, nil
	}
	return CategoryNone, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// IsTransfer reports whether c belongs to the transfer vocabulary.
func (c Category) IsTransfer() bool {
	switch c {
	case CategoryRealEstate, CategoryLoan, CategoryDeposit,
		CategoryOtherFinancialAsset, CategoryCardBillWithdrawal:
		return true
	}
	return false
}

// Label returns the localized label, or "" for CategoryNone.
func (c Category) Label() string {
	return categoryLabels[c]
}

// GeneralCategories returns the income/expense vocabulary in display order.
func GeneralCategories() []Category {
	return append([]Category(nil), generalCategories...)
}

// TransferCategories returns the transfer vocabulary in display order.
func TransferCategories() []Category {
	return append([]Category(nil), transferCategories...)
}
