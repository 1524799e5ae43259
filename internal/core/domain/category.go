package domain

// CategoryType is the transaction type a category applies to. Transfers have no category.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// IsValid reports whether c is income or expense.
func (c CategoryType) IsValid() bool {
	return c == CategoryIncome || c == CategoryExpense
}

// Category labels income and expense entries within one fiscal year.
type Category struct {
	CategoryID   string       `json:"categoryID"`
	Name         string       `json:"name"`
	Type         CategoryType `json:"type"`
	SortOrder    int          `json:"sortOrder"`
	FiscalYearID string       `json:"fiscalYearID"`
	AuditFields
}

var defaultIncomeCategories = []string{"会費", "寄付", "助成金", "イベント収入", "その他収入"}

var defaultExpenseCategories = []string{"交通費", "食費", "備品購入", "会場費", "印刷費", "通信費", "イベント費用", "その他支出"}

// DefaultCategories returns the seed set for a new fiscal year, numbered from 1 within each type.
// IDs and audit fields are left for the caller.
func DefaultCategories(fiscalYearID string) []Category {
	out := make([]Category, 0, len(defaultIncomeCategories)+len(defaultExpenseCategories))
	for i, name := range defaultIncomeCategories {
		out = append(out, Category{Name: name, Type: CategoryIncome, SortOrder: i + 1, FiscalYearID: fiscalYearID})
	}
	for i, name := range defaultExpenseCategories {
		out = append(out, Category{Name: name, Type: CategoryExpense, SortOrder: i + 1, FiscalYearID: fiscalYearID})
	}
	return out
}
