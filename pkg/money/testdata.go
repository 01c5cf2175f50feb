package money

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// TestDataGenerator generates realistic financial test data using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(0), // Random seed
	}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// ============================================================================
// Transaction Generation
// ============================================================================

// TestTransaction represents a generated test transaction.
type TestTransaction struct {
	ID          uuid.UUID
	Date        time.Time
	Description string
	Amount      *Money
	Category    string
	Merchant    string
	IsExpense   bool
}

// Transaction generates a single random transaction.
func (g *TestDataGenerator) Transaction(currency string) TestTransaction {
	isExpense := g.faker.Bool()
	amount := g.RandomAmount(currency, 100000, 50000000) // 1 000 to 500 000 som

	if isExpense {
		amount = amount.Negate()
	}

	return TestTransaction{
		ID:          uuid.New(),
		Date:        g.faker.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()),
		Description: g.TransactionDescription(),
		Amount:      amount,
		Category:    g.Category(),
		Merchant:    g.Merchant(),
		IsExpense:   isExpense,
	}
}

// Transactions generates multiple random transactions.
func (g *TestDataGenerator) Transactions(currency string, count int) []TestTransaction {
	txs := make([]TestTransaction, count)
	for i := 0; i < count; i++ {
		txs[i] = g.Transaction(currency)
	}
	return txs
}

// ExpenseTransaction generates a random expense transaction.
func (g *TestDataGenerator) ExpenseTransaction(currency string) TestTransaction {
	tx := g.Transaction(currency)
	tx.IsExpense = true
	if tx.Amount.IsPositive() {
		tx.Amount = tx.Amount.Negate()
	}
	return tx
}

// IncomeTransaction generates a random income transaction.
func (g *TestDataGenerator) IncomeTransaction(currency string) TestTransaction {
	tx := g.Transaction(currency)
	tx.IsExpense = false
	tx.Amount = g.RandomAmount(currency, 100000000, 1500000000) // 1M to 15M som
	tx.Category = g.IncomeSource()
	tx.Description = "Доход: " + tx.Category
	return tx
}

// ============================================================================
// Money Generation
// ============================================================================

// RandomAmount generates a random Money value within a minor-unit range.
func (g *TestDataGenerator) RandomAmount(currency string, minMinor, maxMinor int64) *Money {
	if minMinor > maxMinor {
		minMinor, maxMinor = maxMinor, minMinor
	}
	minor := g.faker.Int64() % (maxMinor - minMinor + 1)
	if minor < 0 {
		minor = -minor
	}
	return New(minMinor+minor, currency)
}

// RandomAmountRange generates a random Money value within a major-unit range.
func (g *TestDataGenerator) RandomAmountRange(currency string, min, max float64) *Money {
	amount := g.faker.Float64Range(min, max)
	return NewFromFloat(amount, currency)
}

// SmallPurchase generates a typical small purchase amount (1 000 to 50 000 som).
func (g *TestDataGenerator) SmallPurchase(currency string) *Money {
	return g.RandomAmountRange(currency, 1000, 50000)
}

// LargePurchase generates a typical large purchase amount (100 000 to 5 000 000 som).
func (g *TestDataGenerator) LargePurchase(currency string) *Money {
	return g.RandomAmountRange(currency, 100000, 5000000)
}

// ============================================================================
// Description and Category Generation
// ============================================================================

var expenseCategories = []string{
	"Продукты", "Напитки", "Транспорт", "Развлечения",
	"Одежда", "Здоровье", "Коммунальные услуги", "Образование",
	"Прочее",
}

var incomeSources = []string{
	"Зарплата", "Фриланс", "Подработка", "Аренда",
	"Бизнес", "Премия", "Подарок",
}

var merchants = []string{
	"Korzinka", "Makro", "Havas", "Magnum", "Baraka",
	"Evos", "Oqtepa Lavash", "KFC", "Safia", "Bon!",
	"Artel", "Mediapark", "Texnomart", "Zara", "Uzum Market",
	"Аптека 999", "АЗС Uzbekneftegaz", "Yandex Go", "MyTaxi",
}

var transactionDescriptions = []string{
	"хлеб и молоко",
	"продукты на неделю",
	"такси до работы",
	"обед в кафе",
	"проезд в метро",
	"лекарства",
	"оплата за свет",
	"интернет",
	"кофе",
	"фрукты на базаре",
	"бензин",
	"кино",
	"одежда детям",
	"книги",
	"подарок",
}

// Category returns a random expense category.
func (g *TestDataGenerator) Category() string {
	return expenseCategories[g.faker.Number(0, len(expenseCategories)-1)]
}

// IncomeSource returns a random income source name.
func (g *TestDataGenerator) IncomeSource() string {
	return incomeSources[g.faker.Number(0, len(incomeSources)-1)]
}

// Merchant returns a random merchant name.
func (g *TestDataGenerator) Merchant() string {
	return merchants[g.faker.Number(0, len(merchants)-1)]
}

// TransactionDescription returns a random transaction description.
func (g *TestDataGenerator) TransactionDescription() string {
	return transactionDescriptions[g.faker.Number(0, len(transactionDescriptions)-1)]
}

// ============================================================================
// Voice Phrase Generation
// ============================================================================

// ExpensePhrase generates a spoken expense phrase with a known amount,
// for driving the text pipeline in tests.
func (g *TestDataGenerator) ExpensePhrase() (string, float64) {
	amount := float64(g.faker.Number(1, 500)) * 1000
	item := g.TransactionDescription()
	return fmt.Sprintf("потратил %.0f сум на %s", amount, item), amount
}

// ============================================================================
// Debt and Goal Scenarios
// ============================================================================

// TestDebt represents a generated test debt record.
type TestDebt struct {
	ID         uuid.UUID
	PersonName string
	Amount     *Money
	PaidAmount *Money
	Direction  string
	Status     string
	DueDate    *time.Time
}

var debtPersons = []string{
	"Алишер", "Бобур", "Саида", "Дилшод", "Нодира",
	"Жасур", "Малика", "Тимур", "Гульнора",
}

// Debt generates a random debt.
func (g *TestDataGenerator) Debt(currency string) TestDebt {
	amount := g.RandomAmountRange(currency, 50000, 5000000)
	paidPct := g.faker.Float64Range(0, 90)
	paid := amount.Percentage(paidPct)

	directions := []string{"lent", "borrowed"}
	status := "open"
	if paid.IsPositive() {
		status = "partial"
	}

	var due *time.Time
	if g.faker.Bool() {
		d := time.Now().AddDate(0, 0, g.faker.Number(-10, 60))
		due = &d
	}

	return TestDebt{
		ID:         uuid.New(),
		PersonName: debtPersons[g.faker.Number(0, len(debtPersons)-1)],
		Amount:     amount,
		PaidAmount: paid,
		Direction:  directions[g.faker.Number(0, 1)],
		Status:     status,
		DueDate:    due,
	}
}

// TestGoal represents a generated test savings goal.
type TestGoal struct {
	ID            uuid.UUID
	Name          string
	TargetAmount  *Money
	CurrentAmount *Money
	Deadline      *time.Time
	IsActive      bool
}

var goalNames = []string{
	"отпуск", "машина", "ремонт", "телефон",
	"свадьба", "учеба", "подушка безопасности",
}

// Goal generates a random savings goal.
func (g *TestDataGenerator) Goal(currency string) TestGoal {
	target := g.RandomAmountRange(currency, 1000000, 100000000)
	progressPct := g.faker.Float64Range(0, 100)
	current := target.Percentage(progressPct)

	var deadline *time.Time
	if g.faker.Bool() {
		d := time.Now().AddDate(0, g.faker.Number(1, 12), 0)
		deadline = &d
	}

	return TestGoal{
		ID:            uuid.New(),
		Name:          goalNames[g.faker.Number(0, len(goalNames)-1)],
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
		IsActive:      true,
	}
}

// ============================================================================
// Batch Generators for Testing
// ============================================================================

// MonthlyTransactionSet generates a realistic month of transactions.
func (g *TestDataGenerator) MonthlyTransactionSet(currency string) []TestTransaction {
	txs := make([]TestTransaction, 0, 50)

	// Recurring income (1-2 deposits)
	incomeCount := g.faker.Number(1, 2)
	for i := 0; i < incomeCount; i++ {
		txs = append(txs, g.IncomeTransaction(currency))
	}

	// Bills (5-10)
	billCount := g.faker.Number(5, 10)
	for i := 0; i < billCount; i++ {
		tx := g.ExpenseTransaction(currency)
		tx.Amount = g.RandomAmountRange(currency, 50000, 500000).Negate()
		tx.Category = "Коммунальные услуги"
		txs = append(txs, tx)
	}

	// Daily expenses (20-40)
	expenseCount := g.faker.Number(20, 40)
	for i := 0; i < expenseCount; i++ {
		txs = append(txs, g.ExpenseTransaction(currency))
	}

	return txs
}
