package bot

import (
	"fmt"
	"math"
	"strings"

	"github.com/matheuscscp/groupsplit/models"
)

const (
	msgAskCount           = "How many people are there (including you)?"
	msgInvalidCount       = "Please enter a valid number greater than 0."
	msgAskName            = "Enter name of person %d:"
	msgEmptyName          = "The name cannot be empty. Enter name of person %d:"
	msgDuplicateName      = "%s is already in the group. Enter name of person %d:"
	msgAskCurrency        = "Enter the currency code (e.g. SGD):"
	msgInvalidCurrency    = "Please enter a currency code (e.g. SGD)."
	msgSetupComplete      = "✅ Setup complete!\n👥 People: %s\n💰 Currency: %s\nUse /add to record a new expense."
	msgNoGroupForAdd      = "Please use /start to setup the group first."
	msgAskPayers          = "Who is paying? (Click names to select, then press ✅ Done)"
	msgAskPayees          = "Who is this expense for? (Select names then press ✅ Done)"
	msgSelectPayer        = "Please select at least one payer."
	msgSelectPayee        = "Please select at least one payee."
	msgAskDescription     = "Enter the name/description of the expense:"
	msgInvalidDescription = "The description cannot be empty. Enter the name/description of the expense:"
	msgAskAmount          = "Enter the amount spent:"
	msgInvalidAmount      = "Please enter a valid amount."
	msgExpenseAdded       = "✅ Expense added: %s"
	msgExpenseRejected    = "I could not record this expense: %v"
	msgNoExpenses         = "No expenses recorded yet."
	msgNoExpensesToDelete = "No expenses recorded yet to delete."
	msgAskDeleteIndex     = "Which expense number do you want to delete?\n\n%s"
	msgInvalidDeleteIndex = "Please enter a valid expense number from the list."
	msgExpenseDeleted     = "✅ Deleted expense: %s"
	msgNoGroup            = "No group setup found. Use /start to set up."
	msgCleared            = "✅ All expenses cleared."
	msgGroupDeleted       = "🗑️ Group data deleted. Please /start to set up a new group."
	msgNothingToSettle    = "No expenses to settle."
	msgSuggestedPayments  = "💡 Suggested payments:"
	msgStaleButton        = "This button is no longer active."
	msgAborted            = "Okay, I dropped what we were doing."
	msgNothingToAbort     = "There is nothing to abort."

	labelDone    = "✅ Done"
	labelChecked = "✅ "
)

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func formatExpenses(g *models.Group) string {
	lines := make([]string, 0, len(g.Expenses))
	for i, e := range g.Expenses {
		lines = append(lines, e.FormatDetailed(i+1, g.Currency))
	}
	return strings.Join(lines, "\n\n")
}

// formatSettlement lists every participant's balance in roster order followed
// by the suggested payments, if any.
func formatSettlement(g *models.Group) string {
	balances := g.Balances()
	lines := make([]string, 0, len(balances))
	for _, b := range balances {
		switch {
		case b.Amount >= models.Epsilon:
			lines = append(lines, fmt.Sprintf("%s should receive %s %s", b.Name, models.FormatAmount(b.Amount), g.Currency))
		case b.Amount <= -models.Epsilon:
			lines = append(lines, fmt.Sprintf("%s owes %s %s", b.Name, models.FormatAmount(math.Abs(b.Amount)), g.Currency))
		default:
			lines = append(lines, fmt.Sprintf("%s is settled.", b.Name))
		}
	}
	out := strings.Join(lines, "\n")

	plan := models.Plan(balances)
	if len(plan) == 0 {
		return out
	}
	payments := make([]string, 0, len(plan))
	for _, s := range plan {
		payments = append(payments, s.Format(g.Currency))
	}
	return out + "\n\n" + msgSuggestedPayments + "\n" + strings.Join(payments, "\n")
}

func helpText() string {
	var sb strings.Builder
	sb.WriteString("Here is what I can do:")
	for _, c := range Commands() {
		fmt.Fprintf(&sb, "\n/%s - %s", c.Name, c.Description)
	}
	return sb.String()
}
