// Package lexicon holds the static category keyword table and the
// user-configurable vocabularies used by the chat parser. Pure data.
package lexicon

import "strings"

// Lexicon maps a category name to the keywords that imply it. Scan order is
// driven by the Categories vocabulary, not by map iteration, so matches stay
// deterministic.
type Lexicon map[string][]string

// Vocabularies is a per-call snapshot of the user's configured lists.
type Vocabularies struct {
	Categories   []string `json:"categories" mapstructure:"categories"`
	PaymentModes []string `json:"payment_modes" mapstructure:"payment_modes"`
	UPIApps      []string `json:"upi_apps" mapstructure:"upi_apps"`
}

// CategoryIncome labels income transactions in place of an expense category.
const CategoryIncome = "Income"

// CategoryOther is the fallback when no keyword or category name matches.
const CategoryOther = "Other"

// DefaultPaymentMode is the fallback payment channel.
const DefaultPaymentMode = "Cash"

// IncomeFrequencies are the paymentMode values accepted for income entries.
var IncomeFrequencies = []string{"One-time", "Weekly", "Monthly", "Yearly"}

// Default returns the built-in category keyword table.
func Default() Lexicon {
	return Lexicon{
		"Food":          {"dinner", "lunch", "breakfast", "restaurant", "coffee", "tea", "pizza", "burger", "snacks", "swiggy", "zomato"},
		"Groceries":     {"grocery", "groceries", "vegetables", "fruits", "milk", "supermarket", "bigbasket"},
		"Travel":        {"uber", "ola", "taxi", "cab", "bus", "train", "flight", "metro", "petrol", "fuel", "auto"},
		"Shopping":      {"shoes", "clothes", "shirt", "dress", "amazon", "flipkart", "myntra", "mall", "electronics"},
		"Entertainment": {"movie", "netflix", "spotify", "game", "concert", "show"},
		"Bills":         {"electricity", "water", "internet", "wifi", "recharge", "bill", "subscription", "insurance"},
		"Health":        {"doctor", "medicine", "pharmacy", "hospital", "gym", "dentist"},
		"Education":     {"book", "course", "tuition", "fees", "school", "college"},
		"Rent":          {"rent", "maintenance", "deposit"},
	}
}

// DefaultVocabularies returns the stock configuration used until the user
// customises their lists.
func DefaultVocabularies() Vocabularies {
	return Vocabularies{
		Categories:   []string{"Food", "Groceries", "Travel", "Shopping", "Entertainment", "Bills", "Health", "Education", "Rent", "Other"},
		PaymentModes: []string{"Cash", "Card", "UPI", "Netbanking"},
		UPIApps:      []string{"GPay", "PhonePe", "Paytm"},
	}
}

// Keywords returns the keyword list for a category, matching the name
// case-insensitively.
func (l Lexicon) Keywords(category string) []string {
	if kws, ok := l[category]; ok {
		return kws
	}
	for name, kws := range l {
		if strings.EqualFold(name, category) {
			return kws
		}
	}
	return nil
}
