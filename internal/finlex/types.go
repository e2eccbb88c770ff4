package finlex

import "time"

// DocumentTypes lists the default document types fetched per category.
var DocumentTypes = map[string][]string{
	CategoryAct: {
		"statute",
		"statute-consolidated",
		"statute-translated",
		"statute-aland",
		"statute-sami",
	},
	CategoryJudgment: {
		"kko",
		"kho",
	},
	CategoryDoc: {
		"government-proposal",
		"treaty",
		"treaty-consolidated",
		DocTypeAuthorityRegulation,
	},
}

// YearRange returns the inclusive year window covering the last yearsBack
// years, ending at the current year.
func YearRange(yearsBack int) (startYear, endYear int) {
	current := time.Now().Year()
	return current - yearsBack + 1, current
}
