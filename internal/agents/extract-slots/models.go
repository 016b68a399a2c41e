// internal/agents/extract-slots/models.go
package extractslots

import "loan-assistant/internal/models"

// Input carries the latest user message together with the current
// application state. The state is read-only here; extraction never
// mutates it.
type Input struct {
	Text  string
	State *models.ApplicationState
}

// Candidates holds values recovered from a single message. Zero values
// mean "not found". Registry fields are only meaningful when Phone is
// non-empty and one of Verified or NotInCRM is set.
type Candidates struct {
	Phone            string
	Verified         bool
	NotInCRM         bool
	CustomerName     string
	CreditScore      int
	PreApprovedLimit int64
	RegistryIncome   int64

	RequestedAmount int64
	Income          int64
	SelectedTenure  int
}

type Output struct {
	Candidates Candidates
}
