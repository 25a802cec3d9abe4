package domain

type ActionResult struct {
	Action  string
	Outcome Outcome
}

type AccountReport struct {
	Label    string
	HasToken bool
	Results  []ActionResult
}

type RunReport struct {
	Accounts []AccountReport
}

func (r RunReport) Count(kind OutcomeKind) int {
	n := 0
	for _, account := range r.Accounts {
		for _, result := range account.Results {
			if result.Outcome.Kind == kind {
				n++
			}
		}
	}

	return n
}
