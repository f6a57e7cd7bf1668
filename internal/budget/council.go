package budget

import "github.com/roach88/treasury/internal/types"

// CouncilManager is the council's spendable pool seen through the council
// budget manager interface the bounty engine consumes.
type CouncilManager struct {
	c Controller
}

// CouncilManager returns the manager over the council budget.
func (m *Module) CouncilManager() CouncilManager {
	return CouncilManager{c: m.Controller(CouncilBudget)}
}

func (cm CouncilManager) GetBudget() types.Balance { return cm.c.GetBalance() }

func (cm CouncilManager) SetBudget(amount types.Balance) { cm.c.SetBudget(amount) }
