package models

// VisitorState is everything an anonymous browser accumulates before (or
// without) logging in: the cart, the chosen meal-prep plan and the catering
// wizard draft.
type VisitorState struct {
	Cart           Cart          `json:"cart"`
	SelectedPlanID string        `json:"selectedPlanId,omitempty"`
	Catering       CateringDraft `json:"catering"`
}

func NewVisitorState() VisitorState {
	return VisitorState{
		Cart:     Cart{Items: []CartItem{}},
		Catering: NewCateringDraft(),
	}
}
