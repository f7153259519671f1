package models

import "time"

const (
	CateringFirstStep = 1
	CateringLastStep  = 3

	DefaultGuestCount = 5
	MinGuestCount     = 5
	MaxGuestCount     = 500

	CateringStatusNew = "new"
)

var EventTypes = []string{
	"Corporate Event",
	"Wedding Reception",
	"Birthday Party",
	"Anniversary Celebration",
	"Business Meeting",
	"Holiday Party",
	"Graduation Celebration",
	"Baby Shower",
	"Retirement Party",
	"Other",
}

type CateringFormData struct {
	// event details (step 1)
	Date       string `json:"date"`
	EventType  string `json:"eventType"`
	GuestCount int    `json:"guestCount"`
	Venue      string `json:"venue"`

	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`

	// menu selection (step 2)
	MenuItems []string `json:"menuItems"`

	// additional details (step 3)
	Notes string `json:"notes"`
}

// CateringFormPatch carries a partial update; nil fields are left untouched.
type CateringFormPatch struct {
	Date         *string  `json:"date"`
	EventType    *string  `json:"eventType"`
	GuestCount   *int     `json:"guestCount"`
	Venue        *string  `json:"venue"`
	ContactName  *string  `json:"contactName"`
	ContactEmail *string  `json:"contactEmail"`
	ContactPhone *string  `json:"contactPhone"`
	MenuItems    []string `json:"menuItems"`
	Notes        *string  `json:"notes"`
}

type CateringDraft struct {
	CurrentStep int               `json:"currentStep"`
	FormData    CateringFormData  `json:"formData"`
	Errors      map[string]string `json:"errors"`
}

func NewCateringDraft() CateringDraft {
	return CateringDraft{
		CurrentStep: CateringFirstStep,
		FormData: CateringFormData{
			GuestCount: DefaultGuestCount,
			MenuItems:  []string{},
		},
		Errors: map[string]string{},
	}
}

type CateringRequest struct {
	ID        string           `json:"id"`
	FormData  CateringFormData `json:"formData"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}
