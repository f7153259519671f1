package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"food-storefront/metrics"
	"food-storefront/models"
	"food-storefront/notify"
	"food-storefront/store"

	"github.com/google/uuid"
)

const (
	MsgSubmitFailed = "Failed to submit request. Please try again."

	// FormErrorField holds a form-wide error on the draft.
	FormErrorField = "general"
)

var (
	ErrInvalidStep     = errors.New("step must be between 1 and 3")
	ErrUnknownMenuItem = errors.New("unknown menu item")
)

// Catering runs the three-step catering request wizard for each visitor.
type Catering struct {
	store    store.Store
	menu     *Menu
	notifier notify.Notifier
	now      func() time.Time
}

func NewCatering(st store.Store, menu *Menu, n notify.Notifier) *Catering {
	if n == nil {
		n = notify.Nop{}
	}
	return &Catering{store: st, menu: menu, notifier: n, now: time.Now}
}

func (c *Catering) Draft(ctx context.Context, visitorID string) (models.CateringDraft, error) {
	v, err := c.store.GetVisitor(ctx, visitorID)
	if err != nil {
		return models.CateringDraft{}, err
	}
	return v.Catering, nil
}

func (c *Catering) update(ctx context.Context, visitorID string, fn func(d *models.CateringDraft) error) (models.CateringDraft, error) {
	v, err := c.store.UpdateVisitor(ctx, visitorID, func(v *models.VisitorState) error {
		return fn(&v.Catering)
	})
	if err != nil {
		return models.CateringDraft{}, err
	}
	return v.Catering, nil
}

// UpdateFormData merges the non-nil fields of patch into the draft.
func (c *Catering) UpdateFormData(ctx context.Context, visitorID string, patch models.CateringFormPatch) (models.CateringDraft, error) {
	if patch.MenuItems != nil {
		for _, name := range patch.MenuItems {
			if _, err := c.menu.ItemByName(ctx, name); err != nil {
				return models.CateringDraft{}, fmt.Errorf("%w: %s", ErrUnknownMenuItem, name)
			}
		}
	}
	return c.update(ctx, visitorID, func(d *models.CateringDraft) error {
		applyCateringPatch(&d.FormData, patch)
		return nil
	})
}

func applyCateringPatch(f *models.CateringFormData, p models.CateringFormPatch) {
	if p.Date != nil {
		f.Date = strings.TrimSpace(*p.Date)
	}
	if p.EventType != nil {
		f.EventType = *p.EventType
	}
	if p.GuestCount != nil {
		f.GuestCount = *p.GuestCount
	}
	if p.Venue != nil {
		f.Venue = *p.Venue
	}
	if p.ContactName != nil {
		f.ContactName = *p.ContactName
	}
	if p.ContactEmail != nil {
		f.ContactEmail = strings.TrimSpace(*p.ContactEmail)
	}
	if p.ContactPhone != nil {
		f.ContactPhone = *p.ContactPhone
	}
	if p.MenuItems != nil {
		f.MenuItems = dedupe(p.MenuItems)
	}
	if p.Notes != nil {
		f.Notes = *p.Notes
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// ToggleMenuItem adds name to the selection, or removes it if already there.
func (c *Catering) ToggleMenuItem(ctx context.Context, visitorID, name string) (models.CateringDraft, error) {
	if _, err := c.menu.ItemByName(ctx, name); err != nil {
		return models.CateringDraft{}, fmt.Errorf("%w: %s", ErrUnknownMenuItem, name)
	}
	return c.update(ctx, visitorID, func(d *models.CateringDraft) error {
		for i, n := range d.FormData.MenuItems {
			if n == name {
				d.FormData.MenuItems = append(d.FormData.MenuItems[:i], d.FormData.MenuItems[i+1:]...)
				return nil
			}
		}
		d.FormData.MenuItems = append(d.FormData.MenuItems, name)
		return nil
	})
}

// ValidateCateringStep checks one wizard step. today is YYYY-MM-DD in the
// server's zone; event dates before it are rejected.
func ValidateCateringStep(f models.CateringFormData, step int, today string) FieldErrors {
	errs := FieldErrors{}
	switch step {
	case 1:
		switch {
		case strings.TrimSpace(f.Date) == "":
			errs["date"] = "Event date is required"
		case !validDate(f.Date):
			errs["date"] = "Please enter a valid date"
		case f.Date < today:
			errs["date"] = "Event date cannot be in the past"
		}
		switch {
		case strings.TrimSpace(f.EventType) == "":
			errs["eventType"] = "Event type is required"
		case !oneOf(f.EventType, models.EventTypes...):
			errs["eventType"] = "Please select a valid event type"
		}
		if f.GuestCount < models.MinGuestCount || f.GuestCount > models.MaxGuestCount {
			errs["guestCount"] = fmt.Sprintf("Guest count must be between %d and %d", models.MinGuestCount, models.MaxGuestCount)
		}
		if strings.TrimSpace(f.Venue) == "" {
			errs["venue"] = "Venue is required"
		}
		if strings.TrimSpace(f.ContactName) == "" {
			errs["contactName"] = "Contact name is required"
		}
		switch {
		case strings.TrimSpace(f.ContactEmail) == "":
			errs["contactEmail"] = "Contact email is required"
		case !ValidEmail(f.ContactEmail):
			errs["contactEmail"] = "Please enter a valid email address"
		}
		if strings.TrimSpace(f.ContactPhone) == "" {
			errs["contactPhone"] = "Contact phone is required"
		}
	case 2:
		if len(f.MenuItems) == 0 {
			errs["menuItems"] = "Please select at least one menu item"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func (c *Catering) today() string {
	return c.now().Format("2006-01-02")
}

// ValidateStep validates step against the draft and records the outcome on it.
// A validation failure is returned as FieldErrors alongside the updated draft.
func (c *Catering) ValidateStep(ctx context.Context, visitorID string, step int) (models.CateringDraft, error) {
	if step < models.CateringFirstStep || step > models.CateringLastStep {
		return models.CateringDraft{}, ErrInvalidStep
	}
	var verr FieldErrors
	d, err := c.update(ctx, visitorID, func(d *models.CateringDraft) error {
		verr = ValidateCateringStep(d.FormData, step, c.today())
		d.Errors = copyErrors(verr)
		return nil
	})
	if err != nil {
		return d, err
	}
	if verr != nil {
		return d, verr
	}
	return d, nil
}

// Next validates the current step and advances when it passes.
func (c *Catering) Next(ctx context.Context, visitorID string) (models.CateringDraft, error) {
	var verr FieldErrors
	d, err := c.update(ctx, visitorID, func(d *models.CateringDraft) error {
		verr = ValidateCateringStep(d.FormData, d.CurrentStep, c.today())
		d.Errors = copyErrors(verr)
		if verr == nil && d.CurrentStep < models.CateringLastStep {
			d.CurrentStep++
		}
		return nil
	})
	if err != nil {
		return d, err
	}
	if verr != nil {
		return d, verr
	}
	return d, nil
}

func (c *Catering) Back(ctx context.Context, visitorID string) (models.CateringDraft, error) {
	return c.update(ctx, visitorID, func(d *models.CateringDraft) error {
		if d.CurrentStep > models.CateringFirstStep {
			d.CurrentStep--
		}
		d.Errors = map[string]string{}
		return nil
	})
}

// SetStep jumps to step. Going back is free; going forward requires every
// step in between to validate, and stops on the first one that fails.
func (c *Catering) SetStep(ctx context.Context, visitorID string, step int) (models.CateringDraft, error) {
	if step < models.CateringFirstStep || step > models.CateringLastStep {
		return models.CateringDraft{}, ErrInvalidStep
	}
	var verr FieldErrors
	d, err := c.update(ctx, visitorID, func(d *models.CateringDraft) error {
		for s := d.CurrentStep; s < step; s++ {
			if verr = ValidateCateringStep(d.FormData, s, c.today()); verr != nil {
				d.CurrentStep = s
				d.Errors = copyErrors(verr)
				return nil
			}
		}
		d.CurrentStep = step
		d.Errors = map[string]string{}
		return nil
	})
	if err != nil {
		return d, err
	}
	if verr != nil {
		return d, verr
	}
	return d, nil
}

func (c *Catering) Reset(ctx context.Context, visitorID string) (models.CateringDraft, error) {
	return c.update(ctx, visitorID, func(d *models.CateringDraft) error {
		*d = models.NewCateringDraft()
		return nil
	})
}

// Submit validates the event and menu steps and stores the request. The draft
// is validated and reset in one update, so a second submit of the same draft
// finds it empty. If the request cannot be stored the draft is put back with
// a form-wide error.
func (c *Catering) Submit(ctx context.Context, visitorID string) (*models.CateringRequest, models.CateringDraft, error) {
	today := c.today()
	var (
		verr  FieldErrors
		taken models.CateringDraft
	)
	d, err := c.update(ctx, visitorID, func(d *models.CateringDraft) error {
		for _, step := range []int{1, 2} {
			if verr = ValidateCateringStep(d.FormData, step, today); verr != nil {
				d.CurrentStep = step
				d.Errors = copyErrors(verr)
				return nil
			}
		}
		taken = *d
		taken.FormData.MenuItems = append([]string(nil), d.FormData.MenuItems...)
		*d = models.NewCateringDraft()
		return nil
	})
	if err != nil {
		return nil, d, err
	}
	if verr != nil {
		return nil, d, verr
	}

	req := models.CateringRequest{
		ID:        uuid.NewString(),
		FormData:  taken.FormData,
		Status:    models.CateringStatusNew,
		CreatedAt: c.now().UTC(),
	}
	if err := c.store.CreateCateringRequest(ctx, req); err != nil {
		restored, rerr := c.update(ctx, visitorID, func(d *models.CateringDraft) error {
			if draftUntouched(*d) {
				*d = taken
			}
			d.Errors = map[string]string{FormErrorField: MsgSubmitFailed}
			return nil
		})
		if rerr != nil {
			err = errors.Join(err, fmt.Errorf("restore draft: %w", rerr))
			taken.Errors = map[string]string{FormErrorField: MsgSubmitFailed}
			restored = taken
		}
		return nil, restored, fmt.Errorf("store catering request: %w", err)
	}
	metrics.RecordCateringRequest()
	c.notifier.Notify(ctx, notify.CateringRequested(req))
	return &req, d, nil
}

// draftUntouched reports whether d is still a freshly reset draft.
func draftUntouched(d models.CateringDraft) bool {
	fresh := models.NewCateringDraft()
	f := d.FormData
	return d.CurrentStep == fresh.CurrentStep &&
		len(f.MenuItems) == 0 &&
		f.GuestCount == fresh.FormData.GuestCount &&
		f.Date == "" && f.EventType == "" && f.Venue == "" &&
		f.ContactName == "" && f.ContactEmail == "" && f.ContactPhone == "" &&
		f.Notes == ""
}

// CateringRequests lists submitted requests, newest first.
func CateringRequests(ctx context.Context, st store.Store) ([]models.CateringRequest, error) {
	reqs, err := st.ListCateringRequests(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
	return reqs, nil
}

func copyErrors(e FieldErrors) map[string]string {
	out := make(map[string]string, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
