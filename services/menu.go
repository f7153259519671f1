package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"food-storefront/mock"
	"food-storefront/models"
	"food-storefront/store"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

// MenuFilter narrows the daily menu. Zero value returns everything.
type MenuFilter struct {
	Category      string
	Query         string
	Dietary       string
	SpecialOnly   bool
	AvailableOnly bool
}

// Menu serves the daily menu fixture with availability overrides from the store.
type Menu struct {
	store      store.Store
	daily      models.DailyMenu
	howItWorks models.HowItWorks
}

func NewMenu(st store.Store) (*Menu, error) {
	daily, err := mock.LoadDailyMenu()
	if err != nil {
		return nil, err
	}
	how, err := mock.LoadHowItWorks()
	if err != nil {
		return nil, err
	}
	return &Menu{store: st, daily: *daily, howItWorks: *how}, nil
}

// Items returns every menu item in fixture order with current availability.
func (m *Menu) Items(ctx context.Context) ([]models.MenuItem, error) {
	overrides, err := m.store.MenuAvailability(ctx)
	if err != nil {
		return nil, fmt.Errorf("menu availability: %w", err)
	}
	items := make([]models.MenuItem, 0, len(m.daily.Items))
	for _, it := range m.daily.Items {
		it.Dietary = append([]string(nil), it.Dietary...)
		if v, ok := overrides[it.ID]; ok {
			it.Available = v
		}
		items = append(items, it)
	}
	return items, nil
}

func (m *Menu) DailyMenu(ctx context.Context, f MenuFilter) (*models.DailyMenu, error) {
	items, err := m.Items(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		if f.Category != "" && f.Category != "all" && it.Category != f.Category {
			continue
		}
		if f.SpecialOnly && !it.IsSpecial {
			continue
		}
		if f.AvailableOnly && !it.Available {
			continue
		}
		if f.Dietary != "" && !hasTag(it.Dietary, f.Dietary) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) && !strings.Contains(strings.ToLower(it.Description), q) {
			continue
		}
		out = append(out, it)
	}
	return &models.DailyMenu{Date: m.daily.Date, Items: out}, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

func (m *Menu) GetItem(ctx context.Context, id string) (*models.MenuItem, error) {
	items, err := m.Items(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, ErrMenuItemNotFound
}

// ItemByName matches the catering wizard's menu selections, which are names.
func (m *Menu) ItemByName(ctx context.Context, name string) (*models.MenuItem, error) {
	items, err := m.Items(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Name == name {
			return &items[i], nil
		}
	}
	return nil, ErrMenuItemNotFound
}

func (m *Menu) SetAvailability(ctx context.Context, id string, available bool) (*models.MenuItem, error) {
	if _, err := m.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if err := m.store.SetMenuAvailability(ctx, id, available); err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}
	return m.GetItem(ctx, id)
}

// ToggleAvailability flips an item in a single store operation.
func (m *Menu) ToggleAvailability(ctx context.Context, id string) (*models.MenuItem, error) {
	var base *models.MenuItem
	for i := range m.daily.Items {
		if m.daily.Items[i].ID == id {
			base = &m.daily.Items[i]
			break
		}
	}
	if base == nil {
		return nil, ErrMenuItemNotFound
	}
	if _, err := m.store.ToggleMenuAvailability(ctx, id, base.Available); err != nil {
		return nil, fmt.Errorf("toggle availability: %w", err)
	}
	return m.GetItem(ctx, id)
}

// HowItWorks returns the steps ordered by step number.
func (m *Menu) HowItWorks() models.HowItWorks {
	out := m.howItWorks
	out.Steps = append([]models.HowItWorksStep(nil), m.howItWorks.Steps...)
	sort.SliceStable(out.Steps, func(i, j int) bool {
		return out.Steps[i].StepNumber < out.Steps[j].StepNumber
	})
	return out
}
