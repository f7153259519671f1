// Package mock embeds the storefront fixtures that stand in for a backend.
package mock

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"food-storefront/models"
)

const (
	DailyMenuFile      = "daily-menu.json"
	SubscriptionsFile  = "subscriptions.json"
	HowItWorksFile     = "how-it-works.json"
	UserAccountFile    = "user-account.json"
	AdminDashboardFile = "admin-dashboard.json"
)

//go:embed *.json
var fixturesFS embed.FS

// FS is the read-only fixture tree served under /mock.
func FS() http.FileSystem {
	return http.FS(fixturesFS)
}

// Files lists the embedded fixture names in lexical order.
func Files() ([]string, error) {
	return fs.Glob(fixturesFS, "*.json")
}

func decode(name string, v any) error {
	b, err := fixturesFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return nil
}

func LoadDailyMenu() (*models.DailyMenu, error) {
	var m models.DailyMenu
	if err := decode(DailyMenuFile, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func LoadSubscriptionPlans() ([]models.SubscriptionPlan, error) {
	var c models.SubscriptionCatalog
	if err := decode(SubscriptionsFile, &c); err != nil {
		return nil, err
	}
	return c.Plans, nil
}

func LoadHowItWorks() (*models.HowItWorks, error) {
	var h models.HowItWorks
	if err := decode(HowItWorksFile, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func LoadUserAccount() (*models.UserAccount, error) {
	var u models.UserAccount
	if err := decode(UserAccountFile, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func LoadAdminDashboard() (*models.AdminDashboard, error) {
	var d models.AdminDashboard
	if err := decode(AdminDashboardFile, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
