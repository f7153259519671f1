package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles(t *testing.T) {
	names, err := Files()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		AdminDashboardFile, DailyMenuFile, HowItWorksFile, SubscriptionsFile, UserAccountFile,
	}, names)
}

func TestLoadDailyMenu(t *testing.T) {
	m, err := LoadDailyMenu()
	require.NoError(t, err)
	require.NotEmpty(t, m.Items)

	ids := map[string]bool{}
	for _, it := range m.Items {
		assert.NotEmpty(t, it.Name)
		assert.False(t, ids[it.ID], "duplicate menu id %s", it.ID)
		ids[it.ID] = true
	}
}

func TestLoadSubscriptionPlans_MixedPriceShapes(t *testing.T) {
	plans, err := LoadSubscriptionPlans()
	require.NoError(t, err)

	var sawCustom bool
	for _, p := range plans {
		if p.Category == "custom" {
			sawCustom = true
			assert.False(t, p.Price.IsNumber())
			assert.Equal(t, "Custom", p.Price.String())
		} else {
			assert.True(t, p.Price.IsNumber(), p.ID)
		}
	}
	assert.True(t, sawCustom)
}

func TestLoadUserAccount(t *testing.T) {
	u, err := LoadUserAccount()
	require.NoError(t, err)
	assert.Equal(t, "user-001", u.ID)
	assert.NotEmpty(t, u.PaymentMethods)
	assert.Nil(t, u.UpcomingDeliveries[0].TrackingNumber)
}

func TestLoadAdminDashboard(t *testing.T) {
	d, err := LoadAdminDashboard()
	require.NoError(t, err)
	assert.Len(t, d.Users, 6)
	assert.Len(t, d.Orders, 12)
	assert.Len(t, d.Subscriptions, 7)
	assert.Nil(t, d.Users[1].Subscription)
	assert.False(t, d.Orders[0].Date.IsZero())
}

func TestLoadHowItWorks(t *testing.T) {
	h, err := LoadHowItWorks()
	require.NoError(t, err)
	assert.Len(t, h.Steps, 4)
}
