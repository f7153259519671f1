package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func login(t *testing.T, env *testEnv) *LoginResult {
	t.Helper()
	res, err := env.accounts.Login(context.Background(), "127.0.0.1", "jordan@example.com", "secret")
	require.NoError(t, err)
	return res
}

func TestAccounts_LoginRequiresCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.accounts.Login(ctx, "127.0.0.1", "", "pw")
	assert.ErrorIs(t, err, ErrCredentialsRequired)
	assert.EqualError(t, err, "Email and password are required")

	// the failed attempt starts a cooldown for the same client
	_, err = env.accounts.Login(ctx, "127.0.0.1", "", "pw")
	var te *ThrottledError
	require.True(t, errors.As(err, &te))
	assert.Greater(t, te.WaitSeconds, 0)

	_, err = env.accounts.Login(ctx, "127.0.0.1", "a@b.co", "")
	assert.ErrorIs(t, err, ErrCredentialsRequired)

	env.now = env.now.Add(time.Minute)
	res, err := env.accounts.Login(ctx, "127.0.0.1", "a@b.co", "x")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestAccounts_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res := login(t, env)
	assert.Equal(t, "Jordan Rivera", res.Account.Name)
	assert.Equal(t, env.now.Add(time.Hour), res.ExpiresAt)

	acct, err := env.accounts.Current(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-001", acct.ID)

	_, err = env.accounts.Current(ctx, res.Token+"x")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = env.accounts.Current(ctx, "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	other := NewAccounts(env.store, nil, "other-secret", time.Hour)
	other.now = func() time.Time { return env.now }
	_, err = other.Current(ctx, res.Token)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, env.accounts.Logout(ctx, res.Token))
	_, err = env.accounts.Current(ctx, res.Token)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.NoError(t, env.accounts.Logout(ctx, "garbage"))
}

func TestAccounts_SessionExpires(t *testing.T) {
	env := newTestEnv(t)
	res := login(t, env)

	env.now = env.now.Add(2 * time.Hour)
	_, err := env.accounts.Current(context.Background(), res.Token)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestAccounts_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acct, err := env.accounts.UpdateProfile(ctx, "user-001", ProfilePatch{
		Name:    ptr("Jordan R."),
		Phone:   ptr("4155550199"),
		Address: &AddressPatch{City: ptr("Oakland"), ZipCode: ptr("94607-1234")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Jordan R.", acct.Name)
	assert.Equal(t, "(415) 555-0199", acct.Phone)
	assert.Equal(t, "Oakland", acct.Address.City)
	assert.Equal(t, "123 Market Street", acct.Address.Street)

	_, err = env.accounts.UpdateProfile(ctx, "user-001", ProfilePatch{
		Name:    ptr("J"),
		Email:   ptr("nope"),
		Phone:   ptr("12345"),
		Address: &AddressPatch{ZipCode: ptr("ABCDE"), Country: ptr("France"), Street: ptr("")},
	})
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldErrors{
		"name":            "Name must be at least 2 characters",
		"email":           "Please enter a valid email address",
		"phone":           "Please enter a valid phone number (XXX) XXX-XXXX",
		"address.street":  "Street address is required",
		"address.zipCode": "Please enter a valid ZIP code",
		"address.country": "Please select a valid country",
	}, fe)

	// a rejected update leaves the account unchanged
	cur, err := env.accounts.Get(ctx, "user-001")
	require.NoError(t, err)
	assert.Equal(t, "Jordan R.", cur.Name)

	_, err = env.accounts.UpdateProfile(ctx, "ghost", ProfilePatch{})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestAccounts_PreferencesAndSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.accounts.UpdatePreferences(ctx, "user-001", PreferencesPatch{SpiceLevel: ptr("nuclear")})
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "spiceLevel")

	acct, err := env.accounts.UpdatePreferences(ctx, "user-001", PreferencesPatch{
		SpiceLevel:               ptr("hot"),
		Allergies:                []string{"shellfish", "shellfish"},
		CommunicationPreferences: &CommunicationPatch{SMS: ptr(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, "hot", acct.Preferences.SpiceLevel)
	assert.Equal(t, []string{"shellfish"}, acct.Preferences.Allergies)
	assert.True(t, acct.Preferences.CommunicationPreferences.SMS)
	assert.True(t, acct.Preferences.CommunicationPreferences.Email, "untouched fields keep their value")
	assert.Equal(t, []string{"olives"}, acct.Preferences.Dislikes)

	var patch SettingsPatch
	patch.Accessibility = &struct {
		FontSize     *string `json:"fontSize"`
		HighContrast *bool   `json:"highContrast"`
		ScreenReader *bool   `json:"screenReader"`
	}{FontSize: ptr("huge")}
	_, err = env.accounts.UpdateAccountSettings(ctx, "user-001", patch)
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "accessibility.fontSize")

	patch.Accessibility.FontSize = ptr("large")
	patch.Accessibility.HighContrast = ptr(true)
	acct, err = env.accounts.UpdateAccountSettings(ctx, "user-001", patch)
	require.NoError(t, err)
	assert.Equal(t, "large", acct.AccountSettings.Accessibility.FontSize)
	assert.True(t, acct.AccountSettings.Accessibility.HighContrast)
	assert.Equal(t, "private", acct.AccountSettings.Privacy.ProfileVisibility)
}

func TestAccounts_PaymentMethods(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.accounts.AddPaymentMethod(ctx, "user-001", NewPaymentMethod{Type: "prepaid", Last4: "12", ExpiryMonth: "13", ExpiryYear: "27"})
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Len(t, fe, 5)

	acct, err := env.accounts.AddPaymentMethod(ctx, "user-001", NewPaymentMethod{
		Type: "credit", Brand: "Amex", Last4: "0005", ExpiryMonth: "02", ExpiryYear: "2029", IsDefault: true,
	})
	require.NoError(t, err)
	require.Len(t, acct.PaymentMethods, 3)
	added := acct.PaymentMethods[2]
	assert.Equal(t, "card-1728896400000", added.ID)
	assert.True(t, added.IsDefault)
	assertOneDefault(t, acct.PaymentMethods, added.ID)

	acct, err = env.accounts.SetDefaultPaymentMethod(ctx, "user-001", "card-2")
	require.NoError(t, err)
	assertOneDefault(t, acct.PaymentMethods, "card-2")

	_, err = env.accounts.SetDefaultPaymentMethod(ctx, "user-001", "card-x")
	assert.ErrorIs(t, err, ErrPaymentMethodNotFound)

	acct, err = env.accounts.RemovePaymentMethod(ctx, "user-001", "card-2")
	require.NoError(t, err)
	require.Len(t, acct.PaymentMethods, 2)
	assertOneDefault(t, acct.PaymentMethods, "card-1")

	_, err = env.accounts.RemovePaymentMethod(ctx, "user-001", "card-2")
	assert.ErrorIs(t, err, ErrPaymentMethodNotFound)

	// same millisecond still yields a fresh id
	acct, err = env.accounts.AddPaymentMethod(ctx, "user-001", NewPaymentMethod{
		Type: "debit", Brand: "Visa", Last4: "1111", ExpiryMonth: "01", ExpiryYear: "2030",
	})
	require.NoError(t, err)
	assert.Equal(t, "card-1728896400001", acct.PaymentMethods[2].ID)
	assert.False(t, acct.PaymentMethods[2].IsDefault)
}

func assertOneDefault(t *testing.T, pms []models.PaymentMethod, id string) {
	t.Helper()
	defaults := 0
	for _, pm := range pms {
		if pm.IsDefault {
			defaults++
			assert.Equal(t, id, pm.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestAccounts_Refresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.accounts.UpdateProfile(ctx, "user-001", ProfilePatch{Name: ptr("Someone Else")})
	require.NoError(t, err)

	acct, err := env.accounts.Refresh(ctx, "user-001")
	require.NoError(t, err)
	assert.Equal(t, "Jordan Rivera", acct.Name)

	cur, err := env.accounts.Get(ctx, "user-001")
	require.NoError(t, err)
	assert.Equal(t, "Jordan Rivera", cur.Name)
}
