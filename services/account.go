package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"food-storefront/mock"
	"food-storefront/models"
	"food-storefront/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNotLoggedIn           = errors.New("not logged in")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrCredentialsRequired   = &PublicError{Msg: "Email and password are required"}
)

var (
	Countries          = []string{"United States", "Canada", "Mexico"}
	SpiceLevels        = []string{"mild", "medium", "hot", "extra-hot"}
	CookingPreferences = []string{"rare", "medium-rare", "medium", "medium-well", "well-done"}
	ProfileVisibility  = []string{"private", "public"}
	FontSizes          = []string{"small", "medium", "large"}
	CardTypes          = []string{"credit", "debit"}
)

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	Account   *models.UserAccount `json:"account"`
}

// Accounts is the mock account backend: any non-empty credentials log in as
// the fixture account.
type Accounts struct {
	store    store.Store
	throttle *LoginThrottle
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAccounts(st store.Store, throttle *LoginThrottle, secret string, ttl time.Duration) *Accounts {
	if throttle == nil {
		throttle = NewLoginThrottle()
	}
	return &Accounts{store: st, throttle: throttle, secret: []byte(secret), ttl: ttl, now: time.Now}
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Login checks credentials and opens a session. clientKey throttles
// attempts that carry no email.
func (a *Accounts) Login(ctx context.Context, clientKey, email, password string) (*LoginResult, error) {
	key := strings.TrimSpace(email)
	if key == "" {
		key = "client:" + clientKey
	}
	if wait := a.throttle.WaitSeconds(key); wait > 0 {
		return nil, &ThrottledError{WaitSeconds: wait}
	}
	if strings.TrimSpace(email) == "" || password == "" {
		a.throttle.RecordFailed(key)
		return nil, ErrCredentialsRequired
	}
	a.throttle.RecordSuccess(key)

	account, err := a.loadAccount(ctx)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}
	if err := a.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, err := a.signSession(sess)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, Account: account}, nil
}

// loadAccount returns the stored fixture account, seeding it on first use.
func (a *Accounts) loadAccount(ctx context.Context) (*models.UserAccount, error) {
	fixture, err := mock.LoadUserAccount()
	if err != nil {
		return nil, err
	}
	acct, err := a.store.GetAccount(ctx, fixture.ID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if err := a.store.PutAccount(ctx, fixture); err != nil {
		return nil, fmt.Errorf("seed account: %w", err)
	}
	return fixture, nil
}

func (a *Accounts) signSession(s models.Session) (string, error) {
	claims := sessionClaims{jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   s.UserID,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

func (a *Accounts) parseToken(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrNotLoggedIn
	}
	return claims, nil
}

// Session resolves a token to its live session.
func (a *Accounts) Session(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	claims, err := a.parseToken(token)
	if err != nil {
		return nil, err
	}
	sess, err := a.store.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}
	if sess.Expired(a.now()) {
		_ = a.store.DeleteSession(ctx, sess.ID)
		return nil, ErrNotLoggedIn
	}
	return sess, nil
}

func (a *Accounts) Logout(ctx context.Context, token string) error {
	claims, err := a.parseToken(token)
	if err != nil {
		return nil
	}
	return a.store.DeleteSession(ctx, claims.ID)
}

// Current returns the account behind token.
func (a *Accounts) Current(ctx context.Context, token string) (*models.UserAccount, error) {
	sess, err := a.Session(ctx, token)
	if err != nil {
		return nil, err
	}
	return a.Get(ctx, sess.UserID)
}

func (a *Accounts) Get(ctx context.Context, userID string) (*models.UserAccount, error) {
	acct, err := a.store.GetAccount(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotLoggedIn
	}
	return acct, err
}

// Refresh discards local edits and reloads the account from the fixture.
func (a *Accounts) Refresh(ctx context.Context, userID string) (*models.UserAccount, error) {
	fixture, err := mock.LoadUserAccount()
	if err != nil {
		return nil, err
	}
	if fixture.ID != userID {
		return nil, ErrNotLoggedIn
	}
	if err := a.store.PutAccount(ctx, fixture); err != nil {
		return nil, fmt.Errorf("refresh account: %w", err)
	}
	return fixture, nil
}

func (a *Accounts) update(ctx context.Context, userID string, fn func(*models.UserAccount) error) (*models.UserAccount, error) {
	acct, err := a.store.UpdateAccount(ctx, userID, fn)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotLoggedIn
	}
	return acct, err
}

type AddressPatch struct {
	Street  *string `json:"street"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zipCode"`
	Country *string `json:"country"`
}

type ProfilePatch struct {
	Name    *string       `json:"name"`
	Email   *string       `json:"email"`
	Phone   *string       `json:"phone"`
	Avatar  *string       `json:"avatar"`
	Address *AddressPatch `json:"address"`
}

// UpdateProfile merges patch and validates the resulting profile as a whole.
func (a *Accounts) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.UserAccount, error) {
	return a.update(ctx, userID, func(u *models.UserAccount) error {
		setString(&u.Name, patch.Name)
		setString(&u.Email, patch.Email)
		setString(&u.Avatar, patch.Avatar)
		if patch.Phone != nil {
			u.Phone = FormatPhone(*patch.Phone)
		}
		if p := patch.Address; p != nil {
			setString(&u.Address.Street, p.Street)
			setString(&u.Address.City, p.City)
			setString(&u.Address.State, p.State)
			setString(&u.Address.ZipCode, p.ZipCode)
			setString(&u.Address.Country, p.Country)
		}
		if errs := ValidateProfile(u); errs != nil {
			return errs
		}
		return nil
	})
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func ValidateProfile(u *models.UserAccount) FieldErrors {
	errs := FieldErrors{}
	switch name := strings.TrimSpace(u.Name); {
	case name == "":
		errs["name"] = "Name is required"
	case len([]rune(name)) < 2:
		errs["name"] = "Name must be at least 2 characters"
	}
	switch {
	case u.Email == "":
		errs["email"] = "Email is required"
	case !ValidEmail(u.Email):
		errs["email"] = "Please enter a valid email address"
	}
	switch {
	case u.Phone == "":
		errs["phone"] = "Phone number is required"
	case !ValidPhone(u.Phone):
		errs["phone"] = "Please enter a valid phone number (XXX) XXX-XXXX"
	}
	if u.Address.Street == "" {
		errs["address.street"] = "Street address is required"
	}
	if u.Address.City == "" {
		errs["address.city"] = "City is required"
	}
	if u.Address.State == "" {
		errs["address.state"] = "State is required"
	}
	switch {
	case u.Address.ZipCode == "":
		errs["address.zipCode"] = "ZIP code is required"
	case !ValidZip(u.Address.ZipCode):
		errs["address.zipCode"] = "Please enter a valid ZIP code"
	}
	switch {
	case u.Address.Country == "":
		errs["address.country"] = "Country is required"
	case !oneOf(u.Address.Country, Countries...):
		errs["address.country"] = "Please select a valid country"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type CommunicationPatch struct {
	Email             *bool `json:"email"`
	SMS               *bool `json:"sms"`
	PushNotifications *bool `json:"pushNotifications"`
	MarketingEmails   *bool `json:"marketingEmails"`
}

type PreferencesPatch struct {
	DietaryRestrictions      []string            `json:"dietaryRestrictions"`
	Allergies                []string            `json:"allergies"`
	Dislikes                 []string            `json:"dislikes"`
	SpiceLevel               *string             `json:"spiceLevel"`
	CookingPreference        *string             `json:"cookingPreference"`
	DeliveryInstructions     *string             `json:"deliveryInstructions"`
	CommunicationPreferences *CommunicationPatch `json:"communicationPreferences"`
}

func (a *Accounts) UpdatePreferences(ctx context.Context, userID string, patch PreferencesPatch) (*models.UserAccount, error) {
	errs := FieldErrors{}
	if patch.SpiceLevel != nil && !oneOf(*patch.SpiceLevel, SpiceLevels...) {
		errs["spiceLevel"] = "Please select a valid spice level"
	}
	if patch.CookingPreference != nil && !oneOf(*patch.CookingPreference, CookingPreferences...) {
		errs["cookingPreference"] = "Please select a valid cooking preference"
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return a.update(ctx, userID, func(u *models.UserAccount) error {
		p := &u.Preferences
		if patch.DietaryRestrictions != nil {
			p.DietaryRestrictions = dedupe(patch.DietaryRestrictions)
		}
		if patch.Allergies != nil {
			p.Allergies = dedupe(patch.Allergies)
		}
		if patch.Dislikes != nil {
			p.Dislikes = dedupe(patch.Dislikes)
		}
		setString(&p.SpiceLevel, patch.SpiceLevel)
		setString(&p.CookingPreference, patch.CookingPreference)
		setString(&p.DeliveryInstructions, patch.DeliveryInstructions)
		if c := patch.CommunicationPreferences; c != nil {
			setBool(&p.CommunicationPreferences.Email, c.Email)
			setBool(&p.CommunicationPreferences.SMS, c.SMS)
			setBool(&p.CommunicationPreferences.PushNotifications, c.PushNotifications)
			setBool(&p.CommunicationPreferences.MarketingEmails, c.MarketingEmails)
		}
		return nil
	})
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

type SettingsPatch struct {
	Notifications *struct {
		OrderUpdates      *bool `json:"orderUpdates"`
		DeliveryReminders *bool `json:"deliveryReminders"`
		PromotionalOffers *bool `json:"promotionalOffers"`
		WeeklyMenu        *bool `json:"weeklyMenu"`
	} `json:"notifications"`
	Privacy *struct {
		ProfileVisibility   *string `json:"profileVisibility"`
		ShareOrderHistory   *bool   `json:"shareOrderHistory"`
		AllowDataCollection *bool   `json:"allowDataCollection"`
	} `json:"privacy"`
	Accessibility *struct {
		FontSize     *string `json:"fontSize"`
		HighContrast *bool   `json:"highContrast"`
		ScreenReader *bool   `json:"screenReader"`
	} `json:"accessibility"`
}

func (a *Accounts) UpdateAccountSettings(ctx context.Context, userID string, patch SettingsPatch) (*models.UserAccount, error) {
	errs := FieldErrors{}
	if p := patch.Privacy; p != nil && p.ProfileVisibility != nil && !oneOf(*p.ProfileVisibility, ProfileVisibility...) {
		errs["privacy.profileVisibility"] = "Please select a valid profile visibility"
	}
	if p := patch.Accessibility; p != nil && p.FontSize != nil && !oneOf(*p.FontSize, FontSizes...) {
		errs["accessibility.fontSize"] = "Please select a valid font size"
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return a.update(ctx, userID, func(u *models.UserAccount) error {
		s := &u.AccountSettings
		if n := patch.Notifications; n != nil {
			setBool(&s.Notifications.OrderUpdates, n.OrderUpdates)
			setBool(&s.Notifications.DeliveryReminders, n.DeliveryReminders)
			setBool(&s.Notifications.PromotionalOffers, n.PromotionalOffers)
			setBool(&s.Notifications.WeeklyMenu, n.WeeklyMenu)
		}
		if p := patch.Privacy; p != nil {
			setString(&s.Privacy.ProfileVisibility, p.ProfileVisibility)
			setBool(&s.Privacy.ShareOrderHistory, p.ShareOrderHistory)
			setBool(&s.Privacy.AllowDataCollection, p.AllowDataCollection)
		}
		if p := patch.Accessibility; p != nil {
			setString(&s.Accessibility.FontSize, p.FontSize)
			setBool(&s.Accessibility.HighContrast, p.HighContrast)
			setBool(&s.Accessibility.ScreenReader, p.ScreenReader)
		}
		return nil
	})
}

type NewPaymentMethod struct {
	Type        string `json:"type"`
	Brand       string `json:"brand"`
	Last4       string `json:"last4"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	IsDefault   bool   `json:"isDefault"`
}

func validatePaymentMethod(pm NewPaymentMethod) FieldErrors {
	errs := FieldErrors{}
	if !oneOf(pm.Type, CardTypes...) {
		errs["type"] = "Card type must be credit or debit"
	}
	if strings.TrimSpace(pm.Brand) == "" {
		errs["brand"] = "Card brand is required"
	}
	if !last4Re.MatchString(pm.Last4) {
		errs["last4"] = "Please enter the last 4 digits of the card"
	}
	if m, err := strconv.Atoi(pm.ExpiryMonth); err != nil || len(pm.ExpiryMonth) != 2 || m < 1 || m > 12 {
		errs["expiryMonth"] = "Please enter a valid expiry month"
	}
	if !last4Re.MatchString(pm.ExpiryYear) {
		errs["expiryYear"] = "Please enter a valid expiry year"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// AddPaymentMethod stores a card. The first card, or one marked default,
// becomes the only default.
func (a *Accounts) AddPaymentMethod(ctx context.Context, userID string, in NewPaymentMethod) (*models.UserAccount, error) {
	if errs := validatePaymentMethod(in); errs != nil {
		return nil, errs
	}
	return a.update(ctx, userID, func(u *models.UserAccount) error {
		pm := models.PaymentMethod{
			ID:          nextCardID(u.PaymentMethods, a.now()),
			Type:        in.Type,
			Brand:       strings.TrimSpace(in.Brand),
			Last4:       in.Last4,
			ExpiryMonth: in.ExpiryMonth,
			ExpiryYear:  in.ExpiryYear,
			IsDefault:   in.IsDefault || len(u.PaymentMethods) == 0,
		}
		if pm.IsDefault {
			for i := range u.PaymentMethods {
				u.PaymentMethods[i].IsDefault = false
			}
		}
		u.PaymentMethods = append(u.PaymentMethods, pm)
		return nil
	})
}

// nextCardID is card-<unix millis>, bumped past any id already taken.
func nextCardID(existing []models.PaymentMethod, now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := "card-" + strconv.FormatInt(ms, 10)
		taken := false
		for _, pm := range existing {
			if pm.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		ms++
	}
}

func (a *Accounts) RemovePaymentMethod(ctx context.Context, userID, id string) (*models.UserAccount, error) {
	return a.update(ctx, userID, func(u *models.UserAccount) error {
		for i, pm := range u.PaymentMethods {
			if pm.ID != id {
				continue
			}
			u.PaymentMethods = append(u.PaymentMethods[:i], u.PaymentMethods[i+1:]...)
			if pm.IsDefault && len(u.PaymentMethods) > 0 {
				u.PaymentMethods[0].IsDefault = true
			}
			return nil
		}
		return ErrPaymentMethodNotFound
	})
}

func (a *Accounts) SetDefaultPaymentMethod(ctx context.Context, userID, id string) (*models.UserAccount, error) {
	return a.update(ctx, userID, func(u *models.UserAccount) error {
		found := false
		for i := range u.PaymentMethods {
			u.PaymentMethods[i].IsDefault = u.PaymentMethods[i].ID == id
			found = found || u.PaymentMethods[i].IsDefault
		}
		if !found {
			return ErrPaymentMethodNotFound
		}
		return nil
	})
}
