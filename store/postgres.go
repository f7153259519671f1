package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"food-storefront/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores the same state as Memory in the tables created by
// migrations/001_init.sql.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close is a no-op; the pool belongs to package db.
func (p *Postgres) Close() {}

// Seed inserts fixture rows that are not present yet. Rows already in the
// database (possibly edited by admins) are left alone.
func (p *Postgres) Seed(ctx context.Context, seed Seed) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if seed.Account != nil {
			data, err := json.Marshal(seed.Account)
			if err != nil {
				return fmt.Errorf("marshal account: %w", err)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO accounts (user_id, data) VALUES ($1, $2::jsonb)
				ON CONFLICT (user_id) DO NOTHING`,
				seed.Account.ID, string(data),
			); err != nil {
				return fmt.Errorf("seed account: %w", err)
			}
		}
		if seed.Dashboard == nil {
			return nil
		}
		for _, u := range seed.Dashboard.Users {
			if _, err := tx.Exec(ctx, `
				INSERT INTO admin_users (id, name, email, status, join_date, last_login, order_count, total_spent, subscription)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (id) DO NOTHING`,
				u.ID, u.Name, u.Email, u.Status, u.JoinDate, u.LastLogin, u.OrderCount, u.TotalSpent, u.Subscription,
			); err != nil {
				return fmt.Errorf("seed user %s: %w", u.ID, err)
			}
		}
		for _, o := range seed.Dashboard.Orders {
			if err := insertOrder(ctx, tx, o, true); err != nil {
				return fmt.Errorf("seed order %s: %w", o.ID, err)
			}
		}
		for _, s := range seed.Dashboard.Subscriptions {
			if err := insertSubscription(ctx, tx, s, true); err != nil {
				return fmt.Errorf("seed subscription %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

func (p *Postgres) GetVisitor(ctx context.Context, visitorID string) (*models.VisitorState, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT state FROM visitors WHERE visitor_id = $1`, visitorID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			v := models.NewVisitorState()
			return &v, nil
		}
		return nil, err
	}
	return decodeVisitor(raw)
}

func (p *Postgres) UpdateVisitor(ctx context.Context, visitorID string, fn func(*models.VisitorState) error) (*models.VisitorState, error) {
	var out *models.VisitorState
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		initial, err := json.Marshal(models.NewVisitorState())
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO visitors (visitor_id, state) VALUES ($1, $2::jsonb)
			ON CONFLICT (visitor_id) DO NOTHING`,
			visitorID, string(initial),
		); err != nil {
			return err
		}
		var raw []byte
		if err := tx.QueryRow(ctx, `SELECT state FROM visitors WHERE visitor_id = $1 FOR UPDATE`, visitorID).Scan(&raw); err != nil {
			return err
		}
		v, err := decodeVisitor(raw)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal visitor: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE visitors SET state = $2::jsonb, updated_at = now() WHERE visitor_id = $1`, visitorID, string(b)); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeVisitor(raw []byte) (*models.VisitorState, error) {
	v := models.NewVisitorState()
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unmarshal visitor state: %w", err)
	}
	if v.Cart.Items == nil {
		v.Cart.Items = []models.CartItem{}
	}
	if v.Catering.Errors == nil {
		v.Catering.Errors = map[string]string{}
	}
	if v.Catering.FormData.MenuItems == nil {
		v.Catering.FormData.MenuItems = []string{}
	}
	return &v, nil
}

func (p *Postgres) MenuAvailability(ctx context.Context) (map[string]bool, error) {
	rows, err := p.pool.Query(ctx, `SELECT item_id, available FROM menu_availability`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		var available bool
		if err := rows.Scan(&id, &available); err != nil {
			return nil, err
		}
		out[id] = available
	}
	return out, rows.Err()
}

func (p *Postgres) SetMenuAvailability(ctx context.Context, itemID string, available bool) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO menu_availability (item_id, available, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (item_id) DO UPDATE SET available = EXCLUDED.available, updated_at = now()`,
		itemID, available,
	)
	return err
}

func (p *Postgres) ToggleMenuAvailability(ctx context.Context, itemID string, fallback bool) (bool, error) {
	var available bool
	err := p.pool.QueryRow(ctx, `
		INSERT INTO menu_availability (item_id, available, updated_at) VALUES ($1, NOT $2, now())
		ON CONFLICT (item_id) DO UPDATE SET available = NOT menu_availability.available, updated_at = now()
		RETURNING available`,
		itemID, fallback,
	).Scan(&available)
	return available, err
}

func (p *Postgres) GetAccount(ctx context.Context, userID string) (*models.UserAccount, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM accounts WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var a models.UserAccount
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("unmarshal account: %w", err)
	}
	return &a, nil
}

func (p *Postgres) PutAccount(ctx context.Context, account *models.UserAccount) error {
	if account == nil || account.ID == "" {
		return fmt.Errorf("account id is required")
	}
	b, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO accounts (user_id, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		account.ID, string(b),
	)
	return err
}

func (p *Postgres) UpdateAccount(ctx context.Context, userID string, fn func(*models.UserAccount) error) (*models.UserAccount, error) {
	var out *models.UserAccount
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		var raw []byte
		err := tx.QueryRow(ctx, `SELECT data FROM accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&raw)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		var a models.UserAccount
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("unmarshal account: %w", err)
		}
		if err := fn(&a); err != nil {
			return err
		}
		a.ID = userID
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal account: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE accounts SET data = $2::jsonb, updated_at = now() WHERE user_id = $1`, userID, string(b)); err != nil {
			return err
		}
		out = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Postgres) CreateSession(ctx context.Context, s models.Session) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt,
	)
	return err
}

func (p *Postgres) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := p.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) DeleteSession(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (p *Postgres) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

const userColumns = `id, name, email, status, join_date, last_login, order_count, total_spent::float8, subscription`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Status, &u.JoinDate, &u.LastLogin, &u.OrderCount, &u.TotalSpent, &u.Subscription); err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+userColumns+` FROM admin_users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (p *Postgres) UpdateUser(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	var out *models.User
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM admin_users WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		u.ID = id
		if _, err := tx.Exec(ctx, `
			UPDATE admin_users SET name = $2, email = $3, status = $4, last_login = $5,
				order_count = $6, total_spent = $7, subscription = $8
			WHERE id = $1`,
			id, u.Name, u.Email, u.Status, u.LastLogin, u.OrderCount, u.TotalSpent, u.Subscription,
		); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

const orderColumns = `id, customer_name, customer_email, total::float8, status, created_at, items, payment_method, delivery_address`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var items []byte
	if err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Total, &o.Status, &o.Date, &items, &o.PaymentMethod, &o.DeliveryAddress); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
		}
	}
	return &o, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertOrder(ctx context.Context, q execer, o models.Order, ignoreConflict bool) error {
	items := o.Items
	if items == nil {
		items = []string{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	sql := `
		INSERT INTO orders (id, customer_name, customer_email, total, status, created_at, items, payment_method, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)`
	if ignoreConflict {
		sql += ` ON CONFLICT (id) DO NOTHING`
	}
	if _, err := q.Exec(ctx, sql,
		o.ID, o.CustomerName, o.CustomerEmail, o.Total, o.Status, o.Date, string(itemsJSON), o.PaymentMethod, o.DeliveryAddress,
	); err != nil {
		return translateUnique(err, "order", o.ID)
	}
	return nil
}

func (p *Postgres) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (p *Postgres) CreateOrder(ctx context.Context, o models.Order) error {
	return insertOrder(ctx, p.pool, o, false)
}

func (p *Postgres) UpdateOrder(ctx context.Context, id string, fn func(*models.Order) error) (*models.Order, error) {
	var out *models.Order
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
		o.ID = id
		items := o.Items
		if items == nil {
			items = []string{}
		}
		itemsJSON, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("marshal order items: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE orders SET customer_name = $2, customer_email = $3, total = $4, status = $5,
				items = $6::jsonb, payment_method = $7, delivery_address = $8
			WHERE id = $1`,
			id, o.CustomerName, o.CustomerEmail, o.Total, o.Status, string(itemsJSON), o.PaymentMethod, o.DeliveryAddress,
		); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

const subscriptionColumns = `id, plan_name, customer_name, customer_email, status, start_date, next_billing, price::float8, meals_per_week`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var s models.Subscription
	if err := row.Scan(&s.ID, &s.PlanName, &s.CustomerName, &s.CustomerEmail, &s.Status, &s.StartDate, &s.NextBilling, &s.Price, &s.MealsPerWeek); err != nil {
		return nil, err
	}
	return &s, nil
}

func insertSubscription(ctx context.Context, q execer, s models.Subscription, ignoreConflict bool) error {
	sql := `
		INSERT INTO subscriptions (id, plan_name, customer_name, customer_email, status, start_date, next_billing, price, meals_per_week)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if ignoreConflict {
		sql += ` ON CONFLICT (id) DO NOTHING`
	}
	if _, err := q.Exec(ctx, sql,
		s.ID, s.PlanName, s.CustomerName, s.CustomerEmail, s.Status, s.StartDate, s.NextBilling, s.Price, s.MealsPerWeek,
	); err != nil {
		return translateUnique(err, "subscription", s.ID)
	}
	return nil
}

func (p *Postgres) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func (p *Postgres) CreateSubscription(ctx context.Context, s models.Subscription) error {
	return insertSubscription(ctx, p.pool, s, false)
}

func (p *Postgres) UpdateSubscription(ctx context.Context, id string, fn func(*models.Subscription) error) (*models.Subscription, error) {
	var out *models.Subscription
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		s, err := scanSubscription(tx.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		s.ID = id
		if _, err := tx.Exec(ctx, `
			UPDATE subscriptions SET plan_name = $2, customer_name = $3, customer_email = $4, status = $5,
				next_billing = $6, price = $7, meals_per_week = $8
			WHERE id = $1`,
			id, s.PlanName, s.CustomerName, s.CustomerEmail, s.Status, s.NextBilling, s.Price, s.MealsPerWeek,
		); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Postgres) ListCateringRequests(ctx context.Context) ([]models.CateringRequest, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, form_data, status, created_at FROM catering_requests ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CateringRequest
	for rows.Next() {
		var r models.CateringRequest
		var raw []byte
		if err := rows.Scan(&r.ID, &raw, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &r.FormData); err != nil {
			return nil, fmt.Errorf("unmarshal catering request %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateCateringRequest(ctx context.Context, r models.CateringRequest) error {
	b, err := json.Marshal(r.FormData)
	if err != nil {
		return fmt.Errorf("marshal catering form: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO catering_requests (id, form_data, status, created_at) VALUES ($1::uuid, $2::jsonb, $3, $4)`,
		r.ID, string(b), r.Status, r.CreatedAt,
	)
	return translateUnique(err, "catering request", r.ID)
}

// translateUnique turns a unique_violation into a readable duplicate error.
func translateUnique(err error, kind, id string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s %s already exists", kind, id)
	}
	return err
}
