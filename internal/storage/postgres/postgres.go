package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nanayawb/kentecart/internal/storage"
	"github.com/nanayawb/kentecart/internal/types/order"
	"github.com/nanayawb/kentecart/internal/types/product"
	"github.com/nanayawb/kentecart/internal/types/promo"
	"github.com/nanayawb/kentecart/internal/types/user"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	if err := s.db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'staff',
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL,
            price DOUBLE PRECISION NOT NULL,
            stock INT NOT NULL CHECK (stock >= 0),
            sizes JSONB NOT NULL DEFAULT '[]',
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            number TEXT UNIQUE NOT NULL,
            customer_name TEXT NOT NULL,
            customer_email TEXT NOT NULL,
            customer_phone TEXT NOT NULL DEFAULT '',
            region TEXT NOT NULL,
            address TEXT NOT NULL,
            shipping_method TEXT NOT NULL,
            payment_method TEXT NOT NULL DEFAULT '',
            subtotal DOUBLE PRECISION NOT NULL,
            shipping_cost DOUBLE PRECISION NOT NULL,
            tax DOUBLE PRECISION NOT NULL DEFAULT 0,
            discount DOUBLE PRECISION NOT NULL DEFAULT 0,
            total DOUBLE PRECISION NOT NULL,
            promo_code TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            payment_reference TEXT NOT NULL DEFAULT '',
            tracking_number TEXT NOT NULL DEFAULT '',
            delivered_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id INT NOT NULL REFERENCES orders(id),
            product_id INT NOT NULL,
            name TEXT NOT NULL,
            price DOUBLE PRECISION NOT NULL,
            size TEXT NOT NULL,
            quantity INT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_status_history (
            id SERIAL PRIMARY KEY,
            order_id INT NOT NULL REFERENCES orders(id),
            status TEXT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS promo_codes (
            id SERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            kind TEXT NOT NULL,
            value DOUBLE PRECISION NOT NULL,
            min_subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
            max_uses INT NOT NULL DEFAULT 0,
            uses INT NOT NULL DEFAULT 0,
            expires_at TIMESTAMPTZ,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_counters (
            day TEXT PRIMARY KEY,
            counter INT NOT NULL
        )`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// ---- users ----

func (s *PostgresStorage) CreateUser(ctx context.Context, u *user.User) error {
	q := `INSERT INTO users (login,password_hash,role,created_at) VALUES($1,$2,$3,$4) RETURNING id`
	err := s.db.QueryRowContext(ctx, q, u.Login, u.PasswordHash, u.Role, u.CreatedAt).Scan(&u.ID)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return storage.ErrAlreadyExists
	}
	return err
}

func (s *PostgresStorage) FindUserByLogin(ctx context.Context, login string) (*user.User, error) {
	u := &user.User{}
	q := `SELECT id,login,password_hash,role,created_at FROM users WHERE login=$1`
	if err := s.db.QueryRowContext(ctx, q, login).
		Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// ---- products ----

func (s *PostgresStorage) CreateProduct(ctx context.Context, p *product.Product) error {
	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return fmt.Errorf("marshal sizes: %w", err)
	}
	q := `
        INSERT INTO products (name,description,category,price,stock,sizes,active,created_at,updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`
	return s.db.QueryRowContext(ctx, q,
		p.Name, p.Description, p.Category, p.Price, p.Stock, sizes, p.Active, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (s *PostgresStorage) UpdateProduct(ctx context.Context, p *product.Product) error {
	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return fmt.Errorf("marshal sizes: %w", err)
	}
	q := `
        UPDATE products
        SET name=$1, description=$2, category=$3, price=$4, sizes=$5, active=$6, updated_at=$7
        WHERE id=$8`
	res, err := s.db.ExecContext(ctx, q,
		p.Name, p.Description, p.Category, p.Price, sizes, p.Active, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) FindProductByID(ctx context.Context, id int64) (*product.Product, error) {
	const q = `
        SELECT id, name, description, category, price, stock, sizes, active, created_at, updated_at
        FROM products WHERE id = $1`
	var p product.Product
	var sizes []byte
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &sizes, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
		return nil, fmt.Errorf("unmarshal sizes: %w", err)
	}
	return &p, nil
}

func (s *PostgresStorage) ListProducts(ctx context.Context, category string, activeOnly bool) ([]product.Product, error) {
	q := `
        SELECT id, name, description, category, price, stock, sizes, active, created_at, updated_at
        FROM products
        WHERE ($1 = '' OR category = $1) AND (NOT $2 OR active)
        ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, category, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		var p product.Product
		var sizes []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock, &sizes, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
			return nil, fmt.Errorf("unmarshal sizes: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) SetProductActive(ctx context.Context, id int64, active bool) error {
	q := `UPDATE products SET active=$1, updated_at=now() WHERE id=$2`
	res, err := s.db.ExecContext(ctx, q, active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) AdjustStock(ctx context.Context, id int64, delta int) error {
	q := `UPDATE products SET stock = stock + $1, updated_at=now() WHERE id=$2 AND stock + $1 >= 0`
	res, err := s.db.ExecContext(ctx, q, delta, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, ferr := s.FindProductByID(ctx, id); ferr != nil {
			return ferr
		}
		return storage.ErrStockConflict
	}
	return nil
}

// ---- orders ----

// PlaceOrder persists the order, its items and the initial history entry,
// decrements stock for every line and bumps the promo use counter, all in
// one transaction. The order number is taken from a per-day counter row
// inside the same transaction.
func (s *PostgresStorage) PlaceOrder(ctx context.Context, o *order.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	day := o.CreatedAt.Format("20060102")
	var seq int
	err = tx.QueryRowContext(ctx, `
        INSERT INTO order_counters (day, counter) VALUES ($1, 1)
        ON CONFLICT (day) DO UPDATE SET counter = order_counters.counter + 1
        RETURNING counter`, day).Scan(&seq)
	if err != nil {
		return fmt.Errorf("order counter: %w", err)
	}
	o.Number = fmt.Sprintf("KC-%s-%04d", day, seq)

	for _, it := range o.Items {
		res, err := tx.ExecContext(ctx, `
            UPDATE products SET stock = stock - $1, updated_at = $2
            WHERE id = $3 AND active AND stock >= $1`,
			it.Quantity, o.CreatedAt, it.ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock for product %d: %w", it.ProductID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return storage.ErrStockConflict
		}
	}

	if o.PromoCode != "" {
		res, err := tx.ExecContext(ctx, `
            UPDATE promo_codes SET uses = uses + 1
            WHERE code = $1 AND active AND (max_uses = 0 OR uses < max_uses)`,
			o.PromoCode)
		if err != nil {
			return fmt.Errorf("bump promo %s: %w", o.PromoCode, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return storage.ErrPromoExhausted
		}
	}

	err = tx.QueryRowContext(ctx, `
        INSERT INTO orders (number, customer_name, customer_email, customer_phone,
            region, address, shipping_method, payment_method, subtotal, shipping_cost,
            tax, discount, total, promo_code, status, payment_status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$17)
        RETURNING id`,
		o.Number, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.Region, o.Address, o.ShippingMethod, o.PaymentMethod, o.Subtotal, o.ShippingCost,
		o.Tax, o.Discount, o.Total, o.PromoCode, o.Status, o.PaymentStatus, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err := tx.QueryRowContext(ctx, `
            INSERT INTO order_items (order_id, product_id, name, price, size, quantity)
            VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
			it.OrderID, it.ProductID, it.Name, it.Price, it.Size, it.Quantity,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := appendHistory(ctx, tx, o.ID, o.Status, "order placed", o.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func appendHistory(ctx context.Context, tx *sql.Tx, orderID int64, st order.Status, note string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO order_status_history (order_id, status, note, created_at)
        VALUES ($1,$2,$3,$4)`, orderID, st, note, at)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

const orderColumns = `
    id, number, customer_name, customer_email, customer_phone, region, address,
    shipping_method, payment_method, subtotal, shipping_cost, tax, discount, total,
    promo_code, status, payment_status, payment_reference, tracking_number,
    delivered_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*order.Order, error) {
	var o order.Order
	var deliveredAt sql.NullTime
	err := row.Scan(&o.ID, &o.Number, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.Region, &o.Address, &o.ShippingMethod, &o.PaymentMethod, &o.Subtotal, &o.ShippingCost, &o.Tax,
		&o.Discount, &o.Total, &o.PromoCode, &o.Status, &o.PaymentStatus,
		&o.PaymentReference, &o.TrackingNumber, &deliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	return &o, nil
}

func (s *PostgresStorage) findOrder(ctx context.Context, where string, arg any) (*order.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadOrderChildren(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PostgresStorage) loadOrderChildren(ctx context.Context, o *order.Order) error {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, order_id, product_id, name, price, size, quantity
        FROM order_items WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Size, &it.Quantity); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	hrows, err := s.db.QueryContext(ctx, `
        SELECT id, order_id, status, note, created_at
        FROM order_status_history WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer hrows.Close()
	for hrows.Next() {
		var h order.HistoryEntry
		if err := hrows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Note, &h.CreatedAt); err != nil {
			return err
		}
		o.History = append(o.History, h)
	}
	return hrows.Err()
}

func (s *PostgresStorage) FindOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	return s.findOrder(ctx, `number = $1`, number)
}

func (s *PostgresStorage) FindOrderByReference(ctx context.Context, reference string) (*order.Order, error) {
	return s.findOrder(ctx, `payment_reference = $1`, reference)
}

func (s *PostgresStorage) listOrders(ctx context.Context, where string, args ...any) ([]order.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadOrderChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStorage) ListOrdersByEmail(ctx context.Context, email string) ([]order.Order, error) {
	return s.listOrders(ctx, `LOWER(customer_email) = LOWER($1)`, email)
}

func (s *PostgresStorage) ListOrders(ctx context.Context, status order.Status) ([]order.Order, error) {
	if status == "" {
		return s.listOrders(ctx, "")
	}
	return s.listOrders(ctx, `status = $1`, status)
}

// CancelOrder restores stock for every line and flips the order to
// cancelled in one transaction. Eligibility (status, email ownership) is
// checked by the service before calling here.
func (s *PostgresStorage) CancelOrder(ctx context.Context, orderID int64, note string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	rows, err := tx.QueryContext(ctx, `
        SELECT product_id, quantity FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	type line struct {
		productID int64
		qty       int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.qty); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, `
            UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3`,
			l.qty, now, l.productID); err != nil {
			return fmt.Errorf("restore stock for product %d: %w", l.productID, err)
		}
	}

	res, err := tx.ExecContext(ctx, `
        UPDATE orders SET status=$1, updated_at=$2
        WHERE id=$3 AND status IN ('pending','confirmed')`,
		order.StatusCancelled, now, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The order moved past confirmed between the caller's read and
		// this transaction.
		return storage.ErrStatusConflict
	}

	if err := appendHistory(ctx, tx, orderID, order.StatusCancelled, note, now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStorage) UpdateOrderStatus(ctx context.Context, orderID int64, st order.Status, note, tracking string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	q := `UPDATE orders SET status=$1, updated_at=$2`
	args := []any{st, now}
	if tracking != "" {
		q += `, tracking_number=$3`
		args = append(args, tracking)
	}
	if st == order.StatusDelivered {
		q += fmt.Sprintf(`, delivered_at=$%d`, len(args)+1)
		args = append(args, now)
	}
	q += fmt.Sprintf(` WHERE id=$%d`, len(args)+1)
	args = append(args, orderID)

	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}

	if err := appendHistory(ctx, tx, orderID, st, note, now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStorage) SetPaymentReference(ctx context.Context, orderID int64, reference string) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE orders SET payment_reference=$1, updated_at=now() WHERE id=$2`,
		reference, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkOrderPaid is the single place the paid transition happens. The
// conditional update makes it idempotent: the synchronous verify call and
// the gateway webhook can both invoke it for the same reference and only
// one will append the confirmed history entry. The status guard keeps a
// late success from resurrecting a cancelled order; the payment is still
// recorded on it so staff can see a refund is owed.
func (s *PostgresStorage) MarkOrderPaid(ctx context.Context, reference string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var orderID int64
	err = tx.QueryRowContext(ctx, `
        UPDATE orders SET payment_status=$1, status=$2, updated_at=$3
        WHERE payment_reference=$4 AND payment_status <> $1
          AND status IN ('pending','confirmed')
        RETURNING id`,
		order.PaymentPaid, order.StatusConfirmed, now, reference).Scan(&orderID)
	if err == sql.ErrNoRows {
		return false, s.recordLatePayment(ctx, tx, reference, now)
	}
	if err != nil {
		return false, err
	}

	if err := appendHistory(ctx, tx, orderID, order.StatusConfirmed, "payment received", now); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// recordLatePayment marks the payment received on an order that was
// cancelled while the gateway transaction was in flight, without changing
// its status. Its stock was already restored on cancellation.
func (s *PostgresStorage) recordLatePayment(ctx context.Context, tx *sql.Tx, reference string, now time.Time) error {
	var orderID int64
	err := tx.QueryRowContext(ctx, `
        UPDATE orders SET payment_status=$1, updated_at=$2
        WHERE payment_reference=$3 AND payment_status <> $1 AND status=$4
        RETURNING id`,
		order.PaymentPaid, now, reference, order.StatusCancelled).Scan(&orderID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if err := appendHistory(ctx, tx, orderID, order.StatusCancelled, "payment received after cancellation", now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStorage) MarkPaymentFailed(ctx context.Context, reference string) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE orders SET payment_status=$1, updated_at=now()
        WHERE payment_reference=$2 AND payment_status=$3`,
		order.PaymentFailed, reference, order.PaymentPending)
	return err
}

func (s *PostgresStorage) ListAwaitingPayment(ctx context.Context) ([]order.Order, error) {
	return s.listOrders(ctx, `payment_status = 'pending' AND payment_reference <> ''`)
}

// ---- promo codes ----

func (s *PostgresStorage) CreatePromo(ctx context.Context, p *promo.PromoCode) error {
	q := `
        INSERT INTO promo_codes (code, kind, value, min_subtotal, max_uses, expires_at, active, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`
	err := s.db.QueryRowContext(ctx, q,
		p.Code, p.Kind, p.Value, p.MinSubtotal, p.MaxUses, p.ExpiresAt, p.Active, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return storage.ErrAlreadyExists
	}
	return err
}

func (s *PostgresStorage) UpdatePromo(ctx context.Context, p *promo.PromoCode) error {
	q := `
        UPDATE promo_codes
        SET kind=$1, value=$2, min_subtotal=$3, max_uses=$4, expires_at=$5, active=$6
        WHERE code=$7`
	res, err := s.db.ExecContext(ctx, q,
		p.Kind, p.Value, p.MinSubtotal, p.MaxUses, p.ExpiresAt, p.Active, p.Code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) FindPromoByCode(ctx context.Context, code string) (*promo.PromoCode, error) {
	const q = `
        SELECT id, code, kind, value, min_subtotal, max_uses, uses, expires_at, active, created_at
        FROM promo_codes WHERE code = $1`
	var p promo.PromoCode
	var expiresAt sql.NullTime
	err := s.db.QueryRowContext(ctx, q, code).
		Scan(&p.ID, &p.Code, &p.Kind, &p.Value, &p.MinSubtotal, &p.MaxUses, &p.Uses, &expiresAt, &p.Active, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		p.ExpiresAt = &t
	}
	return &p, nil
}

func (s *PostgresStorage) ListPromos(ctx context.Context) ([]promo.PromoCode, error) {
	const q = `
        SELECT id, code, kind, value, min_subtotal, max_uses, uses, expires_at, active, created_at
        FROM promo_codes ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []promo.PromoCode
	for rows.Next() {
		var p promo.PromoCode
		var expiresAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Code, &p.Kind, &p.Value, &p.MinSubtotal, &p.MaxUses, &p.Uses, &expiresAt, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			p.ExpiresAt = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
