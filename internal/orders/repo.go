package orders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/huaxuan-books/bookstore/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Ledger is the transactional boundary for order placement, payment and
// cancellation. Every mutating call is a single all-or-nothing database
// transaction; serialization of concurrent stock movement is the database's
// row locks, never an in-process mutex.
type Ledger interface {
	CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*Order, error)
	ListOrders(ctx context.Context, userID int64, status string, offset, limit int) ([]Order, int, error)
	PayOrder(ctx context.Context, userID, orderID int64, paymentMethod string) (*Order, error)
	CancelOrder(ctx context.Context, userID, orderID int64) (*Order, error)
}

type Repo struct {
	DB         *pgxpool.Pool
	Accounting AccountingMode
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// lockBook takes the row lock that serializes concurrent stock movement on
// this book, then returns the fields the pricing step needs.
func lockBook(ctx context.Context, tx pgx.Tx, bookID int64) (*catalog.Book, error) {
	var b catalog.Book
	var price string
	err := tx.QueryRow(ctx, `
		SELECT id, title, COALESCE(author,''), COALESCE(publisher,''), COALESCE(isbn,''),
		       current_price::text, stock_quantity, is_active
		FROM books WHERE id=$1 AND is_active
		FOR UPDATE`, bookID).
		Scan(&b.ID, &b.Title, &b.Author, &b.Publisher, &b.ISBN, &price, &b.StockQuantity, &b.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, BookNotFoundErr(bookID)
	}
	if err != nil {
		return nil, ErrOrderCreateFailed.With(err)
	}
	if b.CurrentPrice, err = decimal.NewFromString(price); err != nil {
		return nil, ErrOrderCreateFailed.With(err)
	}
	return &b, nil
}

func (r *Repo) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrderItems
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, ErrOrderCreateFailed.With(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock every requested book in request order, once per book, before any
	// validation verdict or write.
	books := make(map[int64]*catalog.Book, len(in.Items))
	for _, it := range in.Items {
		if _, ok := books[it.BookID]; ok {
			continue
		}
		b, err := lockBook(ctx, tx, it.BookID)
		if err != nil {
			return nil, err
		}
		books[it.BookID] = b
	}

	items, total, err := priceOrder(in.Items, books)
	if err != nil {
		return nil, err
	}

	o := &Order{
		UserID:        userID,
		OrderNumber:   NewOrderNumber(),
		TotalAmount:   total,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}

	// ON CONFLICT keeps the tx alive on an order_number collision so we can
	// regenerate and retry once before giving up with a retryable failure.
	for attempt := 0; ; attempt++ {
		err = tx.QueryRow(ctx, `
			INSERT INTO orders (user_id, order_number, total_amount, status, payment_status, payment_method, notes)
			VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
			ON CONFLICT (order_number) DO NOTHING
			RETURNING id, created_at`,
			userID, o.OrderNumber, total.StringFixed(2), o.Status, o.PaymentStatus, o.PaymentMethod, o.Notes).
			Scan(&o.ID, &o.CreatedAt)
		if err == nil {
			break
		}
		if errors.Is(err, pgx.ErrNoRows) && attempt == 0 {
			o.OrderNumber = NewOrderNumber()
			continue
		}
		return nil, ErrOrderCreateFailed.With(err)
	}

	for i := range items {
		it := &items[i]
		it.OrderID = o.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, book_id, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric)
			RETURNING id`,
			o.ID, it.BookID, it.Quantity, it.UnitPrice.StringFixed(2), it.TotalPrice.StringFixed(2)).
			Scan(&it.ID); err != nil {
			return nil, ErrOrderCreateFailed.With(err)
		}

		// Creation-time sales increment applies in both accounting modes.
		ct, err := tx.Exec(ctx, `
			UPDATE books
			SET stock_quantity = stock_quantity - $2,
			    sales_count    = sales_count + $2,
			    updated_at     = now()
			WHERE id=$1 AND stock_quantity >= $2`,
			it.BookID, it.Quantity)
		if err != nil {
			return nil, ErrOrderCreateFailed.With(err)
		}
		if ct.RowsAffected() != 1 {
			return nil, InsufficientStockErr(books[it.BookID].Title)
		}
	}

	// Cart cleanup rides the same commit: a committed order never leaves its
	// books behind in the cart.
	bookIDs := make([]int64, 0, len(in.Items))
	for _, it := range in.Items {
		bookIDs = append(bookIDs, it.BookID)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM shopping_cart WHERE user_id=$1 AND book_id = ANY($2)`, userID, bookIDs); err != nil {
		return nil, ErrOrderCreateFailed.With(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, ErrOrderCreateFailed.With(err)
	}
	o.Items = items
	return o, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var total string
	err := row.Scan(&o.ID, &o.UserID, &o.OrderNumber, &total, &o.Status, &o.PaymentMethod,
		&o.PaymentStatus, &o.Notes, &o.CreatedAt, &o.PaidAt, &o.ShippedAt, &o.DeliveredAt)
	if err != nil {
		return nil, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	return &o, nil
}

const orderColumns = `id, user_id, order_number, total_amount::text, status,
	COALESCE(payment_method,''), payment_status, COALESCE(notes,''),
	created_at, paid_at, shipped_at, delivered_at`

func getOrder(ctx context.Context, q querier, userID, orderID int64, forUpdate bool) (*Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 AND user_id=$2`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, sql, orderID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func loadItems(ctx context.Context, q querier, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.id, oi.book_id, oi.quantity, oi.unit_price::text, oi.total_price::text,
		       b.title, COALESCE(b.author,''), COALESCE(b.publisher,''), COALESCE(b.isbn,''),
		       COALESCE(b.cover_image_url,'')
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		WHERE oi.order_id=$1
		ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		var unit, line string
		b := &catalog.Book{}
		if err := rows.Scan(&it.ID, &it.BookID, &it.Quantity, &unit, &line,
			&b.Title, &b.Author, &b.Publisher, &b.ISBN, &b.CoverImageURL); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, err
		}
		if it.TotalPrice, err = decimal.NewFromString(line); err != nil {
			return nil, err
		}
		b.ID = it.BookID
		it.OrderID = orderID
		it.Book = b
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) GetOrder(ctx context.Context, userID, orderID int64) (*Order, error) {
	o, err := getOrder(ctx, r.DB, userID, orderID, false)
	if err != nil {
		return nil, err
	}
	if o.Items, err = loadItems(ctx, r.DB, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) ListOrders(ctx context.Context, userID int64, status string, offset, limit int) ([]Order, int, error) {
	where := `user_id=$1`
	args := []any{userID}
	if status != "" {
		args = append(args, status)
		where += ` AND status=$2`
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where+
		` ORDER BY created_at DESC LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	for i := range out {
		if out[i].Items, err = loadItems(ctx, r.DB, out[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *Repo) PayOrder(ctx context.Context, userID, orderID int64, paymentMethod string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, ErrPaymentFailed.With(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := getOrder(ctx, tx, userID, orderID, true)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusPaid) {
		return nil, ErrInvalidOrderStatus
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		UPDATE orders
		SET status=$2, payment_status=$3, payment_method=$4, paid_at=$5, updated_at=now()
		WHERE id=$1`,
		o.ID, StatusPaid, PaymentPaid, paymentMethod, now); err != nil {
		return nil, ErrPaymentFailed.With(err)
	}

	items, err := loadItems(ctx, tx, o.ID)
	if err != nil {
		return nil, ErrPaymentFailed.With(err)
	}
	for _, it := range items {
		delta := r.Accounting.paySalesDelta(it.Quantity)
		if delta == 0 {
			continue
		}
		if _, err := tx.Exec(ctx,
			`UPDATE books SET sales_count = sales_count + $2, updated_at = now() WHERE id=$1`,
			it.BookID, delta); err != nil {
			return nil, ErrPaymentFailed.With(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, ErrPaymentFailed.With(err)
	}

	o.Status = StatusPaid
	o.PaymentStatus = PaymentPaid
	o.PaymentMethod = paymentMethod
	o.PaidAt = &now
	o.Items = items
	return o, nil
}

func (r *Repo) CancelOrder(ctx context.Context, userID, orderID int64) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, ErrOrderCancelFailed.With(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := getOrder(ctx, tx, userID, orderID, true)
	if err != nil {
		return nil, err
	}
	if !CanCancel(o.Status) {
		return nil, ErrInvalidOrderStatus
	}

	items, err := loadItems(ctx, tx, o.ID)
	if err != nil {
		return nil, ErrOrderCancelFailed.With(err)
	}

	wasPaid := o.Status == StatusPaid
	for _, it := range items {
		salesBack := r.Accounting.cancelSalesDelta(wasPaid, it.Quantity)
		if _, err := tx.Exec(ctx, `
			UPDATE books
			SET stock_quantity = stock_quantity + $2,
			    sales_count    = GREATEST(sales_count - $3, 0),
			    updated_at     = now()
			WHERE id=$1`,
			it.BookID, it.Quantity, salesBack); err != nil {
			return nil, ErrOrderCancelFailed.With(err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, o.ID, StatusCancelled); err != nil {
		return nil, ErrOrderCancelFailed.With(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, ErrOrderCancelFailed.With(err)
	}

	o.Status = StatusCancelled
	o.Items = items
	return o, nil
}
