package orders

import (
	"context"
	"errors"

	"github.com/huaxuan-books/bookstore/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CartStore is the per-user shopping cart. One row per (user, book); adding
// a book already in the cart merges quantities, and the merged quantity is
// validated against stock at write time.
type CartStore interface {
	ListCart(ctx context.Context, userID int64) (*Cart, error)
	AddToCart(ctx context.Context, userID, bookID int64, quantity int) error
	UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, userID, itemID int64) error
	ClearCart(ctx context.Context, userID int64) error
	PurgeInvalid(ctx context.Context) (int64, error)
}

func (r *Repo) ListCart(ctx context.Context, userID int64) (*Cart, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT sc.id, sc.book_id, sc.quantity,
		       b.title, COALESCE(b.author,''), COALESCE(b.cover_image_url,''),
		       b.current_price::text, b.stock_quantity
		FROM shopping_cart sc
		JOIN books b ON b.id = sc.book_id AND b.is_active
		WHERE sc.user_id=$1
		ORDER BY sc.created_at DESC`, userID)
	if err != nil {
		return nil, ErrCartOpFailed.With(err)
	}
	defer rows.Close()

	cart := &Cart{Items: []CartEntry{}, TotalAmount: decimal.Zero}
	for rows.Next() {
		var e CartEntry
		var price string
		b := &catalog.Book{IsActive: true}
		if err := rows.Scan(&e.ID, &e.BookID, &e.Quantity,
			&b.Title, &b.Author, &b.CoverImageURL, &price, &b.StockQuantity); err != nil {
			return nil, ErrCartOpFailed.With(err)
		}
		if b.CurrentPrice, err = decimal.NewFromString(price); err != nil {
			return nil, ErrCartOpFailed.With(err)
		}
		b.ID = e.BookID
		e.UserID = userID
		e.Book = b
		e.TotalPrice = b.CurrentPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
		cart.TotalAmount = cart.TotalAmount.Add(e.TotalPrice)
		cart.ItemCount += e.Quantity
		cart.Items = append(cart.Items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrCartOpFailed.With(err)
	}
	return cart, nil
}

func (r *Repo) AddToCart(ctx context.Context, userID, bookID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ErrCartOpFailed.With(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b, err := lockBook(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, ErrOrderCreateFailed) {
			return ErrCartOpFailed.With(err)
		}
		return err
	}

	// Validate against the combined quantity, not just the increment.
	var existing int
	err = tx.QueryRow(ctx,
		`SELECT quantity FROM shopping_cart WHERE user_id=$1 AND book_id=$2 FOR UPDATE`,
		userID, bookID).Scan(&existing)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return ErrCartOpFailed.With(err)
	}
	if existing+quantity > b.StockQuantity {
		return InsufficientStockErr(b.Title)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO shopping_cart (user_id, book_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET quantity = shopping_cart.quantity + EXCLUDED.quantity, updated_at = now()`,
		userID, bookID, quantity); err != nil {
		return ErrCartOpFailed.With(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return ErrCartOpFailed.With(err)
	}
	return nil
}

func (r *Repo) UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ErrCartOpFailed.With(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var bookID int64
	err = tx.QueryRow(ctx,
		`SELECT book_id FROM shopping_cart WHERE id=$1 AND user_id=$2 FOR UPDATE`,
		itemID, userID).Scan(&bookID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCartItemNotFound
	}
	if err != nil {
		return ErrCartOpFailed.With(err)
	}

	b, err := lockBook(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, ErrOrderCreateFailed) {
			return ErrCartOpFailed.With(err)
		}
		return err
	}
	if quantity > b.StockQuantity {
		return InsufficientStockErr(b.Title)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE shopping_cart SET quantity=$3, updated_at=now() WHERE id=$1 AND user_id=$2`,
		itemID, userID, quantity); err != nil {
		return ErrCartOpFailed.With(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return ErrCartOpFailed.With(err)
	}
	return nil
}

func (r *Repo) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	ct, err := r.DB.Exec(ctx,
		`DELETE FROM shopping_cart WHERE id=$1 AND user_id=$2`, itemID, userID)
	if err != nil {
		return ErrCartOpFailed.With(err)
	}
	if ct.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *Repo) ClearCart(ctx context.Context, userID int64) error {
	if _, err := r.DB.Exec(ctx,
		`DELETE FROM shopping_cart WHERE user_id=$1`, userID); err != nil {
		return ErrCartOpFailed.With(err)
	}
	return nil
}

// PurgeInvalid drops cart rows pointing at delisted or deleted books.
// Dipanggil periodik oleh worker, bukan dari request path.
func (r *Repo) PurgeInvalid(ctx context.Context) (int64, error) {
	ct, err := r.DB.Exec(ctx, `
		DELETE FROM shopping_cart sc
		WHERE NOT EXISTS (SELECT 1 FROM books b WHERE b.id = sc.book_id AND b.is_active)`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
