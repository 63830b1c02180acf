package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("book not found")

type Repo struct{ DB *pgxpool.Pool }

const bookColumns = `id, title, COALESCE(author,''), COALESCE(publisher,''), COALESCE(isbn,''),
	COALESCE(category,''), COALESCE(description,''), COALESCE(original_price, 0)::text,
	current_price::text, stock_quantity, COALESCE(cover_image_url,''), COALESCE(page_count, 0),
	COALESCE(language,''), is_active, sales_count, view_count, rating::text, created_at`

// Whitelist kolom sort; anything else falls back to created_at.
var sortColumns = map[string]string{
	"created_at":    "created_at",
	"price":         "current_price",
	"current_price": "current_price",
	"sales_count":   "sales_count",
	"rating":        "rating",
	"view_count":    "view_count",
}

func orderClause(sortBy, order string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}

func scanBook(row pgx.Row) (*Book, error) {
	var b Book
	var origPrice, curPrice, rating string
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Publisher, &b.ISBN,
		&b.Category, &b.Description, &origPrice,
		&curPrice, &b.StockQuantity, &b.CoverImageURL, &b.PageCount,
		&b.Language, &b.IsActive, &b.SalesCount, &b.ViewCount, &rating, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if b.OriginalPrice, err = decimal.NewFromString(origPrice); err != nil {
		return nil, err
	}
	if b.CurrentPrice, err = decimal.NewFromString(curPrice); err != nil {
		return nil, err
	}
	if b.Rating, err = decimal.NewFromString(rating); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBooks(rows pgx.Rows) ([]Book, error) {
	defer rows.Close()
	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*Book, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id=$1 AND is_active`, id)
	b, err := scanBook(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// BumpViewCount is best-effort; the detail endpoint still answers when the
// counter update loses a race or fails.
func (r *Repo) BumpViewCount(ctx context.Context, id int64) error {
	_, err := r.DB.Exec(ctx, `UPDATE books SET view_count = view_count + 1 WHERE id=$1`, id)
	return err
}

type ListParams struct {
	Category string
	SortBy   string
	Order    string
	Offset   int
	Limit    int
}

func (r *Repo) List(ctx context.Context, p ListParams) ([]Book, int, error) {
	where := "is_active"
	args := []any{}
	if p.Category != "" {
		args = append(args, p.Category)
		where += fmt.Sprintf(" AND category=$%d", len(args))
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, p.Limit, p.Offset)
	q := fmt.Sprintf(`SELECT %s FROM books WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		bookColumns, where, orderClause(p.SortBy, p.Order), len(args)-1, len(args))
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	books, err := collectBooks(rows)
	return books, total, err
}

type SearchParams struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string
	Order    string
	Offset   int
	Limit    int
}

func (r *Repo) Search(ctx context.Context, p SearchParams) ([]Book, int, error) {
	where := "is_active"
	args := []any{}
	if p.Query != "" {
		args = append(args, "%"+p.Query+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (title ILIKE $%d OR author ILIKE $%d OR publisher ILIKE $%d OR description ILIKE $%d)", n, n, n, n)
	}
	if p.Category != "" {
		args = append(args, p.Category)
		where += fmt.Sprintf(" AND category=$%d", len(args))
	}
	if p.MinPrice != nil {
		args = append(args, p.MinPrice.String())
		where += fmt.Sprintf(" AND current_price >= $%d::numeric", len(args))
	}
	if p.MaxPrice != nil {
		args = append(args, p.MaxPrice.String())
		where += fmt.Sprintf(" AND current_price <= $%d::numeric", len(args))
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM books WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, p.Limit, p.Offset)
	q := fmt.Sprintf(`SELECT %s FROM books WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		bookColumns, where, orderClause(p.SortBy, p.Order), len(args)-1, len(args))
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	books, err := collectBooks(rows)
	return books, total, err
}

func (r *Repo) Categories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT category, COUNT(*) FROM books
		WHERE is_active AND category IS NOT NULL AND category <> ''
		GROUP BY category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) topBooks(ctx context.Context, orderBy string, limit int) ([]Book, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+bookColumns+` FROM books WHERE is_active ORDER BY `+orderBy+` LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

func (r *Repo) Hot(ctx context.Context, limit int) ([]Book, error) {
	return r.topBooks(ctx, "view_count DESC, sales_count DESC", limit)
}

func (r *Repo) New(ctx context.Context, limit int) ([]Book, error) {
	return r.topBooks(ctx, "created_at DESC", limit)
}

func (r *Repo) Recommended(ctx context.Context, limit int) ([]Book, error) {
	return r.topBooks(ctx, "sales_count DESC, rating DESC", limit)
}
