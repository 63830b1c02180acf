package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/huaxuan-books/bookstore/internal/catalog"
	"github.com/huaxuan-books/bookstore/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CatalogHandler serves the public, unauthenticated read side of the store.
type CatalogHandler struct {
	Repo    *catalog.Repo
	Redis   *redis.Client
	PerPage int
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Route("/api/book", func(r chi.Router) {
		r.Get("/", h.listBooks)
		r.Get("/search", h.searchBooks)
		r.Get("/categories", h.categories)
		r.Get("/hot", h.hotBooks)
		r.Get("/new", h.newBooks)
		r.Get("/recommended", h.recommendedBooks)
		r.Get("/{id}", h.getBook)
	})
}

func (h *CatalogHandler) listBooks(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r, h.PerPage)
	q := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	books, total, err := h.Repo.List(ctx, catalog.ListParams{
		Category: q.Get("category"),
		SortBy:   q.Get("sortBy"),
		Order:    q.Get("order"),
		Offset:   (page - 1) * perPage,
		Limit:    perPage,
	})
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, map[string]any{
		"books":      books,
		"pagination": paginate(page, perPage, total),
	}, "")
}

func (h *CatalogHandler) getBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Fail(w, catalog.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// View bump selalu jalan, cache hit atau miss.
	_ = h.Repo.BumpViewCount(ctx, id)

	key := fmt.Sprintf(redisx.KeyBook, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			var b catalog.Book
			if json.Unmarshal([]byte(s), &b) == nil {
				OK(w, http.StatusOK, &b, "")
				return
			}
		}
	}

	b, err := h.Repo.Get(ctx, id)
	if err != nil {
		Fail(w, err)
		return
	}
	if h.Redis != nil {
		if raw, err := json.Marshal(b); err == nil {
			_ = h.Redis.Set(ctx, key, raw, redisx.TTLBookCache).Err()
		}
	}
	OK(w, http.StatusOK, b, "")
}

func (h *CatalogHandler) searchBooks(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r, h.PerPage)
	q := r.URL.Query()

	p := catalog.SearchParams{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		SortBy:   q.Get("sortBy"),
		Order:    q.Get("order"),
		Offset:   (page - 1) * perPage,
		Limit:    perPage,
	}
	if v := q.Get("minPrice"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			p.MinPrice = &d
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			p.MaxPrice = &d
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	books, total, err := h.Repo.Search(ctx, p)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, map[string]any{
		"books":      books,
		"pagination": paginate(page, perPage, total),
	}, "")
}

func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Repo.Categories(ctx)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, cats, "")
}

func (h *CatalogHandler) hotBooks(w http.ResponseWriter, r *http.Request) {
	limit := topLimit(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyHotBooks, limit)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			var books []catalog.Book
			if json.Unmarshal([]byte(s), &books) == nil {
				OK(w, http.StatusOK, books, "")
				return
			}
		}
	}

	books, err := h.Repo.Hot(ctx, limit)
	if err != nil {
		Fail(w, err)
		return
	}
	if h.Redis != nil {
		if raw, err := json.Marshal(books); err == nil {
			_ = h.Redis.Set(ctx, key, raw, redisx.TTLBookCache).Err()
		}
	}
	OK(w, http.StatusOK, books, "")
}

func (h *CatalogHandler) newBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	books, err := h.Repo.New(ctx, topLimit(r))
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, books, "")
}

func (h *CatalogHandler) recommendedBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	books, err := h.Repo.Recommended(ctx, topLimit(r))
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, http.StatusOK, books, "")
}

func topLimit(r *http.Request) int {
	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 50 {
		limit = v
	}
	return limit
}
