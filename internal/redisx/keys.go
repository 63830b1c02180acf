package redisx

import "time"

const (
	// Cache status order: order_status:{order_id} -> {"status":"...","updatedAt":"..."}
	KeyOrderStatus = "order_status:%d"

	// Cache detail buku: book:{book_id} -> book JSON
	KeyBook = "book:%d"

	// Cache daftar hot books: books:hot:{limit}
	KeyHotBooks = "books:hot:%d"

	// Dedup event processing di worker: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLBookCache   = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
