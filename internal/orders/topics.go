package orders

import "strconv"

const (
	TopicOrderCreated   = "bookstore.order.created"
	TopicOrderPaid      = "bookstore.order.paid"
	TopicOrderCancelled = "bookstore.order.cancelled"
)

func Topics() []string {
	return []string{TopicOrderCreated, TopicOrderPaid, TopicOrderCancelled}
}

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
