package kafka

import "time"

// StockMovementEvent is emitted whenever a workflow changes an item's stock
type StockMovementEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	ProductID   uint      `json:"product_id"`
	Quantity    int       `json:"quantity"`
	ReferenceID uint      `json:"reference_id"` // delivery, transaction, or disposal id
	ActorID     string    `json:"actor_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// SaleLine is one product/quantity pair of an externally recorded sale
type SaleLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// SaleRecordedEvent is consumed from point-of-sale systems and turned into a
// transaction through the regular workflow
type SaleRecordedEvent struct {
	EventID   string     `json:"event_id"`
	EventType string     `json:"event_type"`
	Items     []SaleLine `json:"items"`
	Timestamp time.Time  `json:"timestamp"`
}

// Event types
const (
	EventTypeDeliveryConfirmed = "delivery.confirmed"
	EventTypeProductSold       = "product.sold"
	EventTypeProductDisposed   = "product.disposed"
	EventTypeSaleRecorded      = "sale.recorded"
)

// Kafka topics
const (
	TopicStockMovements = "stock-movements"
	TopicSales          = "sales"
)
