package domain

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// IsTerminal reports whether the payment status admits no further
// transition. Reconciliation must never write past a terminal status.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentCancelled
}

type OrderStatus string

const (
	OrderCreated   OrderStatus = "created"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	MethodPix        PaymentMethod = "Pix"
	MethodCreditCard PaymentMethod = "CreditCard"
)

// Order is the purchase document persisted in the order collection.
// Payment fields (paymentStatus, paidAt) are mutated only by the
// reconciler; lifecycle status past "confirmed" belongs to the order
// pipeline that lives outside this service.
type Order struct {
	ID            string        `bson:"_id,omitempty"`
	PaymentID     string        `bson:"paymentId,omitempty"`
	PaymentMethod PaymentMethod `bson:"paymentMethod"`
	PaymentStatus PaymentStatus `bson:"paymentStatus"`
	Status        OrderStatus   `bson:"status"`
	OwnerID       string        `bson:"ownerId"`
	AmountCents   int64         `bson:"amountCents"`
	PaidAt        *time.Time    `bson:"paidAt,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt"`
}

// OrderChange is one observed transition of an order document, as
// reported by the store's change stream.
type OrderChange struct {
	OrderID      string
	BeforeStatus OrderStatus
	AfterStatus  OrderStatus
	Order        Order
}
