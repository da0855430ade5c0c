package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod is how a sale was settled
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentMpesa PaymentMethod = "mpesa"
	PaymentDebt  PaymentMethod = "debt"
)

// IsRecognized reports whether the method participates in per-method stats
// buckets. Unrecognized methods still count toward total revenue.
func (m PaymentMethod) IsRecognized() bool {
	switch m {
	case PaymentCash, PaymentMpesa, PaymentDebt:
		return true
	default:
		return false
	}
}

// SaleLine is one requested line of a sale, as the caller stated it. The
// internal per-issuance depletion breakdown is not recorded here.
type SaleLine struct {
	InventoryID string  `bson:"inventoryId" json:"inventoryId"`
	ProductName string  `bson:"productName" json:"productName"`
	Unit        string  `bson:"unit" json:"unit"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	Price       float64 `bson:"price" json:"price"`
	Total       float64 `bson:"total" json:"total"`
}

// Sale is a confirmed disposal of collected stock, immutable once created
type Sale struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SaleID        string             `bson:"saleId" json:"saleId"`
	VehicleID     string             `bson:"vehicleId" json:"vehicleId"`
	Items         []SaleLine         `bson:"items" json:"items"`
	PaymentMethod PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	CustomerName  string             `bson:"customerName" json:"customerName"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	SoldAt        time.Time          `bson:"soldAt" json:"soldAt"`
	Date          string             `bson:"date" json:"date"`
	DomainEvents  []DomainEvent      `bson:"-" json:"-"`
}

// NewSale creates a sale record. Each line must carry a positive quantity;
// line totals default to quantity times price when not supplied.
func NewSale(saleID, vehicleID string, lines []SaleLine, paymentMethod PaymentMethod, totalAmount float64, customerName, notes string) (*Sale, error) {
	if len(lines) == 0 {
		return nil, ErrInvalidQuantity
	}
	for i := range lines {
		if lines[i].Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if lines[i].Total == 0 {
			lines[i].Total = float64(lines[i].Quantity) * lines[i].Price
		}
	}
	if customerName == "" {
		customerName = "Walk-in"
	}

	now := time.Now().UTC()
	sale := &Sale{
		ID:            primitive.NewObjectID(),
		SaleID:        saleID,
		VehicleID:     vehicleID,
		Items:         lines,
		PaymentMethod: paymentMethod,
		TotalAmount:   totalAmount,
		CustomerName:  customerName,
		Notes:         notes,
		SoldAt:        now,
		Date:          now.Format("2006-01-02"),
		DomainEvents:  make([]DomainEvent, 0),
	}

	for _, line := range lines {
		sale.addDomainEvent(&SaleRecordedEvent{
			SaleID:        saleID,
			VehicleID:     vehicleID,
			InventoryID:   line.InventoryID,
			ProductName:   line.ProductName,
			Unit:          line.Unit,
			Quantity:      line.Quantity,
			UnitPrice:     line.Price,
			TotalAmount:   line.Total,
			PaymentMethod: string(paymentMethod),
			SoldAt:        now,
		})
	}

	return sale, nil
}

// SalesStats aggregates a set of sales for reporting. Revenue sums every
// sale's TotalAmount; the per-method buckets only cover recognized methods.
type SalesStats struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	CashTotal      float64 `json:"cashTotal"`
	MpesaTotal     float64 `json:"mpesaTotal"`
	DebtTotal      float64 `json:"debtTotal"`
	TotalItemsSold int     `json:"totalItemsSold"`
	SaleCount      int     `json:"saleCount"`
}

// ComputeSalesStats folds sales into aggregate stats
func ComputeSalesStats(sales []*Sale) SalesStats {
	stats := SalesStats{}
	for _, sale := range sales {
		stats.TotalRevenue += sale.TotalAmount
		stats.SaleCount++
		switch sale.PaymentMethod {
		case PaymentCash:
			stats.CashTotal += sale.TotalAmount
		case PaymentMpesa:
			stats.MpesaTotal += sale.TotalAmount
		case PaymentDebt:
			stats.DebtTotal += sale.TotalAmount
		}
		for _, line := range sale.Items {
			stats.TotalItemsSold += line.Quantity
		}
	}
	return stats
}

// addDomainEvent adds a domain event
func (s *Sale) addDomainEvent(event DomainEvent) {
	s.DomainEvents = append(s.DomainEvents, event)
}

// GetDomainEvents returns all domain events
func (s *Sale) GetDomainEvents() []DomainEvent {
	return s.DomainEvents
}

// ClearDomainEvents clears all domain events
func (s *Sale) ClearDomainEvents() {
	s.DomainEvents = make([]DomainEvent, 0)
}
