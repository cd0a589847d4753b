package shop

// GMVMode selects how order value is computed.
type GMVMode string

const (
	// GMVNet excludes cancelled and refunded orders and adds platform
	// discounts on top of the sale price. This is the finance view.
	GMVNet GMVMode = "net"
	// GMVGross counts every order at sale price, cancellations and
	// refunds included. This matches the ads manager dashboard.
	GMVGross GMVMode = "gross"
)

// OrderDetail is the per-order breakdown attached to a GMV report.
type OrderDetail struct {
	OrderID    string  `json:"orderId"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
	CreateTime int64   `json:"createTime"`
	Included   bool    `json:"included"`
}

// Report is the aggregated GMV for one shop and window.
type Report struct {
	GMV             float64       `json:"gmv"`
	OrderCount      int           `json:"orderCount"`
	TotalOrderCount int           `json:"totalOrderCount"`
	UniqueCustomers int           `json:"uniqueCustomers"`
	Orders          []OrderDetail `json:"orders"`
}

// AggregateGMV folds a window of orders into a Report under the given
// mode. Unique customers are counted over included orders only;
// orders without any buyer identity do not contribute to the count.
func AggregateGMV(orders []Order, mode GMVMode) Report {
	rep := Report{TotalOrderCount: len(orders)}
	buyers := make(map[string]struct{})

	for _, o := range orders {
		included := mode == GMVGross || (o.Status != StatusCancelled && o.Status != StatusRefunded)

		var amount float64
		for _, li := range o.LineItems {
			amount += parseAmount(li.SalePrice)
			if mode == GMVNet {
				amount += parseAmount(li.PlatformDiscount)
			}
		}

		rep.Orders = append(rep.Orders, OrderDetail{
			OrderID:    o.ID,
			Status:     o.Status,
			Amount:     amount,
			CreateTime: o.CreateTime,
			Included:   included,
		})
		if !included {
			continue
		}
		rep.GMV += amount
		rep.OrderCount++
		if id := o.BuyerID(); id != "" {
			buyers[id] = struct{}{}
		}
	}

	rep.UniqueCustomers = len(buyers)
	return rep
}
