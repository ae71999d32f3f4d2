package catalog

import (
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

type Status string

const (
	Pending   Status = "PENDING"
	Shipped   Status = "SHIPPED"
	Cancelled Status = "CANCELLED"
)

var StatusEnum = typemodel.NewEnum("Status", Pending, Shipped, Cancelled)

type Customer struct {
	Name  string
	Email string
	Tags  []string
}

var CustomerRecord = typemodel.NewRecord("Customer").
	Field("name", typemodel.String, typemodel.Get(func(c Customer) string { return c.Name }), typemodel.NotNull()).
	Field("email", typemodel.String, func(inst any) any {
		if e := inst.(Customer).Email; e != "" {
			return e
		}
		return nil
	}).
	Field("tags", typemodel.ListOf(typemodel.String), typemodel.GetList(func(c Customer) []string { return c.Tags })).
	Canonical(func(args []any) (any, error) {
		return Customer{
			Name:  typemodel.As[string](args[0]),
			Email: typemodel.As[string](args[1]),
			Tags:  typemodel.AsSlice[string](args[2]),
		}, nil
	})

type Line struct {
	SKU      string
	Quantity int32
	Price    float64
}

var LineRecord = typemodel.NewRecord("Line").
	Field("sku", typemodel.String, typemodel.Get(func(l Line) string { return l.SKU }), typemodel.NotNull()).
	Field("quantity", typemodel.Int32, typemodel.Get(func(l Line) int32 { return l.Quantity })).
	Field("price", typemodel.Float64, typemodel.Get(func(l Line) float64 { return l.Price })).
	Canonical(func(args []any) (any, error) {
		return Line{
			SKU:      typemodel.As[string](args[0]),
			Quantity: typemodel.As[int32](args[1]),
			Price:    typemodel.As[float64](args[2]),
		}, nil
	})

type Order struct {
	ID         string
	PlacedAt   int64
	Status     Status
	Customer   *Customer
	Lines      []Line
	Attributes map[string]string
	Discount   *float64
}

var OrderRecord = typemodel.NewRecord("Order").
	Field("id", typemodel.String, typemodel.Get(func(o Order) string { return o.ID }), typemodel.NotNull()).
	Field("placedAt", typemodel.Int64, typemodel.Get(func(o Order) int64 { return o.PlacedAt })).
	Field("status", typemodel.EnumOf(StatusEnum), typemodel.Get(func(o Order) Status { return o.Status }), typemodel.NotNull()).
	Field("customer", typemodel.RecordOf(CustomerRecord), typemodel.GetPtr(func(o Order) *Customer { return o.Customer })).
	Field("lines", typemodel.ListOf(typemodel.RecordOf(LineRecord)), typemodel.GetList(func(o Order) []Line { return o.Lines })).
	Field("attributes", typemodel.MapOf(typemodel.String, typemodel.String), typemodel.GetMap(func(o Order) map[string]string { return o.Attributes })).
	Field("discount", typemodel.Boxed(typemodel.Float64), typemodel.GetPtr(func(o Order) *float64 { return o.Discount })).
	Canonical(func(args []any) (any, error) {
		return Order{
			ID:         typemodel.As[string](args[0]),
			PlacedAt:   typemodel.As[int64](args[1]),
			Status:     typemodel.As[Status](args[2]),
			Customer:   typemodel.AsPtr[Customer](args[3]),
			Lines:      typemodel.AsSlice[Line](args[4]),
			Attributes: typemodel.AsMap[string, string](args[5]),
			Discount:   typemodel.AsPtr[float64](args[6]),
		}, nil
	})

// OrderSummary reads the id and status of orders.
type OrderSummary struct {
	ID     string
	Status string
}

var OrderSummaryRecord = typemodel.NewRecord("OrderSummary").
	Field("id", typemodel.String, typemodel.Get(func(o OrderSummary) string { return o.ID })).
	Field("status", typemodel.String, typemodel.Get(func(o OrderSummary) string { return o.Status })).
	Canonical(func(args []any) (any, error) {
		return OrderSummary{ID: typemodel.As[string](args[0]), Status: typemodel.As[string](args[1])}, nil
	})

func orders() []any {
	discount := 0.1
	return []any{
		Order{
			ID:       "o-1",
			PlacedAt: 1700000000,
			Status:   Shipped,
			Customer: &Customer{Name: "Ada", Email: "ada@example.com", Tags: []string{"vip"}},
			Lines: []Line{
				{SKU: "pen", Quantity: 3, Price: 1.5},
				{SKU: "ink", Quantity: 1, Price: 7.25},
			},
			Attributes: map[string]string{"channel": "web", "gift": "yes"},
			Discount:   &discount,
		},
		Order{ID: "o-2", PlacedAt: 1700003600, Status: Pending},
	}
}

func customers() []any {
	return []any{
		Customer{Name: "Ada", Email: "ada@example.com", Tags: []string{"vip", "early"}},
		Customer{Name: "Grace"},
	}
}

func init() {
	for _, e := range []Entry{
		{Record: OrderRecord, Description: "order with customer, lines and attributes", Samples: orders},
		{Record: CustomerRecord, Description: "customer with tags", Samples: customers},
		{Record: LineRecord, Description: "order line"},
		{Record: OrderSummaryRecord, Description: "projection of Order onto id and status"},
	} {
		if err := Register(e); err != nil {
			panic(err)
		}
	}
}
