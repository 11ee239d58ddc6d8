//-------------------------------------------------------------------------
//
// pgEdge Northwind BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package views

import (
	"github.com/pgEdge/northwind-bi/internal/engine"
)

func init() {
	Register(&definition{
		name:        "kpis",
		title:       "Key Indicators",
		description: "Average tickets, churn rates and the ticket trend by region",
		order:       1,
		panels: []Panel{
			aggregation(engine.KindMeanTicketPerOrder),
			aggregation(engine.KindMeanTicketPerCustomer),
			churn(),
			aggregation(engine.KindTicketTrendByRegion),
		},
	})

	Register(&definition{
		name:        "revenue",
		title:       "Revenue",
		description: "Revenue by region and category and the top employees",
		order:       2,
		panels: []Panel{
			aggregation(engine.KindRevenueByRegion),
			aggregation(engine.KindRevenueByCategory),
			aggregation(engine.KindTopEmployeesByRevenue),
		},
	})

	Register(&definition{
		name:        "inventory",
		title:       "Inventory and Logistics",
		description: "Stock levels, delivery times, freight costs and restock needs",
		order:       3,
		panels: []Panel{
			aggregation(engine.KindStockStatusTotals),
			aggregation(engine.KindDeliveryTimeDistribution),
			aggregation(engine.KindFreightCostByShipper),
			aggregation(engine.KindRestockNeedsByRegion),
		},
	})

	Register(&definition{
		name:        "customers",
		title:       "Customers",
		description: "Customer status, best-selling products and inactive customers",
		order:       4,
		panels: []Panel{
			aggregation(engine.KindCustomerStatusDistribution),
			aggregation(engine.KindTopProductsByQuantity),
			aggregation(engine.KindInactiveCustomersByRegion),
		},
	})
}
