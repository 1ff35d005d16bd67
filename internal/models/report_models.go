package models

import "time"

// MovementSummaryRow aggregates the ledger per article over a date range.
type MovementSummaryRow struct {
	ArticleID    int64  `json:"article_id"`
	ArticleName  string `json:"article_name"`
	SKU          string `json:"sku"`
	TotalIn      int    `json:"total_in"`
	TotalOut     int    `json:"total_out"`
	Adjustments  int    `json:"adjustments"`
	NetChange    int    `json:"net_change"`
	CurrentStock int    `json:"current_stock"`
}

// ReportFilters defines the available filters for ledger reports.
type ReportFilters struct {
	ArticleID *int64     `form:"article_id"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
}
