package store

import (
	"fmt"
	"strings"
)

const defaultQueryLimit = 100

// ToSQL renders the device query as data and count SQL with positional
// args. OrderBy is restricted to a fixed allowlist.
func (q *DeviceQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var where []string

	if q.DealClass != nil {
		args = append(args, *q.DealClass)
		where = append(where, fmt.Sprintf("deal_class = $%d", len(args)))
	}
	if q.Grade != nil {
		args = append(args, *q.Grade)
		where = append(where, fmt.Sprintf("final_grade = $%d", len(args)))
	}
	if q.HotSellerOnly {
		where = append(where, "hot_seller")
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var orderSQL string
	switch q.OrderBy {
	case "buyback_value":
		orderSQL = "buyback_value DESC"
	case "risk_score":
		orderSQL = "risk_score ASC"
	default:
		orderSQL = "last_updated DESC"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	dataSQL = "SELECT " + deviceColumns + " FROM devices" + whereSQL +
		fmt.Sprintf(" ORDER BY %s LIMIT %d OFFSET %d", orderSQL, limit, q.Offset)
	countSQL = "SELECT COUNT(*) FROM devices" + whereSQL

	return dataSQL, countSQL, args
}
