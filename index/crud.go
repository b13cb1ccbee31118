package index

import (
	"fmt"
)

// query builders
func sortOrder(lim LimitRequest) (string, error) {
	order := "asc"
	if lim.Sort != nil {
		switch *lim.Sort {
		case ASC:
			order = "asc"
		case DESC:
			order = "desc"
		default:
			return "", IndexError{Code: 422, Message: fmt.Sprintf("wrong value for sort parameter: %s", *lim.Sort)}
		}
	}
	return order, nil
}

func limitQuery(lim LimitRequest, settings RequestSettings) (string, error) {
	query := ``
	limit := settings.DefaultLimit
	if lim.Limit != nil {
		limit = *lim.Limit
	}
	if limit < 1 {
		return "", IndexError{Code: 422, Message: fmt.Sprintf("limit must be positive: %d", limit)}
	}
	if settings.MaxLimit > 0 && limit > settings.MaxLimit {
		return "", IndexError{Code: 422, Message: fmt.Sprintf("limit is not allowed: %d > %d", limit, settings.MaxLimit)}
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if lim.Offset != nil {
		if *lim.Offset < 0 {
			return "", IndexError{Code: 422, Message: fmt.Sprintf("offset must be non-negative: %d", *lim.Offset)}
		}
		query += fmt.Sprintf(" OFFSET %d", *lim.Offset)
	}
	return query, nil
}
