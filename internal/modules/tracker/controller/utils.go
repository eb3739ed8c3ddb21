package controller

import (
	"errors"
	"net/http"
	"strconv"
)

const (
	defaultLimit  = 5
	defaultOffset = 0
)

func parseEpochsQuery(r *http.Request) (limit int, offset int, err error) {
	q := r.URL.Query()

	limit = defaultLimit
	if s := q.Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, 0, errors.New("invalid 'limit' (expected integer)")
		}
		if n < 0 {
			return 0, 0, errors.New("'limit' must be non-negative")
		}
		limit = n
	}

	offset = defaultOffset
	if s := q.Get("offset"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, 0, errors.New("invalid 'offset' (expected integer)")
		}
		if n < 0 {
			return 0, 0, errors.New("'offset' must be non-negative")
		}
		offset = n
	}

	return limit, offset, nil
}
