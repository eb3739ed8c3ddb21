package httpapi

import (
	"net/http"

	"github.com/redis/go-redis/v9"
)

func NewMux(rdb *redis.Client) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, rdb)
	return mux
}
