package tracker

import (
	"net/http"

	"iss-tracker/internal/cache"
	"iss-tracker/internal/config"
	"iss-tracker/internal/modules/tracker/controller"
	"iss-tracker/internal/modules/tracker/feed"
	"iss-tracker/internal/modules/tracker/geocode"
	"iss-tracker/internal/modules/tracker/repository"
	"iss-tracker/internal/modules/tracker/service"
)

func RegisterFeature(mux *http.ServeMux, cfg config.Config, store cache.Store) {
	feedClient := feed.NewClient(cfg.FeedURL, cfg.FeedTimeout)
	trackerRepository := repository.NewRepository(store, feedClient)
	geocoder := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderTimeout)
	queries := service.NewQueries(trackerRepository, geocoder)
	trackerController := controller.NewTrackerController(queries)
	trackerController.RegisterRoutes(mux)
}
