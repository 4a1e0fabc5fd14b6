package api

import (
	"os"
	"strconv"

	"agrolog/groundstation/internal/common"
	"agrolog/groundstation/internal/db"
	"agrolog/groundstation/internal/db/repositories"
	"agrolog/groundstation/internal/logging"
	"agrolog/groundstation/internal/metrics"
	"agrolog/groundstation/internal/portal"
	"agrolog/groundstation/internal/services"
	"agrolog/groundstation/internal/telemetry"
)

type Repositories struct {
	Records *repositories.RecordRepository
	Keys    *repositories.KeysRepo
}

type Services struct {
	Cache       common.CacheInterface
	Portal      *portal.Client
	Records     *services.RecordsService
	Batch       *services.BatchService
	ShareSigner *common.ShareSignerService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
}

// InitDependencies wires the dependency graph from environment config.
func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		Records: repositories.NewRecordRepository(db.GDB),
		Keys:    repositories.NewApiKeysRepo(db.DB, db.GDB),
	}

	var cacheSvc common.CacheInterface
	if os.Getenv("REDIS_HOST") != "" {
		cacheSvc = common.NewRedisCacheService(common.NewRedisClient())
		logging.Info("Using Redis cache")
	} else {
		cacheSvc = common.NewCacheService(600, 120)
		logging.Info("Using in-memory cache")
	}

	portalClient := portal.NewClient(metricsReg)
	pipeline := telemetry.NewPipeline(regionFromEnv())

	recordsSvc := services.NewRecordsService(portalClient, cacheSvc, repos.Records, pipeline, metricsReg)

	parallelism, _ := strconv.Atoi(os.Getenv("GS_DECODE_PARALLELISM"))
	batchSvc := services.NewBatchService(recordsSvc, parallelism)

	secret := os.Getenv("SHARE_SECRET")
	if secret == "" {
		secret = "groundstation-dev-secret"
		logging.Warn("SHARE_SECRET not set, using development secret")
	}
	signer := common.NewShareSignerService([]byte(secret), cacheSvc)

	svcs := &Services{
		Cache:       cacheSvc,
		Portal:      portalClient,
		Records:     recordsSvc,
		Batch:       batchSvc,
		ShareSigner: signer,
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
	}, nil
}

// regionFromEnv reads the optional geographic acceptance window. All four
// bounds must be present for the filter to apply.
func regionFromEnv() *telemetry.BoundingBox {
	latMin, err1 := strconv.ParseFloat(os.Getenv("FILTER_LAT_MIN"), 64)
	latMax, err2 := strconv.ParseFloat(os.Getenv("FILTER_LAT_MAX"), 64)
	lonMin, err3 := strconv.ParseFloat(os.Getenv("FILTER_LON_MIN"), 64)
	lonMax, err4 := strconv.ParseFloat(os.Getenv("FILTER_LON_MAX"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil
	}
	return &telemetry.BoundingBox{
		LatMin: latMin,
		LatMax: latMax,
		LonMin: lonMin,
		LonMax: lonMax,
	}
}
