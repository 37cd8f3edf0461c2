// Package worker implements the levelset worker lifecycle and Redis Streams integration.
//
// The worker reads plot requests from a Redis stream through a consumer group,
// runs them through the plotter, and publishes results back.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	p, _ := plotter.New(opts, planStore, logger)
//
//	worker := worker.NewWorker(cfg, redisClient, p, logger)
//	if err := worker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Stop()
//
// Each stream entry carries a JSON plotter.Request in its "data" field.
// Results go to RESULT_STREAM; failures go to RESULT_STREAM + ".errors" with
// an error kind of syntax, name_not_allowed, evaluation, invalid_request or
// internal. Every entry is acknowledged, failed or not.
//
// Health checks are provided via a separate HTTP server. /ready answers 200
// only while the worker loop runs and its consumer group exists:
//
//	healthServer := worker.NewHealthServer(8083, redisClient, p, worker, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
