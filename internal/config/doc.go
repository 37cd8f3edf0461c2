// Package config provides configuration management for the levelset worker.
//
// Configuration is loaded from environment variables and validated on startup.
// All configuration options have sensible defaults for development: a
// 400×400 sampling grid over [-10,10]×[-10,10], 20 animation frames, level
// de-duplication to 3 decimals and the x1 animation speed (100ms per frame).
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
//
//	x, y := cfg.Sampling().Mesh()
//	interval := cfg.FrameInterval()
package config
