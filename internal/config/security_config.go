package config

type Security struct{}

func (Security) GetEnableRateLimiting() bool {
	return GetEnv("ENABLE_RATE_LIMITING", "") == "true"
}

func (Security) GetRateLimit() (float64, int) {
	return 10, 30 // requests per second, burst
}
