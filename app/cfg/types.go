package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Application configuration
	ProfilesDir       string
	Port              string
	AllowedOrigin     string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Marketplace configuration
	MarketplaceURL    string
	SecretsURL        string
	SecretsToken      string
	MarketplaceAPIKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
