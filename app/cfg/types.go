package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	TargetsDir        string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Provider credentials
	SERankingAPIKey    string
	DataForSEOLogin    string
	DataForSEOPassword string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
