package cfg

type Cfg struct {
	// Feed configuration
	FeedsFile string

	// Delivery history storage
	HistoryBackend string
	HistoryPath    string

	// Application configuration
	Port                   string
	FetchTimeoutSeconds    int
	DispatchTimeoutSeconds int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
