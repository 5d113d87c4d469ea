package cfg

type Cfg struct {
	// Upstream blog API
	APIBaseURL string
	UserAgent  string

	// Application configuration
	Port                string
	BaseUrl             string
	ThemesFile          string
	PlaceholderImageURL string
	APIAccessKey        string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
