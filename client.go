package adwords

// AdWordsClient is the main entrypoint.
type AdWordsClient struct {
	Config Config
	auth   Auth
	http   *httpClient

	AdGroups *AdGroupsAPI
}

// NewClient constructs an AdWordsClient from an optional adwords_api.yml
// path plus environment fallbacks.
func NewClient(configFile string) (*AdWordsClient, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithParams constructs an AdWordsClient from structured configuration parameters.
func NewClientWithParams(params ConfigParams) (*AdWordsClient, error) {
	cfg, err := LoadConfigWithParams(params)
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig builds an AdWordsClient from a fully parsed Config.
func NewClientWithConfig(cfg Config) (*AdWordsClient, error) {
	httpClient := newHTTPClient(cfg)

	return &AdWordsClient{
		Config:   cfg,
		auth:     httpClient.auth,
		http:     httpClient,
		AdGroups: newAdGroupsAPI(cfg, httpClient),
	}, nil
}

// Close releases HTTP resources.
func (c *AdWordsClient) Close() {
	if c == nil || c.http == nil {
		return
	}
	c.http.close()
}
