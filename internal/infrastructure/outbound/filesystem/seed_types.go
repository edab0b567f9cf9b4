package filesystem

// seedDefinition is the deserialization target for seed files. The shape is
// the authoring payload: a file holds one definition or a list of them.
type seedDefinition struct {
	EndpointID       string            `yaml:"endpointId" json:"endpointId"`
	Method           string            `yaml:"method" json:"method"`
	StatusCode       int               `yaml:"statusCode" json:"statusCode"`
	Delay            int               `yaml:"delay" json:"delay"`
	ResponseTemplate string            `yaml:"responseTemplate" json:"responseTemplate"`
	Scenarios        []seedScenario    `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
	Engine           string            `yaml:"engine,omitempty" json:"engine,omitempty"`
	Headers          map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	ContentType      string            `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	Policy           *seedPolicy       `yaml:"policy,omitempty" json:"policy,omitempty"`
}

type seedScenario struct {
	Name             string `yaml:"name" json:"name"`
	Condition        string `yaml:"condition,omitempty" json:"condition,omitempty"`
	StatusCode       int    `yaml:"statusCode" json:"statusCode"`
	Delay            int    `yaml:"delay" json:"delay"`
	ResponseTemplate string `yaml:"responseTemplate" json:"responseTemplate"`
}

type seedPolicy struct {
	RateLimit *seedRateLimit `yaml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
}

type seedRateLimit struct {
	Rate  float64 `yaml:"rate" json:"rate"`
	Burst int     `yaml:"burst" json:"burst"`
	Key   string  `yaml:"key,omitempty" json:"key,omitempty"`
}
