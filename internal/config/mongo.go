package config

const (
	mongoURIEnv      = "MONGO_URI"
	mongoDatabaseEnv = "MONGO_DATABASE"

	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "agency_crm"
)

type MongoConfig struct {
	URI      string
	Database string
}

func LoadMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:      getEnvOrDefault(mongoURIEnv, defaultMongoURI),
		Database: getEnvOrDefault(mongoDatabaseEnv, defaultMongoDatabase),
	}
}

func (c *MongoConfig) Validate() error {
	if c == nil || c.URI == "" {
		return ErrMongoURIMissing
	}
	return nil
}
