package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config collects every environment-driven option the services recognize,
// with the fallback defaults documented next to each lookup in Load.
type Config struct {
	Port string

	// Postgres. PostgresURL wins when set; otherwise the DSN is assembled
	// from the individual parts.
	PostgresURL      string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	RabbitURL string

	ElasticsearchAddresses []string

	// Upstream base URLs used by the frontend facade.
	OrderServiceURL   string
	CatalogServiceURL string
	SearchServiceURL  string

	// Bounded-retry settings for dependency connections.
	ConnectAttempts   int
	ConnectRetryDelay time.Duration

	// Health probing.
	ProbeTimeout time.Duration
	// HTTP status reported for a degraded or unhealthy service. The original
	// deployment always answered 200, so that stays the default; set 503 to
	// make orchestrators react.
	HealthFailureStatus int
}

func Load() Config {
	return Config{
		// Empty when unset; each service main applies its own default.
		Port: os.Getenv("PORT"),

		PostgresURL:      os.Getenv("POSTGRES_URL"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		PostgresDB:       getenv("POSTGRES_DB", "postgres"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),

		RabbitURL: rabbitURL(),

		ElasticsearchAddresses: splitCSV(getenv("ELASTICSEARCH_ADDRESSES",
			"http://"+getenv("ELASTICSEARCH_HOST", "localhost")+":"+getenv("ELASTICSEARCH_PORT", "9200"))),

		OrderServiceURL:   getenv("ORDER_SERVICE_URL", "http://order:8081"),
		CatalogServiceURL: getenv("CATALOG_SERVICE_URL", "http://catalog:8082"),
		SearchServiceURL:  getenv("SEARCH_SERVICE_URL", "http://search:8083"),

		ConnectAttempts:   getint("CONNECT_ATTEMPTS", 3),
		ConnectRetryDelay: getduration("CONNECT_RETRY_DELAY", 5*time.Second),

		ProbeTimeout:        getduration("PROBE_TIMEOUT", 1*time.Second),
		HealthFailureStatus: getint("HEALTH_FAILURE_STATUS", 200),
	}
}

// PostgresDSN returns POSTGRES_URL when set, otherwise a DSN built from the
// host/port/db/user/password parts.
func (c Config) PostgresDSN() string {
	if c.PostgresURL != "" {
		return c.PostgresURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

func rabbitURL() string {
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}
	host := getenv("RABBITMQ_HOST", "rabbitmq")
	user := getenv("RABBITMQ_USERNAME", "guest")
	pass := getenv("RABBITMQ_PASSWORD", "guest")
	return "amqp://" + user + ":" + pass + "@" + host + ":5672/"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
