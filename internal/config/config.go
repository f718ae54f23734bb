package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr     string
	LogLevel string
	APIToken string

	RegistryPath string

	FEMAUrl         string
	NWIUrl          string
	CadastralURL    string
	StatewideFLUURL string

	QueryTimeout time.Duration
	QueryRetries int

	WetlandRadiiMeters []float64

	ResultCacheTTL     time.Duration
	ResultCacheMaxSize int

	RedisAddr        string
	ProviderCacheTTL time.Duration
	CacheOpTimeout   time.Duration

	InsecureTLSHosts []string
}

func FromEnv() Config {
	return Config{
		Addr:     getenv("ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		APIToken: getenv("API_TOKEN", ""),

		RegistryPath: getenv("ZONING_REGISTRY_PATH", "zoning_registry.json"),

		FEMAUrl:         getenv("FEMA_NFHL_URL", "https://hazards.fema.gov/arcgis/rest/services/public/NFHL/MapServer/28/query"),
		NWIUrl:          getenv("NWI_URL", "https://services.arcgis.com/P3ePLMYs2RVChkJx/ArcGIS/rest/services/USA_Wetlands/FeatureServer/0/query"),
		CadastralURL:    getenv("FDOR_CADASTRAL_URL", "https://services9.arcgis.com/Gh9awoU677aKree0/arcgis/rest/services/Florida_Statewide_Cadastral/FeatureServer/0/query"),
		StatewideFLUURL: getenv("STATEWIDE_FLU_URL", ""),

		QueryTimeout: getduration("QUERY_TIMEOUT", 10*time.Second),
		QueryRetries: getint("QUERY_RETRIES", 1),

		WetlandRadiiMeters: getradii("WETLAND_RADII_M", []float64{50, 200, 500}),

		ResultCacheTTL:     getduration("RESULT_CACHE_TTL", 30*time.Minute),
		ResultCacheMaxSize: getint("RESULT_CACHE_MAX_ENTRIES", 2000),

		RedisAddr:        getenv("REDIS_ADDR", ""),
		ProviderCacheTTL: getduration("PROVIDER_CACHE_TTL", 7*24*time.Hour),
		CacheOpTimeout:   getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),

		InsecureTLSHosts: getlist("INSECURE_TLS_HOSTS", []string{"gis.highlandsfl.gov", "mgrcmaps.org"}),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parse "host1,host2" into a slice
func getlist(k string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// parse "50,200,500" into an ascending radius triple; falls back to def on
// anything malformed or non-increasing.
func getradii(k string, def []float64) []float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	var out []float64
	for _, p := range strings.Split(v, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || f <= 0 {
			return def
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return def
	}
	for i := 1; i < len(out); i++ {
		if out[i] <= out[i-1] {
			return def
		}
	}
	return out
}
