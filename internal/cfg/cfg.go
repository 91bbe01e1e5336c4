package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

type Config struct {
	Minio   *MinIOCfg
	Http    *HTTPConfig
	Db      *PGDBCfg
	Redis   *RedisCfg
	Kafka   *KafkaCfg
	GenAI   *GenAICfg
	Index   *IndexCfg
	Pricing *PricingCfg
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет с изображениями товаров
	ArtifactBucket    string // Бакет со снапшотами векторного индекса
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	UploadImagesLimit int // Лимит на макс кол-во загружаемых в S3 фото
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// GenAICfg описывает подключение к хостингу генеративных моделей
// (эмбеддинги + генерация текста, OpenAI-совместимый API).
type GenAICfg struct {
	BaseURL        string
	ApiKey         string
	EmbeddingModel string
	TextModel      string
	MaxRetries     int
	MaxConcurrent  int
	RequestTimeout time.Duration
}

// IndexCfg описывает артефакты снапшота векторного индекса.
type IndexCfg struct {
	VectorsPath     string // путь к бинарному файлу векторов
	IdentityPath    string // путь к JSON-файлу соответствия строка индекса -> product_id
	VectorSize      int    // ожидаемая размерность эмбеддингов
	FromObjectStore bool   // скачивать ли пару артефактов из MinIO при старте
}

type PricingCfg struct {
	DefaultHourlyRate int64 // в пайсах за час, если правило не задано
	DefaultMarginPct  int64
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Локальный .env файл (если есть) подхватывается перед чтением окружения.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to load .env file: %v", err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	genai, err := loadGenAICfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	index, err := loadIndexCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:   minio,
		Http:    http,
		Db:      db,
		Redis:   redis,
		Kafka:   kafka,
		GenAI:   genai,
		Index:   index,
		Pricing: loadPricingCfg(),
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetriesStr := getEnvOrDefault("MAX_RETRIES", strconv.Itoa(defaultMaxRetries))
	maxRetries, err := strconv.Atoi(maxRetriesStr)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    password,
		User:        user,
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ProductTTL:  productTTL,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL         = false
		defaultEndpoint       = "minio:9000"
		defaultArtifactBucket = "index-artifacts"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnv("BUCKET_NAME"),
		ArtifactBucket:    getEnvOrDefault("ARTIFACT_BUCKET", defaultArtifactBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		UploadImagesLimit: 10,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	networkMode := getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode)

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       networkMode,
	}, nil
}

func loadGenAICfg() (*GenAICfg, error) {
	const (
		defaultBaseURL        = "https://api.openai.com/v1"
		defaultEmbeddingModel = "text-embedding-3-small"
		defaultTextModel      = "gpt-4o-mini"
		defaultMaxRetries     = 3
		defaultMaxConcurrent  = 8
		defaultRequestTimeout = 60 * time.Second
	)

	apiKey := os.Getenv("GENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GENAI_API_KEY environment variable is required")
	}

	maxRetries, err := parseIntEnv("GENAI_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, e.Wrap("GENAI_MAX_RETRIES", err)
	}

	maxConcurrent, err := parseIntEnv("GENAI_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		return nil, e.Wrap("GENAI_MAX_CONCURRENT", err)
	}

	requestTimeout, err := parseDurationEnv("GENAI_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		return nil, e.Wrap("GENAI_REQUEST_TIMEOUT", err)
	}

	return &GenAICfg{
		BaseURL:        getEnvOrDefault("GENAI_BASE_URL", defaultBaseURL),
		ApiKey:         apiKey,
		EmbeddingModel: getEnvOrDefault("EMBEDDING_MODEL", defaultEmbeddingModel),
		TextModel:      getEnvOrDefault("TEXT_MODEL", defaultTextModel),
		MaxRetries:     maxRetries,
		MaxConcurrent:  maxConcurrent,
		RequestTimeout: requestTimeout,
	}, nil
}

func loadIndexCfg(log logger.Logger) (*IndexCfg, error) {
	const (
		defaultVectorsPath  = "data/index.vec"
		defaultIdentityPath = "data/index.ids.json"
		defaultVectorSize   = "1536"
	)

	vectorSize, err := strconv.Atoi(getEnvOrDefault("VECTOR_SIZE", defaultVectorSize))
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	fromObjectStore, err := strconv.ParseBool(getEnvOrDefault("INDEX_FROM_OBJECT_STORE", "false"))
	if err != nil {
		log.Errorf(err, "invalid INDEX_FROM_OBJECT_STORE")
		return nil, err
	}

	return &IndexCfg{
		VectorsPath:     getEnvOrDefault("INDEX_VECTORS_PATH", defaultVectorsPath),
		IdentityPath:    getEnvOrDefault("INDEX_IDENTITY_PATH", defaultIdentityPath),
		VectorSize:      vectorSize,
		FromObjectStore: fromObjectStore,
	}, nil
}

func loadPricingCfg() *PricingCfg {
	const (
		defaultHourlyRate = int64(20000) // 200 рупий/час в пайсах
		defaultMarginPct  = int64(15)
	)

	return &PricingCfg{
		DefaultHourlyRate: defaultHourlyRate,
		DefaultMarginPct:  defaultMarginPct,
	}
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
