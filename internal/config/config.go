// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（SECRET、数据库地址、SMTP/MinIO 凭证）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	MinIO    MinIOConfig    `yaml:"minio"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	TokenTTL      time.Duration // 身份令牌有效期
	ResetTokenTTL time.Duration // 密码重置链接有效期
	LoginMaxTries int           // 窗口期内允许的登录失败次数
	LoginWindow   time.Duration // 登录限流窗口
}

// UnmarshalYAML 支持 "8760h" / "15m" 形式的时长字面量
// （yaml.v3 不能直接解码 time.Duration）
func (a *AuthConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		TokenTTL      string `yaml:"token_ttl"`
		ResetTokenTTL string `yaml:"reset_token_ttl"`
		LoginMaxTries int    `yaml:"login_max_tries"`
		LoginWindow   string `yaml:"login_window"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parse := func(s string, dst *time.Duration) error {
		if s == "" {
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*dst = d
		return nil
	}

	if err := parse(raw.TokenTTL, &a.TokenTTL); err != nil {
		return err
	}
	if err := parse(raw.ResetTokenTTL, &a.ResetTokenTTL); err != nil {
		return err
	}
	if err := parse(raw.LoginWindow, &a.LoginWindow); err != nil {
		return err
	}
	if raw.LoginMaxTries != 0 {
		a.LoginMaxTries = raw.LoginMaxTries
	}
	return nil
}

// MinIOConfig 对象存储配置，Endpoint 为空表示禁用附件功能
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"-"` // 从 MINIO_ACCESS_KEY 环境变量读取
	SecretKey string `yaml:"-"` // 从 MINIO_SECRET_KEY 环境变量读取
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// SMTPConfig 邮件发送配置，Host 为空时使用日志投递
type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	From string `yaml:"from"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env           Environment
	APIPort       string
	MongoURI      string
	MongoDatabase string
	RedisURL      string
	Secret        string // JWT 签名密钥
	Auth          AuthConfig
	MinIO         MinIOConfig
	SMTP          SMTPConfig
	AdminEmail    string // 启动时确保存在的管理员账号
	AdminPassword string
	BaseURL       string // 邮件中激活/重置链接的前缀
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 环境变量覆盖，构建最终配置
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// 解析环境
	env := parseEnv(getEnv("APP_ENV", "dev"))

	// 加载 YAML 配置
	yamlCfg := loadYAMLConfig(env)

	// 构建最终配置
	cfg := &Config{
		Env:           env,
		APIPort:       getEnv("PORT", yamlCfg.Server.Port),
		MongoURI:      getEnv("MONGODB_URI", buildMongoURI(yamlCfg.Database)),
		MongoDatabase: yamlCfg.Database.Name,
		RedisURL:      getEnv("REDIS_URL", yamlCfg.Redis.URL),
		Secret:        getEnv("SECRET", ""),
		Auth:          yamlCfg.Auth,
		MinIO:         yamlCfg.MinIO,
		SMTP:          yamlCfg.SMTP,
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		BaseURL:       getEnv("BASE_URL", "http://localhost:"+yamlCfg.Server.Port),
	}

	// MinIO 凭证只从环境变量读取
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", "")
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", "")

	// 验证并填充认证默认值
	cfg.Auth.validate()

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	// 1. 初始化默认值
	cfg := &YAMLConfig{
		Server:   ServerConfig{Port: "3000"},
		Database: DatabaseConfig{Host: "localhost", Port: 27017, Name: "articles_cms"},
		Auth: AuthConfig{
			TokenTTL:      365 * 24 * time.Hour,
			ResetTokenTTL: 2 * time.Hour,
			LoginMaxTries: 10,
			LoginWindow:   15 * time.Minute,
		},
		MinIO: MinIOConfig{Bucket: "articles-cms"},
	}

	// 2. 加载 common.yaml（公共配置）
	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	// 3. 加载 {env}.yaml（环境特定配置，覆盖公共配置）
	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildMongoURI 构建 MongoDB 连接字符串
func buildMongoURI(db DatabaseConfig) string {
	return fmt.Sprintf("mongodb://%s:%d", db.Host, db.Port)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏凭证）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Mongo: %s/%s, Redis: %s, Port: %s}",
		c.Env, maskPassword(c.MongoURI), c.MongoDatabase, maskPassword(c.RedisURL), c.APIPort)
}

// maskPassword 隐藏连接串中的密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}

// validate 验证并填充认证默认值
func (a *AuthConfig) validate() {
	if a.TokenTTL == 0 {
		a.TokenTTL = 365 * 24 * time.Hour
	}
	if a.ResetTokenTTL == 0 {
		a.ResetTokenTTL = 2 * time.Hour
	}
	if a.LoginMaxTries == 0 {
		a.LoginMaxTries = 10
	}
	if a.LoginWindow == 0 {
		a.LoginWindow = 15 * time.Minute
	}
}
