package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultDocumentCloudAPIURL DocumentCloud API 的默认地址
const DefaultDocumentCloudAPIURL = "https://api.www.documentcloud.org/api/"

// Config 应用程序配置
type Config struct {
	// Azure Document Intelligence 配置
	AzureKey        string `mapstructure:"azure_key"`
	AzureEndpoint   string `mapstructure:"azure_endpoint"`
	AzureModel      string `mapstructure:"azure_model"`
	AzureAPIVersion string `mapstructure:"azure_api_version"`
	PollIntervalMS  int    `mapstructure:"poll_interval_ms"`

	// DocumentCloud 配置
	DocumentCloudAPIURL string `mapstructure:"documentcloud_api_url"`
	DocumentCloudToken  string `mapstructure:"documentcloud_token"`

	// 日志配置
	LogLevel  string `mapstructure:"log_level"`
	LogFile   string `mapstructure:"log_file"`
	LogFormat string `mapstructure:"log_format"`
}

// PollInterval 返回轮询分析结果的间隔
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// LoadConfig 从默认路径和环境变量加载配置
func LoadConfig() (*Config, error) {
	setDefaults()
	loadFromEnv()

	if err := loadConfigFile(); err != nil {
		// 找不到配置文件时只使用默认值和环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("加载配置文件出错: %w", err)
		}
	}

	return unmarshal()
}

// LoadConfigFromFile 从指定路径加载配置文件
func LoadConfigFromFile(configPath string) (*Config, error) {
	setDefaults()
	loadFromEnv()

	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	return unmarshal()
}

func unmarshal() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置出错: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults 设置默认配置
func setDefaults() {
	viper.SetDefault("azure_model", "prebuilt-read")
	viper.SetDefault("azure_api_version", "2023-07-31")
	viper.SetDefault("poll_interval_ms", 1000)
	viper.SetDefault("documentcloud_api_url", DefaultDocumentCloudAPIURL)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "console")
}

// loadConfigFile 尝试加载配置文件
func loadConfigFile() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	// 1. 当前工作目录
	viper.AddConfigPath(".")

	// 2. 用户配置目录
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".config", "dc-azure-ocr"))
	}

	// 3. 系统配置目录
	viper.AddConfigPath("/etc/dc-azure-ocr")

	return viper.ReadInConfig()
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv() {
	viper.SetEnvPrefix("DC_OCR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Add-On 运行环境约定的变量名：KEY 为凭据，TOKEN 为服务地址
	_ = viper.BindEnv("azure_key", "KEY")
	_ = viper.BindEnv("azure_endpoint", "TOKEN")
	_ = viper.BindEnv("documentcloud_api_url", "DOCUMENTCLOUD_API_URL")
	_ = viper.BindEnv("documentcloud_token", "DOCUMENTCLOUD_TOKEN")
}

// validateConfig 验证配置
// Azure 凭据缺失不在这里报错，由客户端构造时处理
func validateConfig(config *Config) error {
	if config.DocumentCloudAPIURL == "" {
		config.DocumentCloudAPIURL = DefaultDocumentCloudAPIURL
	}
	if !strings.HasSuffix(config.DocumentCloudAPIURL, "/") {
		config.DocumentCloudAPIURL += "/"
	}

	if config.PollIntervalMS <= 0 {
		config.PollIntervalMS = 1000
	}

	switch config.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("不支持的日志格式: %s", config.LogFormat)
	}

	return nil
}

// GetDefaultConfig 返回默认配置文件内容
func GetDefaultConfig() string {
	return `# DocumentCloud Azure OCR 配置文件

# Azure Document Intelligence 配置
# 凭据和服务地址通常由环境变量 KEY 和 TOKEN 提供
azure_key = ""
azure_endpoint = ""  # 例如 https://<resource>.cognitiveservices.azure.com/
azure_model = "prebuilt-read"  # 仅用于 analyze 命令，run 固定使用 prebuilt-read
azure_api_version = "2023-07-31"
poll_interval_ms = 1000  # 轮询分析结果的间隔（毫秒）

# DocumentCloud 配置
documentcloud_api_url = "https://api.www.documentcloud.org/api/"
documentcloud_token = ""  # 或使用 DOCUMENTCLOUD_TOKEN 环境变量

# 日志配置
log_level = "info"  # debug, info, warn, error
log_file = ""      # 留空表示输出到控制台
log_format = "console"  # console 或 json
`
}
