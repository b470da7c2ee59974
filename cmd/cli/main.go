package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/dc-azure-ocr/internal/config"
	"github.com/nerdneilsfield/dc-azure-ocr/internal/logger"
	"github.com/nerdneilsfield/dc-azure-ocr/pkg/azuredi"
	"github.com/nerdneilsfield/dc-azure-ocr/pkg/documentcloud"
	"github.com/nerdneilsfield/dc-azure-ocr/pkg/ocr"
	"github.com/nerdneilsfield/dc-azure-ocr/pkg/utils"
)

var (
	cfg *config.Config
	log *zap.Logger

	// 命令行参数
	configFile string
	envFile    string
	logLevel   string
	dryRun     bool

	// run 命令参数
	paramsJSON   string
	documentIDs  []int64
	query        string
	organization string
	runID        string

	// 输出文件，convert、analyze 和 config gen 共用
	outputToFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dc-azure-ocr",
		Short:         "使用 Azure Document Intelligence 为 DocumentCloud 文档进行OCR",
		Long:          `将 DocumentCloud 中选中的公开文档提交给 Azure Document Intelligence 识别，并把文本和单词位置写回到文档页面。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// 跳过gen命令的配置加载
			if cmd.Name() == "gen" && cmd.Parent().Name() == "config" {
				return nil
			}
			return setup()
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "运行 Add-On：扣除积分、识别并写回选中的文档",
		Args:  cobra.NoArgs,
		RunE:  runAddon,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [URL]",
		Short: "识别单个公开URL并输出页面JSON，不扣积分也不写回",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeURL,
	}

	convertCmd := &cobra.Command{
		Use:   "convert [JSON文件路径]",
		Short: "将保存的分析结果转换为 DocumentCloud 页面JSON",
		Long:  `将已有的 Azure 分析结果 JSON 文件转换为 DocumentCloud 页面格式，无需调用API。`,
		Args:  cobra.ExactArgs(1),
		RunE:  convertJSON,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "管理配置",
	}

	genConfigCmd := &cobra.Command{
		Use:   "gen",
		Short: "生成默认配置",
		Long:  "生成默认配置并输出到标准输出或指定文件",
		RunE:  generateConfig,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "指定配置文件路径")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "加载环境变量的文件，不存在时忽略")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "不执行实际操作，仅打印将要执行的操作")

	runCmd.Flags().StringVar(&paramsJSON, "params", "", "Add-On 运行参数JSON，以@开头表示从文件读取")
	runCmd.Flags().Int64SliceVar(&documentIDs, "documents", nil, "文档ID列表，用逗号分隔")
	runCmd.Flags().StringVar(&query, "query", "", "按搜索查询选择文档")
	runCmd.Flags().StringVar(&organization, "organization", "", "扣除积分的组织ID")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Add-On 运行ID (UUID)")

	analyzeCmd.Flags().StringVarP(&outputToFile, "output", "o", "", "将结果输出到文件而非标准输出")
	convertCmd.Flags().StringVarP(&outputToFile, "output", "o", "", "将结果输出到文件而非标准输出")
	genConfigCmd.Flags().StringVarP(&outputToFile, "output", "o", "", "将配置输出到文件而非标准输出")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(genConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 初始化应用程序
func setup() error {
	var err error

	tempLogger, _ := zap.NewProduction()
	defer tempLogger.Sync()

	// .env 不存在时使用系统环境变量
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("加载环境变量文件失败: %w", err)
		}
		tempLogger.Debug("未找到环境变量文件", zap.String("path", envFile))
	}

	if configFile != "" {
		tempLogger.Info("使用自定义配置文件", zap.String("path", configFile))
		cfg, err = loadCustomConfig(configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		tempLogger.Error("加载配置失败", zap.Error(err))
		return fmt.Errorf("加载配置失败: %w", err)
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log, err = logger.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		tempLogger.Error("初始化日志系统失败", zap.Error(err))
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	log.Debug("配置加载完成",
		zap.String("documentCloudAPI", cfg.DocumentCloudAPIURL),
		zap.String("azureEndpoint", cfg.AzureEndpoint),
		zap.String("model", cfg.AzureModel),
		zap.String("logLevel", cfg.LogLevel))

	return nil
}

// loadCustomConfig 从指定路径加载配置
func loadCustomConfig(configPath string) (*config.Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}
	return config.LoadConfigFromFile(configPath)
}

// newRecognizer 根据配置创建 Azure 客户端，凭据缺失时失败
func newRecognizer(c *config.Config, logger *zap.Logger) (*azuredi.Client, error) {
	client, err := azuredi.NewClient(c.AzureEndpoint, c.AzureKey)
	if err != nil {
		logger.Error("创建OCR客户端失败", zap.Error(err))
		return nil, err
	}
	client.SetAPIVersion(c.AzureAPIVersion)
	client.SetPollInterval(c.PollInterval())
	client.SetLogger(logger.Named("azuredi"))
	return client, nil
}

// newProcessor 创建 Add-On 处理器
// 先创建识别客户端，凭据缺失时不会访问 DocumentCloud
func newProcessor(c *config.Config, logger *zap.Logger) (*ocr.Processor, error) {
	recognizer, err := newRecognizer(c, logger)
	if err != nil {
		return nil, err
	}

	host := documentcloud.NewClient(c.DocumentCloudAPIURL, c.DocumentCloudToken)
	host.SetLogger(logger.Named("documentcloud"))

	processor := ocr.NewProcessor(recognizer, host, logger)
	if utils.IsTerminal() {
		processor.SetProgress(func(total int) ocr.Progress {
			return utils.NewProgressTracker("OCR", total)
		})
	}
	return processor, nil
}

// runAddon 执行 Add-On 运行
func runAddon(cmd *cobra.Command, args []string) error {
	var params *addonParams
	if paramsJSON != "" {
		var err error
		if params, err = parseParams(paramsJSON); err != nil {
			return err
		}
	}

	opts, err := buildRunOptions(params, documentIDs, query, organization, runID)
	if err != nil {
		return err
	}

	processor, err := newProcessor(cfg, log)
	if err != nil {
		return err
	}

	log.Info("开始运行",
		zap.Int64s("documents", opts.Selection.IDs),
		zap.String("query", opts.Selection.Query),
		zap.String("organization", opts.OrganizationID),
		zap.String("runID", opts.RunID))

	if dryRun {
		log.Info("空运行模式，不执行实际操作")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := processor.Run(ctx, opts)
	if err != nil {
		log.Error("运行失败", zap.Error(err))
		return err
	}

	if result.Message != "" {
		fmt.Println(result.Message)
		return nil
	}

	utils.PrintResult(result.Documents, result.Pages, time.Since(start))
	return nil
}

// analyzeURL 识别单个URL并输出页面JSON
func analyzeURL(cmd *cobra.Command, args []string) error {
	documentURL := args[0]
	log.Info("识别URL", zap.String("url", documentURL))

	recognizer, err := newRecognizer(cfg, log)
	if err != nil {
		return err
	}

	if dryRun {
		log.Info("空运行模式，不执行实际操作")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := recognizer.AnalyzeFromURL(ctx, cfg.AzureModel, documentURL)
	if err != nil {
		log.Error("识别URL失败", zap.Error(err))
		return err
	}

	pages, err := ocr.ConvertResult(result)
	if err != nil {
		return err
	}
	return writeJSON(pages)
}

// convertJSON 将保存的分析结果转换为页面JSON
func convertJSON(cmd *cobra.Command, args []string) error {
	jsonPath := args[0]
	log.Info("转换JSON文件", zap.String("file", jsonPath))

	if dryRun {
		log.Info("空运行模式，不执行实际操作")
		return nil
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("读取JSON文件失败: %w", err)
	}

	result, err := azuredi.ParseResult(data)
	if err != nil {
		log.Error("解析JSON失败", zap.Error(err))
		return err
	}

	pages, err := ocr.ConvertResult(result)
	if err != nil {
		log.Error("转换JSON失败", zap.Error(err))
		return err
	}

	log.Info("转换完成", zap.Int("pages", len(pages)))
	return writeJSON(pages)
}

// writeJSON 将页面输出到标准输出或 --output 指定的文件
func writeJSON(pages []documentcloud.Page) error {
	data, err := json.MarshalIndent(map[string]any{"pages": pages}, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化页面失败: %w", err)
	}
	return writeOutput(data)
}

// generateConfig 生成默认配置
func generateConfig(cmd *cobra.Command, args []string) error {
	return writeOutput([]byte(config.GetDefaultConfig()))
}

// writeOutput 输出到标准输出或文件
func writeOutput(data []byte) error {
	if outputToFile == "" {
		fmt.Println(string(data))
		return nil
	}

	dir := filepath.Dir(outputToFile)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
	}

	if err := os.WriteFile(outputToFile, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	fmt.Fprintf(os.Stderr, "已保存到: %s\n", outputToFile)
	return nil
}
