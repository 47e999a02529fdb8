// =============================================================================
// main.go - モーニングブリーフィング CLI
// =============================================================================
//
// 引数なしで実行でき、ニュース・上限価・セクターを集めて
// briefing.json（と briefing.html）を書き出す。
//
// 【フラグ】
//   --config     設定ファイル（省略時は ./briefing.toml があれば使う）
//   --out        JSON出力先（デフォルト: briefing.json）
//   --html       HTML出力先（デフォルト: briefing.html、"" で出力しない）
//   --sectors    セクター設定（デフォルト: data/sectors.json）
//   --log-level  ログレベル（trace/debug/info/warn/error）
//
// 【終了コード】
//   0: 書き込み成功（一部の取得に失敗していても 0）
//   1: 設定が不正、または出力の書き込みに失敗
//
// 標準出力には書き出したパスだけを出す（ログは arbor のコンソールライター）。
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"morning-briefing/internal/pipeline"
)

const defaultConfigFile = "briefing.toml"

var (
	configFile  string
	outFile     string
	htmlFile    string
	sectorsFile string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "briefing",
	Short:         "Generate the morning briefing (news, limit-up stocks, sectors)",
	Long:          "Collects categorized Korean news headlines, limit-up stocks and the static sector map, then writes briefing.json and briefing.html.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBriefing,
}

func init() {
	defaults := pipeline.DefaultConfig()
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to TOML config file (default ./briefing.toml if present)")
	rootCmd.Flags().StringVarP(&outFile, "out", "o", defaults.Output.JSONPath, "Path to output briefing JSON")
	rootCmd.Flags().StringVar(&htmlFile, "html", defaults.Output.HTMLPath, "Path to output briefing HTML (empty to skip)")
	rootCmd.Flags().StringVarP(&sectorsFile, "sectors", "s", defaults.Output.SectorsPath, "Path to sector map (.json, .yaml, .yml)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runBriefing(cmd *cobra.Command, _ []string) error {
	// .env が無いのは正常（環境変数だけで動く）
	_ = godotenv.Load()

	path := configFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	cfg, err := pipeline.LoadConfigFile(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)

	// 明示されたフラグだけが設定ファイルより優先される
	flags := cmd.Flags()
	if flags.Changed("out") || path == "" {
		cfg.Output.JSONPath = outFile
	}
	if flags.Changed("html") || path == "" {
		cfg.Output.HTMLPath = htmlFile
	}
	if flags.Changed("sectors") || path == "" {
		cfg.Output.SectorsPath = sectorsFile
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := pipeline.NewLogger(cfg.Logging.Level)
	gen, err := pipeline.NewGenerator(cfg, nil, logger, nil)
	if err != nil {
		return err
	}

	rec, _ := gen.Generate(context.Background())

	written, err := pipeline.WriteOutputs(rec, cfg.Output)
	for _, p := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
	}
	return err
}
