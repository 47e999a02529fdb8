// =============================================================================
// Lambda: morning-briefing
// =============================================================================
//
// ブリーフィングを生成して OUTPUT_DIR に書き出し、メール設定があれば
// ダイジェストを送るLambda関数
//
// 環境変数:
//   - OUTPUT_DIR:          出力ディレクトリ (デフォルト: /tmp)
//   - CONFIG_FILE:         TOML設定ファイル (任意)
//   - SECTORS_PATH:        セクター設定ファイル (任意、デフォルト: data/sectors.json)
//   - NAVER_CLIENT_ID:     NAVER検索API (任意)
//   - NAVER_CLIENT_SECRET: NAVER検索API (任意)
//   - LOG_LEVEL:           ログレベル (任意)
//   - EMAIL_FROM:          ダイジェスト送信元 (任意)
//   - EMAIL_PASSWORD:      Gmailアプリパスワード (任意)
//   - EMAIL_TO:            ダイジェスト送信先 (任意)
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-lambda-go/lambda"

	"morning-briefing/internal/pipeline"
)

// LambdaConfig は環境変数から読み込む設定
type LambdaConfig struct {
	OutputDir     string
	ConfigFile    string
	SectorsPath   string
	EmailFrom     string
	EmailPassword string
	EmailTo       string
}

// EmailEnabled はメール送信の環境変数が揃っているか
func (c LambdaConfig) EmailEnabled() bool {
	return c.EmailFrom != "" && c.EmailPassword != "" && c.EmailTo != ""
}

// Response はLambdaレスポンス
type Response struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Headlines  int      `json:"headlines"`
	LimitUp    int      `json:"limitUp"`
	Written    []string `json:"written"`
}

// Handler はLambdaのメインハンドラー
func Handler(ctx context.Context, event interface{}) (Response, error) {
	lc := loadConfig(os.Getenv)

	cfg, err := pipeline.LoadConfigFile(lc.ConfigFile)
	if err != nil {
		return Response{StatusCode: 400, Message: err.Error()}, err
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.Output.JSONPath = filepath.Join(lc.OutputDir, "briefing.json")
	cfg.Output.HTMLPath = filepath.Join(lc.OutputDir, "briefing.html")
	if lc.SectorsPath != "" {
		cfg.Output.SectorsPath = lc.SectorsPath
	}
	if err := cfg.Validate(); err != nil {
		return Response{StatusCode: 400, Message: err.Error()}, err
	}

	logger := pipeline.NewLogger(cfg.Logging.Level)
	logger.Info().Str("output_dir", lc.OutputDir).Bool("email", lc.EmailEnabled()).Msg("starting morning-briefing Lambda")

	gen, err := pipeline.NewGenerator(cfg, nil, logger, nil)
	if err != nil {
		return Response{StatusCode: 500, Message: err.Error()}, err
	}
	rec, _ := gen.Generate(ctx)

	resp := Response{
		Headlines: rec.News.Total(),
		LimitUp:   len(rec.LimitUp),
	}

	written, err := pipeline.WriteOutputs(rec, cfg.Output)
	resp.Written = written
	if err != nil {
		resp.StatusCode = 500
		resp.Message = err.Error()
		return resp, err
	}

	if lc.EmailEnabled() {
		sender, err := pipeline.NewEmailSender(lc.EmailFrom, lc.EmailPassword, lc.EmailTo, logger)
		if err == nil {
			err = sender.SendBriefingDigest(ctx, rec)
		}
		if err != nil {
			// ファイルは書けているので 200 のまま返す
			logger.Warn().Err(err).Msg("briefing digest not sent")
		}
	}

	resp.StatusCode = 200
	resp.Message = fmt.Sprintf("Generated briefing for %s: %d headlines, %d limit-up stocks", rec.Date, resp.Headlines, resp.LimitUp)
	return resp, nil
}

// loadConfig は環境変数から設定を読み込む
func loadConfig(getenv func(string) string) LambdaConfig {
	outputDir := getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "/tmp"
	}
	return LambdaConfig{
		OutputDir:     outputDir,
		ConfigFile:    getenv("CONFIG_FILE"),
		SectorsPath:   getenv("SECTORS_PATH"),
		EmailFrom:     getenv("EMAIL_FROM"),
		EmailPassword: getenv("EMAIL_PASSWORD"),
		EmailTo:       getenv("EMAIL_TO"),
	}
}

func main() {
	lambda.Start(Handler)
}
