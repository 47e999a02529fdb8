// =============================================================================
// logger.go - arbor ロガーと取得結果のログ
// =============================================================================
//
// CLI / Lambda 共通のコンソールロガーを作る。取得結果（FetchOutcome）は
// logOutcome で1件1行に出す。
//
// =============================================================================
package pipeline

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// NewLogger はコンソール出力の arbor ロガーを作る
//
// stdout は出力ファイルパスの表示に使うため、ログは arbor のコンソールライターに任せる。
func NewLogger(level string) arbor.ILogger {
	if level == "" {
		level = "info"
	}
	return arbor.NewLogger().
		WithConsoleWriter(models.WriterConfiguration{
			Type:             models.LogWriterTypeConsole,
			TimeFormat:       "15:04:05",
			DisableTimestamp: false,
		}).
		WithLevelFromString(level)
}

// logOutcome は取得結果を1行ログに出す。失敗は WARN、それ以外は DEBUG。
func logOutcome(logger arbor.ILogger, o FetchOutcome) {
	if logger == nil {
		return
	}
	if o.Status == FetchFailed {
		logger.Warn().
			Err(o.Err).
			Str("source", o.Source).
			Str("category", o.Category).
			Msg("fetch failed")
		return
	}
	logger.Debug().
		Str("source", o.Source).
		Str("category", o.Category).
		Str("status", string(o.Status)).
		Int("count", o.Count).
		Msg("fetch finished")
}
