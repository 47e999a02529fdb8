// =============================================================================
// email.go - ブリーフィングのメール配信
// =============================================================================
//
// 生成したブリーフィングをプレーンテキストのダイジェストにして
// Gmail SMTP で送る。Lambda 実行時、環境変数が揃っている場合だけ使う。
//
// 【必要な環境変数】
//   EMAIL_FROM     - 送信元アドレス（Gmail）
//   EMAIL_PASSWORD - Gmailアプリパスワード（通常のパスワードは不可）
//   EMAIL_TO       - 送信先（カンマ区切りで複数可）
//
// 【本文フォーマット】
//
//	모닝 브리핑 2026-01-05 (기준 거래일 2026-01-02)
//
//	[정치]
//	1. 제목...
//	   https://...
//
//	[상한가]
//	- 삼성전자: 실적 호조
//
//	[섹터]
//	반도체: 삼성전자, SK하이닉스
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// EmailConfig はメール送信の設定を保持する
type EmailConfig struct {
	From     string   // 送信元メールアドレス
	Password string   // Gmailアプリパスワード
	To       []string // 送信先メールアドレス（複数可）
	SMTPHost string   // "smtp.gmail.com"
	SMTPPort string   // "587"（STARTTLS）
}

// sendMailFunc は smtp.SendMail と同じシグネチャ（テストで差し替える）
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender はダイジェストメールを送る
type EmailSender struct {
	config     EmailConfig
	logger     arbor.ILogger
	sendMail   sendMailFunc
	maxRetries int
	backoff    time.Duration
}

// NewEmailSender は送信者を作る。to はカンマ区切り。
func NewEmailSender(from, password, to string, logger arbor.ILogger) (*EmailSender, error) {
	if from == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required")
	}
	if password == "" {
		return nil, fmt.Errorf("EMAIL_PASSWORD is required (use Gmail App Password)")
	}

	var toList []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			toList = append(toList, addr)
		}
	}
	if len(toList) == 0 {
		return nil, fmt.Errorf("EMAIL_TO is required")
	}

	return &EmailSender{
		config: EmailConfig{
			From:     from,
			Password: password,
			To:       toList,
			SMTPHost: "smtp.gmail.com",
			SMTPPort: "587",
		},
		logger:     logger,
		sendMail:   smtp.SendMail,
		maxRetries: 3,
		backoff:    2 * time.Second,
	}, nil
}

// SendBriefingDigest はブリーフィングのダイジェストを送る
//
// 見出しも上限価も0件の日でも送る。
func (es *EmailSender) SendBriefingDigest(ctx context.Context, rec *BriefingRecord) error {
	subject := fmt.Sprintf("모닝 브리핑 %s (뉴스 %d건, 상한가 %d종목)",
		rec.Date, rec.News.Total(), len(rec.LimitUp))
	msg := es.buildEmailMessage(subject, BuildDigestBody(rec))
	return es.sendWithRetry(ctx, msg)
}

// BuildDigestBody はプレーンテキストのダイジェスト本文を作る
func BuildDigestBody(rec *BriefingRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "모닝 브리핑 %s (기준 거래일 %s)\n", rec.Date, rec.LastTradingDay)
	if rec.WeekendNote != "" {
		sb.WriteString(rec.WeekendNote + "\n")
	}
	sb.WriteString("\n")

	if rec.News != nil {
		for _, c := range rec.News.Categories {
			hs := rec.News.Get(c)
			if len(hs) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "[%s]\n", CategoryLabel(c))
			for i, h := range hs {
				fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, h.Title, h.URL)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("[상한가]\n")
	if len(rec.LimitUp) == 0 {
		sb.WriteString("- 없음\n")
	}
	for _, e := range rec.LimitUp {
		if e.Reason != "" {
			fmt.Fprintf(&sb, "- %s: %s\n", e.Name, e.Reason)
		} else {
			fmt.Fprintf(&sb, "- %s\n", e.Name)
		}
	}

	if len(rec.SectorOrder) > 0 && rec.Sectors != nil {
		sb.WriteString("\n[섹터]\n")
		for _, s := range rec.SectorOrder {
			fmt.Fprintf(&sb, "%s: %s\n", s, strings.Join(rec.Sectors.Stocks[s], ", "))
		}
	}

	sb.WriteString("\n---\n")
	sb.WriteString("Generated by morning-briefing\n")
	return sb.String()
}

// buildEmailMessage はRFC 5322形式のメッセージを作る
//
// 件名はハングルを含むので RFC 2047（B エンコード）でヘッダーに載せる。
func (es *EmailSender) buildEmailMessage(subject, body string) []byte {
	var msg strings.Builder

	fmt.Fprintf(&msg, "From: %s\r\n", es.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(es.config.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	return []byte(msg.String())
}

// sendWithRetry は 2s → 4s と待機を倍にしながら最大 maxRetries 回送る
func (es *EmailSender) sendWithRetry(ctx context.Context, msg []byte) error {
	var lastErr error
	wait := es.backoff

	for i := 0; i < es.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}

		err := es.send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		if es.logger != nil {
			es.logger.Warn().Err(err).Int("attempt", i+1).Int("max", es.maxRetries).Msg("email send failed")
		}
	}

	return fmt.Errorf("failed to send email after %d retries: %w", es.maxRetries, lastErr)
}

// send は PLAIN 認証で1回送信する
func (es *EmailSender) send(msg []byte) error {
	auth := smtp.PlainAuth("", es.config.From, es.config.Password, es.config.SMTPHost)
	addr := es.config.SMTPHost + ":" + es.config.SMTPPort
	if err := es.sendMail(addr, auth, es.config.From, es.config.To, msg); err != nil {
		return fmt.Errorf("SMTP send failed: %w (check EMAIL_PASSWORD is a Gmail App Password)", err)
	}
	return nil
}
