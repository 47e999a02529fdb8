package pipeline

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailSender(t *testing.T) {
	_, err := NewEmailSender("", "pw", "to@example.com", nil)
	assert.EqualError(t, err, "EMAIL_FROM is required")

	_, err = NewEmailSender("from@example.com", "", "to@example.com", nil)
	assert.Error(t, err)

	_, err = NewEmailSender("from@example.com", "pw", " , ", nil)
	assert.EqualError(t, err, "EMAIL_TO is required")

	es, err := NewEmailSender("from@example.com", "pw", "a@example.com, b@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, es.config.To)
}

func TestBuildDigestBody(t *testing.T) {
	body := BuildDigestBody(sampleRecord())

	assert.True(t, strings.HasPrefix(body, "모닝 브리핑 2026-01-10 (기준 거래일 2026-01-09)\n금요일 장 기준 브리핑입니다.\n"))
	assert.Contains(t, body, "[정치]\n1. 국회")
	assert.NotContains(t, body, "[경제]")
	assert.Contains(t, body, "- 에코프로: 2차전지 & 수급\n")
	assert.Contains(t, body, "반도체: 삼성전자, SK하이닉스\n")

	empty := BuildDigestBody(&BriefingRecord{Date: "2026-01-12", News: NewNewsSection(DefaultCategories)})
	assert.Contains(t, empty, "[상한가]\n- 없음\n")
	assert.NotContains(t, empty, "[섹터]")
}

func TestSendBriefingDigestRetries(t *testing.T) {
	es, err := NewEmailSender("from@example.com", "pw", "to@example.com", nil)
	require.NoError(t, err)
	es.backoff = 0

	var calls int
	var sent []byte
	es.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		assert.Equal(t, "smtp.gmail.com:587", addr)
		assert.Equal(t, "from@example.com", from)
		assert.Equal(t, []string{"to@example.com"}, to)
		if calls < 3 {
			return errors.New("421 try again")
		}
		sent = msg
		return nil
	}

	require.NoError(t, es.SendBriefingDigest(context.Background(), sampleRecord()))
	assert.Equal(t, 3, calls)

	msg := string(sent)
	assert.Contains(t, msg, "From: from@example.com\r\n")
	assert.Contains(t, msg, "Subject: =?UTF-8?b?")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	assert.Contains(t, msg, "[상한가]\r\n- 에코프로")
}

func TestSendBriefingDigestGivesUp(t *testing.T) {
	es, err := NewEmailSender("from@example.com", "pw", "to@example.com", nil)
	require.NoError(t, err)
	es.backoff = 0

	var calls int
	es.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("535 bad credentials")
	}

	err = es.SendBriefingDigest(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 retries")
	assert.Contains(t, err.Error(), "535")
	assert.Equal(t, 3, calls)
}
