package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "삼성전자 상한가", CleanTitle("[특징주] 삼성전자(005930)  상한가"))
	assert.Equal(t, "에코프로 상한가", CleanTitle("【속보】 에코프로（086520） 상한가"))
	assert.Equal(t, "", CleanTitle("[특징주]"))
}

func TestExtractNames(t *testing.T) {
	ex := NewExtractor("상한가")
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{"middle dot", "삼성전자·LG전자 상한가 — 실적 호조", []string{"삼성전자", "LG전자"}},
		{"raw title with tag", "[특징주] 삼성전자·LG전자 상한가 — 실적 호조", []string{"삼성전자", "LG전자"}},
		{"raw title with code", "【속보】 에코프로(086520) 상한가", []string{"에코프로"}},
		{"single", "에코프로 상한가: 2차전지 수급 쏠림", []string{"에코프로"}},
		{"spaced ampersand", "SK하이닉스 & 한미반도체 상한가", []string{"SK하이닉스", "한미반도체"}},
		{"ampersand inside name", "S&T모티브 상한가", []string{"S&T모티브"}},
		{"slash and bullet", "현대차/기아•현대모비스 상한가", []string{"현대차", "기아", "현대모비스"}},
		{"conjunction", "셀트리온 및 유한양행 상한가", []string{"셀트리온", "유한양행"}},
		{"attached particle", "삼성전자와 SK하이닉스 상한가", []string{"삼성전자", "SK하이닉스"}},
		{"quoted", "“셀트리온” 상한가", []string{"셀트리온"}},
		{"loose pass", "에코프로% 상한가", []string{"에코프로"}},
		{"digits only rejected", "1,000 상한가", []string{}},
		{"duplicates", "삼성전자·삼성전자 상한가", []string{"삼성전자"}},
		{"no keyword", "삼성전자 급등", []string{}},
		{"keyword first", "상한가 직행한 종목은", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.ExtractNames(tt.title))
		})
	}
}

func TestExtractNameFromBody(t *testing.T) {
	ex := NewExtractor("상한가")
	assert.Equal(t, "에코프로", ex.ExtractNameFromBody("코스닥 시장에서 에코프로 상한가 기록"))
	assert.Equal(t, "알테오젠", ex.ExtractNameFromBody("알테오젠상한가 직행"))
	assert.Equal(t, "", ex.ExtractNameFromBody("오늘은 특별한 움직임이 없었다"))
	assert.Equal(t, "", ex.ExtractNameFromBody(""))
	assert.Equal(t, "", ex.ExtractNameFromBody("30 상한가"))
}

func TestExtractReason(t *testing.T) {
	ex := NewExtractor("상한가")

	t.Run("colon", func(t *testing.T) {
		reason := ex.ExtractReason("에코프로 상한가: 2차전지 수급 쏠림")
		assert.Equal(t, "2차전지 수급 쏠림", reason)
		assert.Equal(t, 10, runeLen(reason))
	})
	t.Run("em dash", func(t *testing.T) {
		assert.Equal(t, "실적 호조", ex.ExtractReason("삼성전자·LG전자 상한가 — 실적 호조"))
		assert.Equal(t, "실적 호조", ex.ExtractReason("[특징주] 삼성전자·LG전자 상한가 — 실적 호조"))
	})
	t.Run("spaced hyphen", func(t *testing.T) {
		assert.Equal(t, "무상증자 결정", ex.ExtractReason("S-Oil 상한가 - 무상증자 결정"))
	})
	t.Run("too short separator falls through", func(t *testing.T) {
		assert.Equal(t, "외국인 매수세 유입 | 속보", ex.ExtractReason("한미반도체 상한가 외국인 매수세 유입 | 속보"))
	})
	t.Run("after keyword", func(t *testing.T) {
		assert.Equal(t, "기록 외국인 매수세", ex.ExtractReason("한미반도체 상한가 기록 외국인 매수세"))
	})
	t.Run("whole title", func(t *testing.T) {
		assert.Equal(t, "알테오젠 상한가 직행", ex.ExtractReason("알테오젠 상한가 직행"))
	})
	t.Run("long title truncated", func(t *testing.T) {
		reason := ex.ExtractReason("알테오젠 상한가 " + strings.Repeat("가", 70))
		assert.Equal(t, 60, runeLen(reason))
	})
}

func TestExtractLimitUp(t *testing.T) {
	ex := NewExtractor("상한가")
	headlines := []Headline{
		{Title: "[특징주] 삼성전자·LG전자 상한가 — 실적 호조", URL: "https://a/1"},
		{Title: "코스피 마감 시황", URL: "https://a/2"},
		{Title: "[특징주] 에코프로 상한가: 2차전지 수급 쏠림", URL: "https://a/3"},
		{Title: "삼성전자 상한가? 실적 기대감", URL: "https://a/4"},
		{Title: "상한가 직행한 종목은", URL: "https://a/5"},
	}

	var fetched []string
	body := func(u string) string {
		fetched = append(fetched, u)
		return "코스닥 시장에서 알테오젠 상한가 기록"
	}

	got := ex.ExtractLimitUp(headlines, body, 10)
	assert.Equal(t, []LimitUpEntry{
		{Name: "삼성전자", Reason: "실적 호조"},
		{Name: "LG전자", Reason: "실적 호조"},
		{Name: "에코프로", Reason: "2차전지 수급 쏠림"},
		{Name: "알테오젠", Reason: "직행한 종목은"},
	}, got)
	assert.Equal(t, []string{"https://a/5"}, fetched)

	t.Run("cap", func(t *testing.T) {
		got := ex.ExtractLimitUp(headlines, body, 2)
		require.Len(t, got, 2)
		assert.Equal(t, "LG전자", got[1].Name)
	})
	t.Run("no body fetcher", func(t *testing.T) {
		got := ex.ExtractLimitUp(headlines[4:], nil, 10)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})
	t.Run("zero max", func(t *testing.T) {
		assert.Empty(t, ex.ExtractLimitUp(headlines, body, 0))
	})
}

type stubSearch struct {
	name    string
	results map[string][]Headline
	errs    map[string]error
	queries []string
}

func (s *stubSearch) Name() string { return s.name }

func (s *stubSearch) Search(_ context.Context, query string, limit int) ([]Headline, error) {
	s.queries = append(s.queries, query)
	if err := s.errs[query]; err != nil {
		return nil, err
	}
	return capHeadlines(s.results[query], limit), nil
}

func TestCollectLimitUpHeadlines(t *testing.T) {
	ex := NewExtractor("상한가")
	search := &stubSearch{
		name: "google",
		results: map[string][]Headline{
			"상한가": {
				{Title: "에코프로 상한가", URL: "u1"},
				{Title: "코스피 하락 마감", URL: "u2"},
			},
			"특징주 상한가": {
				{Title: "에코프로 상한가", URL: "u1-dup"},
				{Title: "알테오젠 상한가", URL: "u3"},
			},
		},
		errs: map[string]error{"상한가 종목": errors.New("boom")},
	}

	hs, outcomes := ex.CollectLimitUpHeadlines(context.Background(), search,
		[]string{"상한가", "상한가 종목", "특징주 상한가"}, 20, NewThrottle(0), nil)

	assert.Equal(t, []Headline{
		{Title: "에코프로 상한가", URL: "u1"},
		{Title: "알테오젠 상한가", URL: "u3"},
	}, hs)
	assert.Equal(t, []string{"상한가", "상한가 종목", "특징주 상한가"}, search.queries)
	require.Len(t, outcomes, 3)
	assert.Equal(t, FetchOK, outcomes[0].Status)
	assert.Equal(t, FetchFailed, outcomes[1].Status)
	assert.Equal(t, "상한가 종목", outcomes[1].Category)
	assert.Equal(t, FetchOK, outcomes[2].Status)
}
