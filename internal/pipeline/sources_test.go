package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>뉴스</title>
<item><title>첫 번째 &lt;b&gt;기사&lt;/b&gt;</title><link>https://www.yna.co.kr/view/1</link></item>
<item><title></title><link>https://www.yna.co.kr/view/2</link></item>
<item><title>링크 없는 기사</title></item>
<item><title>네 번째 기사</title><link>https://news.example.com/4</link></item>
</channel></rss>`

func serveRSS(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = fmt.Fprint(w, body)
	}
}

func TestFeedSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/politics.xml", serveRSS(sampleRSS))
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewFeedSource(map[string]string{
		"politics": srv.URL + "/politics.xml",
		"economy":  srv.URL + "/broken.xml",
	}, "네이버뉴스", testSourceConfig(srv))

	assert.Equal(t, "feed", src.Name())
	assert.True(t, src.Supports("politics"))
	assert.False(t, src.Supports("sports"))

	hs, err := src.FetchCategory(context.Background(), "politics", 9)
	require.NoError(t, err)
	assert.Equal(t, []Headline{
		{Title: "첫 번째 기사", URL: "https://www.yna.co.kr/view/1", Source: "yna.co.kr"},
		{Title: "링크 없는 기사", URL: "", Source: "네이버뉴스"},
		{Title: "네 번째 기사", URL: "https://news.example.com/4", Source: "news.example.com"},
	}, hs)

	hs, err = src.FetchCategory(context.Background(), "politics", 2)
	require.NoError(t, err)
	assert.Len(t, hs, 2)

	_, err = src.FetchCategory(context.Background(), "economy", 9)
	assert.Error(t, err)

	_, err = src.FetchCategory(context.Background(), "sports", 9)
	assert.Error(t, err)
}

func TestNaverSearchSource(t *testing.T) {
	var gotQuery, gotDisplay, gotSort, gotID, gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotDisplay = r.URL.Query().Get("display")
		gotSort = r.URL.Query().Get("sort")
		gotID = r.Header.Get("X-Naver-Client-Id")
		gotSecret = r.Header.Get("X-Naver-Client-Secret")
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"items":[
			{"title":"<b>삼성</b> &quot;호재&quot;","originallink":"https://www.hankyung.com/a","link":"https://n.news.naver.com/a"},
			{"title":"","originallink":"https://x.com/b","link":""},
			{"title":"링크만 있는 기사","originallink":"","link":"https://n.news.naver.com/c"},
			{"title":"링크 없음","originallink":"","link":""},
			{"title":"네 번째","originallink":"https://d.example.com/d","link":""}
		]}`)
	}))
	defer srv.Close()

	nc := DefaultConfig().Naver
	nc.Endpoint = srv.URL
	assert.Nil(t, NewNaverSearchSource(nc, testSourceConfig(srv)))

	nc.ClientID, nc.ClientSecret = "id", "secret"
	src := NewNaverSearchSource(nc, testSourceConfig(srv))
	require.NotNil(t, src)
	assert.Equal(t, "naver", src.Name())

	hs, err := src.Search(context.Background(), "경제", 2)
	require.NoError(t, err)
	assert.Equal(t, []Headline{
		{Title: `삼성 "호재"`, URL: "https://www.hankyung.com/a", Source: "hankyung.com"},
		{Title: "링크만 있는 기사", URL: "https://n.news.naver.com/c", Source: "n.news.naver.com"},
	}, hs)
	assert.Equal(t, "경제", gotQuery)
	assert.Equal(t, "2", gotDisplay)
	assert.Equal(t, "sim", gotSort)
	assert.Equal(t, "id", gotID)
	assert.Equal(t, "secret", gotSecret)

	hs, err = src.Search(context.Background(), "경제", 9)
	require.NoError(t, err)
	assert.Len(t, hs, 3)
}

func TestNaverSearchSourceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "bad-json" {
			_, _ = fmt.Fprint(w, `{"items":[`)
			return
		}
		http.Error(w, `{"errorMessage":"Authentication failed"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	nc := DefaultConfig().Naver
	nc.Endpoint = srv.URL
	nc.ClientID, nc.ClientSecret = "id", "wrong"
	src := NewNaverSearchSource(nc, testSourceConfig(srv))

	_, err := src.Search(context.Background(), "정치", 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = src.Search(context.Background(), "bad-json", 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestRSSSearchSource(t *testing.T) {
	var gotQ, gotHL, gotGL, gotCEID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQ, gotHL, gotGL, gotCEID = q.Get("q"), q.Get("hl"), q.Get("gl"), q.Get("ceid")
		serveRSS(sampleRSS)(w, r)
	}))
	defer srv.Close()

	gc := DefaultConfig().Google
	gc.Endpoint = srv.URL + "/rss/search"
	src := NewRSSSearchSource(gc, testSourceConfig(srv))
	assert.Equal(t, "google", src.Name())

	hs, err := src.Search(context.Background(), "기술 OR 과학 OR IT", 1)
	require.NoError(t, err)
	assert.Equal(t, []Headline{{Title: "첫 번째 기사", URL: "https://www.yna.co.kr/view/1", Source: "yna.co.kr"}}, hs)
	assert.Equal(t, "기술 OR 과학 OR IT", gotQ)
	assert.Equal(t, "ko", gotHL)
	assert.Equal(t, "KR", gotGL)
	assert.Equal(t, "KR:ko", gotCEID)
}

func TestQuerySource(t *testing.T) {
	search := &stubSearch{
		name:    "google",
		results: map[string][]Headline{"정치": {{Title: "국회 소식", URL: "u"}}},
	}
	src := NewQuerySource(search, map[string]string{"politics": "정치"})

	assert.Equal(t, "google", src.Name())
	assert.True(t, src.Supports("politics"))
	assert.False(t, src.Supports("economy"))

	hs, err := src.FetchCategory(context.Background(), "politics", 9)
	require.NoError(t, err)
	assert.Equal(t, []Headline{{Title: "국회 소식", URL: "u"}}, hs)

	_, err = src.FetchCategory(context.Background(), "economy", 9)
	assert.Error(t, err)
}
