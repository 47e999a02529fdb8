package pipeline

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsSectionJSONOrder(t *testing.T) {
	ns := NewNewsSection([]string{"sports", "politics", "economy"})
	ns.Set("politics", []Headline{{Title: "A & B <속보>", URL: "https://x/1?a=1&b=2", Source: "x"}})
	ns.Set("economy", nil)

	b, err := encodeJSON(ns)
	require.NoError(t, err)
	assert.Equal(t,
		`{"sports":[],"politics":[{"title":"A & B <속보>","url":"https://x/1?a=1&b=2","src":"x"}],"economy":[]}`,
		string(b))
}

func TestNewsSectionHelpers(t *testing.T) {
	ns := NewNewsSection([]string{"politics", "economy"})
	assert.Equal(t, []string{"politics", "economy"}, ns.EmptyCategories())

	ns.Set("economy", []Headline{{Title: "t"}})
	ns.Set("weather", []Headline{{Title: "w"}, {Title: "w2"}})
	assert.Equal(t, []string{"politics", "economy", "weather"}, ns.Categories)
	assert.Equal(t, []string{"politics"}, ns.EmptyCategories())
	assert.Equal(t, 3, ns.Total())
	assert.Equal(t, []Headline{}, ns.Get("unknown"))
}

func TestSectorMapAdd(t *testing.T) {
	sm := NewSectorMap()
	sm.Add("반도체", []string{"삼성전자"})
	sm.Add("바이오", nil)
	sm.Add("반도체", []string{"SK하이닉스"})

	assert.Equal(t, []string{"반도체", "바이오"}, sm.Order)
	assert.Equal(t, []string{"SK하이닉스"}, sm.Stocks["반도체"])
	assert.Equal(t, []string{}, sm.Stocks["바이오"])
	assert.Equal(t, 2, sm.Len())

	var nilMap *SectorMap
	assert.Equal(t, 0, nilMap.Len())
}

func TestMarshalBriefingEmptyRecord(t *testing.T) {
	rec := &BriefingRecord{
		GeneratedAt:    "2026-01-12 09:30:00 UTC+09:00",
		Date:           "2026-01-12",
		LastTradingDay: "2026-01-12",
		News:           NewNewsSection([]string{"politics"}),
		LimitUp:        []LimitUpEntry{},
		Sectors:        NewSectorMap(),
		SectorOrder:    []string{},
	}

	b, err := MarshalBriefing(rec)
	require.NoError(t, err)

	out := string(b)
	assert.True(t, strings.HasPrefix(out, "{\n  \"generated_at\""))
	assert.Contains(t, out, `"weekend_note": ""`)
	assert.Contains(t, out, `"limit_up": []`)
	assert.Contains(t, out, `"sectors": {}`)
	assert.Contains(t, out, `"sector_order": []`)
	assert.Contains(t, out, "\"politics\": []")
	assert.NotContains(t, out, "null")

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Len(t, decoded, 8)
}

func TestNewOutcome(t *testing.T) {
	assert.Equal(t, FetchOK, newOutcome("feed", "world", 3, nil).Status)
	assert.Equal(t, FetchEmpty, newOutcome("feed", "world", 0, nil).Status)
	assert.Equal(t, FetchFailed, newOutcome("feed", "world", 0, errors.New("x")).Status)

	r := &RunReport{
		News:    []FetchOutcome{newOutcome("feed", "world", 0, errors.New("x")), newOutcome("feed", "sports", 2, nil)},
		LimitUp: []FetchOutcome{newOutcome("limit-up-page", "", 0, errors.New("y"))},
		Sectors: newOutcome("sectors", "data/sectors.json", 4, nil),
	}
	failed := r.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, "world", failed[0].Category)
	assert.Equal(t, "limit-up-page", failed[1].Source)
}
