// =============================================================================
// clock.go - 時刻・取引日の計算
// =============================================================================
//
// 韓国市場の時刻（UTC+9固定、サマータイムなし）で「現在時刻」と
// 「直近の取引日」を求める。祝日カレンダーは持たない（平日=取引日とみなす）。
//
// 【取引日ルール】
//   - 土曜日          → 前日（金曜）0:00
//   - 日曜日          → 2日前（金曜）0:00
//   - 月曜 9:00より前 → 3日前（金曜）0:00（まだ当日の取引が始まっていない）
//   - それ以外        → 当日 0:00
//
// =============================================================================
package pipeline

import "time"

// KST は UTC+9 の固定オフセット。タイムゾーンDBに依存しない。
//
// ゾーン名は出力の generated_at にそのまま出るため "UTC+09:00" としている。
var KST = time.FixedZone("UTC+09:00", 9*60*60)

// Clock は現在時刻を返す関数。テストでは固定時刻を注入する。
type Clock func() time.Time

// Now は現在時刻を KST で返す
func Now() time.Time {
	return time.Now().In(KST)
}

// LastTradingDay は t を基準にした直近の取引日（その日の0:00）を返す
//
// t のロケーションはそのまま保持する。曜日と時刻だけで決まる純粋関数。
func LastTradingDay(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return midnight(t.AddDate(0, 0, -1))
	case time.Sunday:
		return midnight(t.AddDate(0, 0, -2))
	case time.Monday:
		if t.Hour() < 9 {
			return midnight(t.AddDate(0, 0, -3))
		}
	}
	return midnight(t)
}

// IsWeekend は土日かどうか
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// midnight は同じ日付の0:00を返す
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
