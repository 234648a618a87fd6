// Package catalog holds the fixed game vocabularies used by board items and profiles.
package catalog

import (
	"slices"
	"strings"
)

const All = "全て"

var Modes = []string{"ランクマッチ", "バトルロイヤル", "ゾンビモード", "カジュアル"}

// Ranks are ordered lowest first.
var Ranks = []string{"ルーキー", "ベテラン", "エリート", "プロ", "マスター", "グランドマスター", "レジェンド"}

var SkillLevels = []string{"中堅未満", "中堅以下", "中堅", "中堅以上"}

var Roles = []string{"スレイヤー", "アンカー", "オブジェクト", "スナイパー", "サポート", "フレックス"}

var ScrimModes = []string{"ハードポイント", "サーチ＆デストロイ", "コントロール", "混合 (BO3)", "混合 (BO5)"}

const MapBanPick = "マップバン/ピック"

var Maps = []string{"サミット", "スタンドオフ", "レイド", "テイクオフ", "ターミナル", "スラム", "ファイアリングレンジ", "ハックニーヤード"}

var EventTypes = []string{"大会", "交流戦 (スクリム)", "1vs1", "カスタムルーム"}

const (
	MicRequired = "required"
	MicOptional = "optional"
)

const (
	ScrimOpen   = "募集中"
	ScrimClosed = "終了"
)

const (
	MaxRoles    = 3
	MinNeeded   = 1
	MaxNeeded   = 4
	DefaultTeam = "自チーム"
	DefaultDate = "未定"
)

func LowestRank() string {
	return Ranks[0]
}

func IsMode(v string) bool       { return slices.Contains(Modes, v) }
func IsRank(v string) bool       { return slices.Contains(Ranks, v) }
func IsSkillLevel(v string) bool { return slices.Contains(SkillLevels, v) }
func IsRole(v string) bool       { return slices.Contains(Roles, v) }
func IsScrimMode(v string) bool  { return slices.Contains(ScrimModes, v) }
func IsMic(v string) bool        { return v == MicRequired || v == MicOptional }

func IsMap(v string) bool {
	return v == MapBanPick || slices.Contains(Maps, v)
}

func IsScrimStatus(v string) bool {
	return v == ScrimOpen || v == ScrimClosed
}

// EventTypeToken returns the stored form of an event type: its first space separated token.
func EventTypeToken(v string) string {
	token, _, _ := strings.Cut(v, " ")
	return token
}

func IsEventType(v string) bool {
	for _, t := range EventTypes {
		if t == v || EventTypeToken(t) == v {
			return true
		}
	}
	return false
}
