package nameutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// honorifics are the trailing title tokens stripped from transcript names,
// longest first so that compound titles win over their suffixes
// (副委員長 must match before 委員長).
var honorifics = []string{
	"副委員長",
	"委員長",
	"副議長",
	"議長",
	"副市長",
	"市長",
	"副知事",
	"知事",
	"議員",
	"先生",
	"さん",
	"くん",
	"殿",
	"氏",
	"君",
	"様",
}

// kyujitaiFolder maps pre-reform kanji variants that still appear in older
// minutes and rosters to their modern forms. Only characters observed in
// politician names are listed.
var kyujitaiFolder = strings.NewReplacer(
	"櫻", "桜", "齋", "斎", "齊", "斉", "髙", "高", "﨑", "崎",
	"邊", "辺", "邉", "辺", "澤", "沢", "濱", "浜", "廣", "広",
	"國", "国", "圀", "国", "實", "実", "寶", "宝", "壽", "寿",
	"學", "学", "藝", "芸", "應", "応", "惠", "恵", "德", "徳",
	"榮", "栄", "禮", "礼", "靜", "静", "龍", "竜", "瀨", "瀬",
	"黑", "黒", "與", "与", "亞", "亜", "傳", "伝", "會", "会",
	"鐵", "鉄", "藏", "蔵", "嶋", "島", "嶌", "島", "條", "条",
	"總", "総", "縣", "県", "顯", "顕", "戶", "戸", "曾", "曽",
	"豐", "豊", "兒", "児", "參", "参", "獨", "独", "氣", "気",
	"經", "経", "營", "営", "勞", "労", "團", "団", "廳", "庁",
	"聲", "声", "體", "体", "轉", "転", "關", "関", "滿", "満",
	"萬", "万",
)

// Normalize converts a display name to its canonical comparison form: NFKC
// folding, kyujitai to shinjitai conversion, removal of all half-width and
// full-width spaces, then removal of exactly one trailing honorific token.
func Normalize(name string) string {
	normalized := strings.TrimSpace(name)
	normalized = norm.NFKC.String(normalized)
	normalized = kyujitaiFolder.Replace(normalized)
	normalized = stripSpaces(normalized)
	for _, honorific := range honorifics {
		if trimmed, ok := strings.CutSuffix(normalized, honorific); ok {
			normalized = trimmed
			break
		}
	}
	return strings.TrimSpace(normalized)
}

// NormalizeKana folds a phonetic reading into spaceless hiragana. Katakana
// code points are shifted into the hiragana block so a reading supplied in
// either script compares equal.
func NormalizeKana(reading string) string {
	cleaned := stripSpaces(strings.TrimSpace(reading))
	var b strings.Builder
	b.Grow(len(cleaned))
	for _, r := range cleaned {
		if r >= 0x30A1 && r <= 0x30F6 {
			r -= 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExtractKanjiSurname returns the leading run of CJK ideographs from a name.
// For a fully kanji name this is the whole name; for a mixed-script name like
// 武村のぶひで it is the surname; for a name that does not start with kanji it
// is empty.
func ExtractKanjiSurname(name string) string {
	cleaned := stripSpaces(name)
	end := 0
	for i, r := range cleaned {
		if !isKanji(r) {
			break
		}
		end = i + len(string(r))
	}
	return cleaned[:end]
}

// HasMixedHiragana reports whether a name contains both kanji and hiragana,
// the form used by some rosters that spell the given name phonetically.
func HasMixedHiragana(name string) bool {
	cleaned := stripSpaces(name)
	hasKanji := false
	hasHiragana := false
	for _, r := range cleaned {
		switch {
		case isKanji(r):
			hasKanji = true
		case r >= 0x3041 && r <= 0x3093:
			hasHiragana = true
		}
		if hasKanji && hasHiragana {
			return true
		}
	}
	return false
}

func stripSpaces(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsSpace(r) || r == '　' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isKanji(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3400 && r <= 0x4DBF)
}
