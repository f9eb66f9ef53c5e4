// Package prompts holds the instruction templates sent to the generation
// service. Templates are parsed once at init; rendering failures are
// programmer errors and panic.
package prompts

import (
	"strings"
	"text/template"

	"github.com/jackzampolin/kaidan/internal/retrieval"
)

var (
	intentTmpl  = template.Must(template.New("intent").Parse(intentTemplate))
	answerTmpl  = template.Must(template.New("answer").Parse(answerTemplate))
	apologyTmpl = template.Must(template.New("apology").Parse(apologyTemplate))
)

const intentTemplate = `あなたは国立国会図書館のデジタル化資料を探す司書です。
ユーザーの質問から検索条件を作り、JSONだけを出力してください。

フィールド:
- "query": 資料検索用の短い複数語クエリ(スペース区切り)
- "focusKeywords": 本文の一節を探すためのキーワード5〜8個。現代語は歴史的な言い換え(例: 猫→化け猫・猫又)や、より広い主題・ジャンル語(怪談・奇談・実録など)にも広げること
- "isRandom": ユーザーが「何か面白いもの」「おまかせ」など任意の資料を求めている場合のみ true

質問: {{.Message}}`

const answerTemplate = `以下の資料の抜粋だけを根拠に、質問に日本語で答えてください。
資料にない事柄は書かないでください。
資料に基づく記述は必ず <cite idx="番号">〜</cite> で囲み、番号には根拠にした資料の番号(1始まり)を入れてください。

資料:
{{range .Evidence}}[{{.Index}}] {{.Title}} (コマ{{.PageLabel}})
{{.Snippet}}

{{end}}質問: {{.Message}}`

const apologyTemplate = `ユーザーの質問に合う資料がデジタル化資料の検索で見つかりませんでした。
見つからなかったことを短く詫び、時代・土地・題材などを添えて聞き直すよう促す返事を日本語で書いてください。

質問: {{.Message}}`

// EvidenceBlock is one numbered excerpt embedded in the answer prompt.
type EvidenceBlock struct {
	Index     int
	Title     string
	PageLabel string
	Snippet   string
}

// Intent renders the search-intent extraction prompt.
func Intent(message string) string {
	return render(intentTmpl, map[string]any{"Message": message})
}

// Answer renders the grounded-answer prompt over a numbered evidence list.
func Answer(message string, evidence []retrieval.EvidenceItem) string {
	blocks := make([]EvidenceBlock, len(evidence))
	for i, item := range evidence {
		blocks[i] = EvidenceBlock{
			Index:     i + 1,
			Title:     item.Title,
			PageLabel: item.PageLabel,
			Snippet:   item.Snippet,
		}
	}
	return render(answerTmpl, map[string]any{"Message": message, "Evidence": blocks})
}

// Apology renders the no-evidence response prompt.
func Apology(message string) string {
	return render(apologyTmpl, map[string]any{"Message": message})
}

func render(tmpl *template.Template, data any) string {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		panic(err)
	}
	return sb.String()
}
