package dialogue

import (
	"fmt"

	"github.com/aretw0/uranai/pkg/domain"
)

const (
	textGreeting       = "こんにちは！占いを始めますね。\nまず、あなたのお名前を教えていただけますか？"
	textAskNameAgain   = "お名前を入力してください。"
	textAskBirthFormat = "%sさんですね！\n次に、生年月日を教えてください。（例：1993-07-21 や 1993/7/21）"
	textBirthInvalid   = "生年月日を正しい形式で入力してください。（例：1993-07-21）"
	textAskTheme       = "ありがとうございます！\n最後に、占ってほしいテーマを選んでください。"
	textThemeFallback  = "下のボタンから占ってほしいテーマを選んでくださいね。"
	textProcessing     = "ありがとうございます。現在、占い結果を作成中です。少々お待ちください。"
	textSessionReset   = "セッションがリセットされました。もう一度最初からお願いします。\nお名前を教えてください。"
	textUnexpectedOp   = "予期しない操作が行われました。最初からやり直してください。"
	textTextOnly       = "テキストメッセージで話しかけてくださいね。"

	textConfirmationFormat = "ありがとうございます、%sさん。\nテーマ「%s」で承りました。\n\n占い師が内容を確認した後、結果をお送りしますので、少々お待ちくださいね。"
	textEffectFailure      = "申し訳ありません、リクエストの処理中にエラーが発生しました。もう一度テーマを選び直してください。"
	textInternalError      = "申し訳ありません、処理中にエラーが発生しました。"
)

// ThemeDisplayText is the chat text shown when a user taps a theme option.
func ThemeDisplayText(t domain.Theme) string {
	return fmt.Sprintf("%sについて相談する", t)
}

// ConfirmationMessages is the reply sent once a request has been generated and recorded.
func ConfirmationMessages(name string, theme domain.Theme) []domain.Message {
	return []domain.Message{domain.TextMessage{Text: fmt.Sprintf(textConfirmationFormat, name, theme)}}
}

// FailureMessages asks the user to pick a theme again after a failed side effect.
func FailureMessages() []domain.Message {
	return []domain.Message{domain.TextMessage{Text: textEffectFailure}}
}

// InternalErrorMessages is the generic apology used when a turn fails unexpectedly.
func InternalErrorMessages() []domain.Message {
	return []domain.Message{domain.TextMessage{Text: textInternalError}}
}

func text(s string) []domain.Message {
	return []domain.Message{domain.TextMessage{Text: s}}
}

func themePrompt(s string) []domain.Message {
	return []domain.Message{domain.ThemePrompt{Text: s, Themes: domain.Themes()}}
}
