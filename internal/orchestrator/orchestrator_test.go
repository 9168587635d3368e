package orchestrator

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/completion"
	"github.com/davetashner/gloss/internal/credential"
	"github.com/davetashner/gloss/internal/diagnose"
	"github.com/davetashner/gloss/internal/langdetect"
	"github.com/davetashner/gloss/internal/llm"
	"github.com/davetashner/gloss/internal/prompt"
)

const englishText = "How are you doing today? This is a short English sentence."

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

type fixture struct {
	orc   *Orchestrator
	mock  *llm.MockProvider
	store *credential.MemoryStore
	keys  *[]string
}

func newFixture(t *testing.T, storedKey string, responses ...llm.MockResponse) *fixture {
	t.Helper()
	m := llm.NewMockProvider(responses...)
	store := credential.NewMemoryStore()
	if storedKey != "" {
		require.NoError(t, store.Set(credential.KeyName, storedKey))
	}
	keys := &[]string{}
	factory := llm.MockFactory(m, keys)
	resolver := credential.NewResolver(store, nil)
	client := completion.New(factory)
	orc := New(Deps{
		Client:    client,
		Resolver:  resolver,
		Diagnoser: diagnose.New(resolver, factory, client, diagnose.WithProbes(nil)),
		Now:       func() time.Time { return fixedNow },
	})
	return &fixture{orc: orc, mock: m, store: store, keys: keys}
}

func TestAnalyze_ShortTextNeverReachesProvider(t *testing.T) {
	f := newFixture(t, "sk-test-key-123")

	resp := f.orc.Handle(context.Background(), Request{Action: ActionAnalyzeText, Text: "  short  "})
	assert.False(t, resp.Success)
	assert.Equal(t, apperr.KindValidation, resp.ErrorKind)
	assert.Contains(t, resp.Error, "selection too short")
	assert.Empty(t, f.mock.Calls())
	assert.Equal(t, StateIdle, f.orc.State())
}

func TestAnalyze_Success(t *testing.T) {
	f := newFixture(t, "sk-test-key-123", llm.MockResponse{Content: "这是一段英文。"})

	resp := f.orc.Handle(context.Background(), Request{
		Action: ActionAnalyzeText,
		Text:   "  " + englishText + "  ",
		URL:    "https://example.com/post",
	})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "这是一段英文。", resp.Result)
	assert.Equal(t, "default", resp.SessionID)
	assert.Equal(t, StateSucceeded, f.orc.State())

	calls := f.mock.Calls()
	require.Len(t, calls, 1)
	msgs := calls[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, prompt.Compose(englishText, langdetect.TagEnglish, prompt.PhaseInitial, "").System, msgs[0].Content)
	assert.Contains(t, msgs[1].Content, englishText)
	assert.Equal(t, completion.MaxTokens, calls[0].MaxTokens)
	assert.Equal(t, []string{"sk-test-key-123"}, *f.keys)

	a := f.orc.CurrentAnalysis()
	require.NotNil(t, a)
	assert.Equal(t, Analysis{
		OriginalText: englishText,
		Result:       "这是一段英文。",
		URL:          "https://example.com/post",
		Language:     langdetect.TagEnglish,
		Timestamp:    fixedNow,
	}, *a)
	assert.Equal(t, 2, f.orc.Sessions().Default().Len())
}

func TestAnalyze_ExplicitLanguageSkipsDetection(t *testing.T) {
	f := newFixture(t, "sk-test-key-123", llm.MockResponse{Content: "ok"})

	_, err := f.orc.Analyze(context.Background(), AnalyzeInput{Text: englishText, Language: langdetect.TagFrench})
	require.NoError(t, err)

	want := prompt.Compose(englishText, langdetect.TagFrench, prompt.PhaseInitial, "").System
	assert.Equal(t, want, f.mock.Calls()[0].Messages[0].Content)
	assert.Equal(t, langdetect.TagFrench, f.orc.CurrentAnalysis().Language)
}

func TestAnalyze_UnknownLanguageIsDetected(t *testing.T) {
	f := newFixture(t, "sk-test-key-123", llm.MockResponse{Content: "ok"})

	_, err := f.orc.Analyze(context.Background(), AnalyzeInput{Text: "今天天气很好，我们去公园散步吧。", Language: "xx"})
	require.NoError(t, err)
	assert.Equal(t, langdetect.TagChinese, f.orc.CurrentAnalysis().Language)
}

func TestAnalyze_CustomPromptSentVerbatim(t *testing.T) {
	f := newFixture(t, "sk-test-key-123", llm.MockResponse{Content: "ok"})

	resp := f.orc.Handle(context.Background(), Request{
		Action: ActionAnalyzeText,
		Text:   englishText,
		Prompt: "Explain briefly: " + englishText,
	})
	require.True(t, resp.Success)
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "Explain briefly: " + englishText}}, f.mock.Calls()[0].Messages)
}

func TestAnalyze_TruncatesLongSelections(t *testing.T) {
	f := newFixture(t, "sk-test-key-123", llm.MockResponse{Content: "ok"})
	head := strings.Repeat("語", MaxTextRunes-1) + "末"
	long := head + strings.Repeat("x", 250)

	_, err := f.orc.Analyze(context.Background(), AnalyzeInput{Text: long, Language: langdetect.TagChinese})
	require.NoError(t, err)

	want := head + Ellipsis
	assert.Equal(t, MaxTextRunes+utf8.RuneCountInString(Ellipsis), utf8.RuneCountInString(want))
	user := f.mock.Calls()[0].Messages[1].Content
	assert.Equal(t, prompt.Compose(want, langdetect.TagChinese, prompt.PhaseInitial, "").User, user)
}

func TestPrepareText(t *testing.T) {
	got, err := PrepareText("  0123456789  ")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", got)

	_, err = PrepareText("012345678")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err = PrepareText(strings.Repeat("a", MaxTextRunes))
	require.NoError(t, err)
	assert.Equal(t, MaxTextRunes, utf8.RuneCountInString(got))

	got, err = PrepareText(strings.Repeat("ü", MaxTextRunes+1))
	require.NoError(t, err)
	assert.Equal(t, MaxTextRunes+len(Ellipsis), utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, Ellipsis))
}

func TestAnalyze_MissingKey(t *testing.T) {
	f := newFixture(t, "")
	f.orc.Sessions().Default().AppendTurn("earlier question", "earlier answer")

	resp := f.orc.Handle(context.Background(), Request{Action: ActionAnalyzeText, Text: englishText})
	assert.False(t, resp.Success)
	assert.Equal(t, apperr.KindMissingCredential, resp.ErrorKind)
	assert.Empty(t, f.mock.Calls())
	assert.Equal(t, 2, f.orc.Sessions().Default().Len(), "history survives a request that never started")
}

func TestAnalyze_ExplicitKeyWins(t *testing.T) {
	f := newFixture(t, "sk-stored-key", llm.MockResponse{Content: "ok"})

	resp := f.orc.Handle(context.Background(), Request{Action: ActionAnalyzeText, Text: englishText, APIKey: "sk-passed-key"})
	require.True(t, resp.Success)
	assert.Equal(t, []string{"sk-passed-key"}, *f.keys)
}

func TestAnalyze_UpstreamFailureKeepsPreviousAnalysis(t *testing.T) {
	f := newFixture(t, "sk-test-key-123",
		llm.MockResponse{Content: "first"},
		llm.MockResponse{Err: apperr.FromStatus(401, "Incorrect API key provided: sk-test-key-123")},
	)

	require.True(t, f.orc.Handle(context.Background(), Request{Action: ActionAnalyzeText, Text: englishText}).Success)

	resp := f.orc.Handle(context.Background(), Request{Action: ActionAnalyzeText, Text: englishText + " Again."})
	assert.False(t, resp.Success)
	assert.Equal(t, apperr.KindInvalidCredential, resp.ErrorKind)
	assert.NotContains(t, resp.Error, "sk-test-key-123")
	assert.Equal(t, StateFailed, f.orc.State())

	assert.Equal(t, "first", f.orc.CurrentAnalysis().Result)
	assert.Zero(t, f.orc.Sessions().Default().Len(), "new analysis cleared history before failing")
}

func TestFollowUp_AppendsExactlyOneTurn(t *testing.T) {
	f := newFixture(t, "sk-test-key-123",
		llm.MockResponse{Content: "analysis"},
		llm.MockResponse{Content: "answer"},
	)
	ctx := context.Background()

	require.True(t, f.orc.Handle(ctx, Request{Action: ActionAnalyzeText, Text: englishText}).Success)
	resp := f.orc.Handle(ctx, Request{Action: ActionFollowUpQuestion, Question: "  What does 'doing' mean?  "})
	require.True(t, resp.Success)
	assert.Equal(t, "answer", resp.Result)

	history := f.orc.Sessions().Default().History()
	require.Len(t, history, 4)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "What does 'doing' mean?"}, history[2])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "answer"}, history[3])

	sent := f.mock.Calls()[1].Messages
	require.Len(t, sent, 3, "history without the system message plus the question")
	assert.Equal(t, llm.RoleUser, sent[0].Role)
}

func TestAnalyze_ResetsFollowUpHistory(t *testing.T) {
	f := newFixture(t, "sk-test-key-123",
		llm.MockResponse{Content: "first analysis"},
		llm.MockResponse{Content: "answer"},
		llm.MockResponse{Content: "second analysis"},
	)
	ctx := context.Background()
	second := "Der Weg ist das Ziel, sagt man oft in Deutschland."

	require.True(t, f.orc.Handle(ctx, Request{Action: ActionAnalyzeText, Text: englishText}).Success)
	require.True(t, f.orc.Handle(ctx, Request{Action: ActionFollowUpQuestion, Question: "why?"}).Success)
	require.Equal(t, 4, f.orc.Sessions().Default().Len())

	resp := f.orc.Handle(ctx, Request{Action: ActionAnalyzeText, Text: second, Language: "de"})
	require.True(t, resp.Success, resp.Error)

	calls := f.mock.Calls()
	require.Len(t, calls, 3)
	pkg := prompt.Compose(second, langdetect.TagGerman, prompt.PhaseInitial, "")
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleSystem, Content: pkg.System},
		{Role: llm.RoleUser, Content: pkg.User},
	}, calls[2].Messages)

	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: pkg.User},
		{Role: llm.RoleAssistant, Content: "second analysis"},
	}, f.orc.Sessions().Default().History())
}

func TestFollowUp_OneOffKey(t *testing.T) {
	f := newFixture(t, "",
		llm.MockResponse{Content: "analysis"},
		llm.MockResponse{Content: "answer"},
	)
	ctx := context.Background()

	require.True(t, f.orc.Handle(ctx, Request{Action: ActionAnalyzeText, Text: englishText, APIKey: "sk-one-off-key"}).Success)

	resp := f.orc.Handle(ctx, Request{Action: ActionFollowUpQuestion, Question: "why?"})
	assert.Equal(t, apperr.KindMissingCredential, resp.ErrorKind)

	resp = f.orc.Handle(ctx, Request{Action: ActionFollowUpQuestion, Question: "why?", APIKey: "sk-one-off-key"})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "answer", resp.Result)
	assert.Equal(t, []string{"sk-one-off-key", "sk-one-off-key"}, *f.keys)
}

func TestFollowUp_EmptyQuestion(t *testing.T) {
	f := newFixture(t, "sk-test-key-123")

	resp := f.orc.Handle(context.Background(), Request{Action: ActionFollowUpQuestion, Question: " \n\t "})
	assert.False(t, resp.Success)
	assert.Equal(t, apperr.KindValidation, resp.ErrorKind)
	assert.Empty(t, f.mock.Calls())
}

func TestFollowUp_FailureAppendsNothing(t *testing.T) {
	f := newFixture(t, "sk-test-key-123",
		llm.MockResponse{Content: "analysis"},
		llm.MockResponse{Err: apperr.FromStatus(503, "")},
	)
	ctx := context.Background()

	require.True(t, f.orc.Handle(ctx, Request{Action: ActionAnalyzeText, Text: englishText}).Success)
	resp := f.orc.Handle(ctx, Request{Action: ActionFollowUpQuestion, Question: "why?"})
	assert.Equal(t, apperr.KindUpstreamUnavailable, resp.ErrorKind)
	assert.Equal(t, 2, f.orc.Sessions().Default().Len())
}

func TestSessionsAreIndependent(t *testing.T) {
	f := newFixture(t, "sk-test-key-123", llm.MockResponse{Content: "ok"})
	ctx := context.Background()

	resp := f.orc.Handle(ctx, Request{Action: ActionAnalyzeText, Text: englishText, SessionID: "tab-1"})
	require.True(t, resp.Success)
	assert.Equal(t, "tab-1", resp.SessionID)

	tab, ok := f.orc.Sessions().Get("tab-1")
	require.True(t, ok)
	assert.Equal(t, 2, tab.Len())
	assert.Zero(t, f.orc.Sessions().Default().Len())

	f.orc.Handle(ctx, Request{Action: ActionResetConversation, SessionID: "tab-1"})
	_, ok = f.orc.Sessions().Get("tab-1")
	assert.False(t, ok)
}

func TestConcurrentFollowUpsKeepPairsTogether(t *testing.T) {
	f := newFixture(t, "sk-test-key-123", llm.MockResponse{Content: "reply"})
	ctx := context.Background()
	require.True(t, f.orc.Handle(ctx, Request{Action: ActionAnalyzeText, Text: englishText}).Success)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.orc.Handle(ctx, Request{Action: ActionFollowUpQuestion, Question: "again?"})
		}()
	}
	wg.Wait()

	history := f.orc.Sessions().Default().History()
	require.Len(t, history, 2+16*2)
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, llm.RoleUser, history[i].Role)
		assert.Equal(t, llm.RoleAssistant, history[i+1].Role)
	}
}

func TestSetAndGetAPIKey(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	resp := f.orc.Handle(ctx, Request{Action: ActionGetAPIKey})
	require.True(t, resp.Success)
	assert.False(t, *resp.HasAPIKey)
	assert.Zero(t, *resp.APIKeyLength)

	assert.Equal(t, apperr.KindValidation, f.orc.Handle(ctx, Request{Action: ActionSetAPIKey, APIKey: "  "}).ErrorKind)

	require.True(t, f.orc.Handle(ctx, Request{Action: ActionSetAPIKey, APIKey: " sk-new-key-42 "}).Success)
	stored, ok, err := f.store.Get(credential.KeyName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-new-key-42", stored)

	resp = f.orc.Handle(ctx, Request{Action: ActionGetAPIKey})
	assert.True(t, *resp.HasAPIKey)
	assert.Equal(t, 13, *resp.APIKeyLength)
}

func TestGetCurrentAnalysis_NoneYet(t *testing.T) {
	f := newFixture(t, "")
	resp := f.orc.Handle(context.Background(), Request{Action: ActionGetCurrentAnalysis})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Analysis)
}

func TestSetCurrentAnalysis(t *testing.T) {
	f := newFixture(t, "")
	a := &Analysis{OriginalText: "restored text", Result: "恢复。", Language: "de"}
	f.orc.SetCurrentAnalysis(a)
	a.Result = "changed after the call"

	got := f.orc.CurrentAnalysis()
	require.NotNil(t, got)
	assert.Equal(t, "恢复。", got.Result)

	f.orc.SetCurrentAnalysis(nil)
	assert.Nil(t, f.orc.CurrentAnalysis())
}

func TestDiagnosticActions(t *testing.T) {
	f := newFixture(t, "sk-test-key-123", llm.MockResponse{Content: "你好"})
	f.mock.Models = []string{"gpt-4o"}
	ctx := context.Background()

	resp := f.orc.Handle(ctx, Request{Action: ActionTestAPIKey})
	require.True(t, resp.Success)
	check, ok := resp.Data.(diagnose.KeyCheck)
	require.True(t, ok)
	assert.True(t, check.HasModel)

	resp = f.orc.Handle(ctx, Request{Action: ActionTestFullCall})
	require.True(t, resp.Success)
	assert.Equal(t, "你好", resp.Data.(diagnose.CallCheck).Result)
	assert.Zero(t, f.orc.Sessions().Default().Len())
}

func TestDiagnosticActions_Failure(t *testing.T) {
	f := newFixture(t, "")
	resp := f.orc.Handle(context.Background(), Request{Action: ActionTestAPIKey})
	assert.False(t, resp.Success)
	assert.Equal(t, apperr.KindMissingCredential, resp.ErrorKind)
}

func TestDiagnosticActions_Unavailable(t *testing.T) {
	orc := New(Deps{Resolver: credential.NewResolver(credential.NewMemoryStore(), nil)})
	resp := orc.Handle(context.Background(), Request{Action: ActionTestFullCall})
	assert.False(t, resp.Success)
	assert.Equal(t, apperr.KindValidation, resp.ErrorKind)
}

func TestDetectLanguageAction(t *testing.T) {
	f := newFixture(t, "")
	resp := f.orc.Handle(context.Background(), Request{Action: ActionDetectLanguage, Text: "안녕하세요 반갑습니다"})
	require.True(t, resp.Success)
	assert.Equal(t, "ko", resp.Result)
	require.NotNil(t, resp.Detection)
	assert.Equal(t, langdetect.TagKorean, resp.Detection.Language)

	resp = f.orc.Handle(context.Background(), Request{Action: ActionDetectLanguage})
	assert.Equal(t, apperr.KindValidation, resp.ErrorKind)
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t, "")
	resp := f.orc.Handle(context.Background(), Request{Action: "showResult"})
	assert.False(t, resp.Success)
	assert.Equal(t, apperr.KindValidation, resp.ErrorKind)
	assert.Contains(t, resp.Error, "showResult")
}

func TestResponseJSONShape(t *testing.T) {
	has, n := true, 9
	b, err := json.Marshal(Response{Success: true, HasAPIKey: &has, APIKeyLength: &n})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"hasApiKey":true,"apiKeyLength":9,"analysis":null}`, string(b))

	b, err = json.Marshal(Response{Error: "boom", ErrorKind: apperr.KindNetwork})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"boom","errorKind":"network","analysis":null}`, string(b))
}

func TestGetCurrentAnalysis_ExplicitNull(t *testing.T) {
	f := newFixture(t, "sk-test-key-123", llm.MockResponse{Content: "解释"})
	ctx := context.Background()

	b, err := json.Marshal(f.orc.Handle(ctx, Request{Action: ActionGetCurrentAnalysis}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"analysis":null}`, string(b))

	require.True(t, f.orc.Handle(ctx, Request{Action: ActionAnalyzeText, Text: englishText, URL: "https://example.com"}).Success)
	b, err = json.Marshal(f.orc.Handle(ctx, Request{Action: ActionGetCurrentAnalysis}))
	require.NoError(t, err)

	var got struct {
		Analysis map[string]any `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "解释", got.Analysis["result"])
	assert.Equal(t, "https://example.com", got.Analysis["url"])
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "requesting", StateRequesting.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestActionsListed(t *testing.T) {
	assert.Len(t, Actions(), 9)
	assert.Contains(t, Actions(), ActionTestFullCall)
}
