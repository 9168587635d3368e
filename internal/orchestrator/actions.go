package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/davetashner/gloss/internal/apperr"
	"github.com/davetashner/gloss/internal/credential"
	"github.com/davetashner/gloss/internal/diagnose"
	"github.com/davetashner/gloss/internal/langdetect"
	"github.com/davetashner/gloss/internal/prompt"
	"github.com/davetashner/gloss/internal/redact"
)

// AnalyzeInput carries an analyzeText request.
type AnalyzeInput struct {
	Text      string
	URL       string
	Language  langdetect.Tag
	Prompt    string
	APIKey    string
	SessionID string
}

// FollowUpInput carries a followUpQuestion request. APIKey, when set, is
// used for this question only, as with AnalyzeInput.
type FollowUpInput struct {
	Question  string
	APIKey    string
	SessionID string
}

// PrepareText trims text, rejects selections shorter than MinTextRunes and
// cuts longer ones to MaxTextRunes followed by Ellipsis.
func PrepareText(text string) (string, error) {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < MinTextRunes {
		return "", apperr.New(apperr.KindValidation, "selection too short; select at least %d characters", MinTextRunes)
	}
	if n > MaxTextRunes {
		runes := []rune(text)
		text = string(runes[:MaxTextRunes]) + Ellipsis
	}
	return text, nil
}

// Analyze explains in.Text. A new analysis clears the session's history,
// and on success the result becomes the current analysis.
func (o *Orchestrator) Analyze(ctx context.Context, in AnalyzeInput) (*Analysis, error) {
	text, err := PrepareText(in.Text)
	if err != nil {
		return nil, err
	}

	lang := in.Language
	if lang == "" || !langdetect.Valid(lang) {
		lang = langdetect.Detect(text).Language
		slog.DebugContext(ctx, "detected language", "language", lang)
	}

	cred, ok := o.resolver.Resolve(ctx, in.APIKey)
	if !ok {
		return nil, apperr.New(apperr.KindMissingCredential, "please set an API key first")
	}

	sess := o.sessions.GetOrCreate(in.SessionID)
	sess.Reset()

	pkg := o.composer.Compose(text, lang, prompt.PhaseInitial, in.Prompt)

	o.setState(StateRequesting)
	result, err := o.client.Complete(ctx, sess, pkg, cred.Key, false)
	if err != nil {
		o.setState(StateFailed)
		return nil, err
	}
	o.setState(StateSucceeded)

	a := &Analysis{
		OriginalText: strings.TrimSpace(in.Text),
		Result:       result,
		URL:          in.URL,
		Language:     lang,
		Timestamp:    o.now(),
	}
	o.mu.Lock()
	o.current = a
	o.mu.Unlock()
	return a, nil
}

// FollowUp asks in.Question within the session's existing conversation.
func (o *Orchestrator) FollowUp(ctx context.Context, in FollowUpInput) (string, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return "", apperr.New(apperr.KindValidation, "please enter a question")
	}

	cred, ok := o.resolver.Resolve(ctx, in.APIKey)
	if !ok {
		return "", apperr.New(apperr.KindMissingCredential, "please set an API key first")
	}

	sess := o.sessions.GetOrCreate(in.SessionID)
	pkg := o.composer.Compose(question, langdetect.TagAuto, prompt.PhaseFollowUp, "")

	o.setState(StateRequesting)
	result, err := o.client.Complete(ctx, sess, pkg, cred.Key, true)
	if err != nil {
		o.setState(StateFailed)
		return "", err
	}
	o.setState(StateSucceeded)
	return result, nil
}

// SetAPIKey stores key as the user's credential.
func (o *Orchestrator) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.New(apperr.KindValidation, "API key must not be empty")
	}
	redact.Register(key)
	if err := o.resolver.Store().Set(credential.KeyName, key); err != nil {
		return apperr.Wrap(apperr.KindUpstream, err, "saving API key failed: %v", err)
	}
	slog.Info("API key saved", "key", redact.Mask(key))
	return nil
}

// APIKeyStatus reports whether a key is stored and its length.
func (o *Orchestrator) APIKeyStatus() (bool, int) {
	return o.resolver.HasStored()
}

// CurrentAnalysis returns the last completed analysis, or nil.
func (o *Orchestrator) CurrentAnalysis() *Analysis {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.current == nil {
		return nil
	}
	a := *o.current
	return &a
}

// SetCurrentAnalysis replaces the current analysis, as when a saved session
// is restored. A nil a clears it.
func (o *Orchestrator) SetCurrentAnalysis(a *Analysis) {
	var cp *Analysis
	if a != nil {
		c := *a
		cp = &c
	}
	o.mu.Lock()
	o.current = cp
	o.mu.Unlock()
}

// ResetConversation clears the named session, or the default one.
func (o *Orchestrator) ResetConversation(sessionID string) {
	o.sessions.Delete(sessionID)
}

// Diagnoser returns the self-test runner, or nil when none is configured.
func (o *Orchestrator) Diagnoser() *diagnose.Diagnoser { return o.diagnoser }

func (o *Orchestrator) requireDiagnoser() (*diagnose.Diagnoser, error) {
	if o.diagnoser == nil {
		return nil, apperr.New(apperr.KindValidation, "diagnostics are not available")
	}
	return o.diagnoser, nil
}
