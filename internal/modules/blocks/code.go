package blocks

import (
	"context"
	"html/template"
	"strings"
	"sync"
	"time"
)

// DefaultCodeLanguage is used when a code block does not declare one.
const DefaultCodeLanguage = "plaintext"

// CopyFeedbackWindow is how long the copy button shows its "copied" state.
const CopyFeedbackWindow = 2 * time.Second

func RenderCode(code, language string) template.HTML {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	language = strings.ToLower(strings.TrimSpace(language))
	label := language
	if language == "" {
		language = DefaultCodeLanguage
	}
	if language == DefaultCodeLanguage {
		label = ""
	}

	var b strings.Builder
	b.WriteString(`<div class="block-code" data-language="` + escape(language) + `">`)
	b.WriteString(`<div class="code-header"><span class="code-language">` + escape(label) + `</span>`)
	b.WriteString(`<button type="button" class="copy-button" data-copy-code aria-label="Copy code">Copy</button></div>`)
	b.WriteString(`<pre><code class="language-` + escape(language) + `">`)
	b.WriteString(escape(code))
	b.WriteString(`</code></pre></div>`)
	return template.HTML(b.String())
}

// Clipboard is the system clipboard as seen by the copy button.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// CopyButton copies a code block and shows transient feedback. The revert of
// the feedback is a scheduled task owned by the button and cancelled by Close.
type CopyButton struct {
	clipboard Clipboard
	text      string
	window    time.Duration

	mu     sync.Mutex
	copied bool
	gen    uint64
	timer  *time.Timer
	closed bool
}

func NewCopyButton(clipboard Clipboard, text string) *CopyButton {
	return &CopyButton{clipboard: clipboard, text: text, window: CopyFeedbackWindow}
}

// Copy writes the text to the clipboard. Clipboard failures are ignored: the
// button simply shows no feedback. A copy during the feedback window restarts it.
func (b *CopyButton) Copy(ctx context.Context) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed || b.clipboard == nil {
		return
	}
	if err := b.clipboard.WriteText(ctx, b.text); err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.copied = true
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.window, func() { b.revert(gen) })
}

func (b *CopyButton) revert(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || gen != b.gen {
		return
	}
	b.copied = false
	b.timer = nil
}

func (b *CopyButton) Copied() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copied
}

func (b *CopyButton) Label() string {
	if b.Copied() {
		return "Copied!"
	}
	return "Copy"
}

// Close cancels a pending revert. The button ignores every call afterwards.
func (b *CopyButton) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
