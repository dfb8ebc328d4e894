package blocks

import (
	"html/template"
	"strings"
	"sync"
)

// ImageState tracks the underlying image resource.
type ImageState int

const (
	ImageLoading ImageState = iota
	ImageLoaded
	ImageFailed
)

func (s ImageState) String() string {
	switch s {
	case ImageLoaded:
		return "loaded"
	case ImageFailed:
		return "failed"
	default:
		return "loading"
	}
}

// ImageView is the image block component: a placeholder until the resource
// loads, nothing at all once it fails, and a full-screen viewer on click.
type ImageView struct {
	mu         sync.Mutex
	src        string
	caption    string
	alt        string
	state      ImageState
	viewerOpen bool
}

func NewImageView(src, caption, alt string) *ImageView {
	return &ImageView{src: src, caption: caption, alt: alt}
}

// OnLoad marks the resource as loaded. A failed image stays failed.
func (v *ImageView) OnLoad() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == ImageLoading {
		v.state = ImageLoaded
	}
}

// OnError marks the resource as failed; the component renders nothing from now on.
func (v *ImageView) OnError() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = ImageFailed
	v.viewerOpen = false
}

// Open shows the full-screen viewer. Ignored when there is nothing to show.
func (v *ImageView) Open() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == ImageFailed || strings.TrimSpace(v.src) == "" {
		return false
	}
	v.viewerOpen = true
	return true
}

func (v *ImageView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewerOpen = false
}

func (v *ImageView) State() ImageState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *ImageView) ViewerOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewerOpen
}

func (v *ImageView) Render() template.HTML {
	v.mu.Lock()
	defer v.mu.Unlock()

	src, ok := safeURL(v.src)
	if !ok || v.state == ImageFailed {
		return ""
	}
	escSrc := escape(src)
	escAlt := escape(strings.TrimSpace(v.alt))
	if escAlt == "" {
		escAlt = escape(strings.TrimSpace(v.caption))
	}

	var b strings.Builder
	b.WriteString(`<figure class="block-image" data-state="` + v.state.String() + `">`)
	if v.state == ImageLoading {
		b.WriteString(`<div class="image-placeholder animate-pulse" aria-hidden="true"></div>`)
	}
	b.WriteString(`<button type="button" class="image-trigger" data-lightbox="` + escSrc + `" aria-label="Open image">`)
	imgClass := "opacity-0"
	if v.state == ImageLoaded {
		imgClass = "opacity-100"
	}
	b.WriteString(`<img src="` + escSrc + `" alt="` + escAlt + `" loading="lazy" class="` + imgClass + `"/>`)
	b.WriteString(`</button>`)
	writeCaption(&b, v.caption)
	if v.viewerOpen {
		b.WriteString(`<div class="lightbox" role="dialog" aria-modal="true">`)
		b.WriteString(`<img src="` + escSrc + `" alt="` + escAlt + `"/>`)
		b.WriteString(`<button type="button" class="lightbox-close" data-lightbox-close aria-label="Close">&times;</button>`)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</figure>`)
	return template.HTML(b.String())
}

// RenderImage renders an image block in its initial loading state.
func RenderImage(src, caption, alt string) template.HTML {
	return NewImageView(src, caption, alt).Render()
}
