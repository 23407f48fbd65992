package notify

// Message is the webhook payload: a plain-text summary plus ordered display
// sections. Receivers that only understand text can use the summary alone.
type Message struct {
	Summary  string    `json:"summary"`
	Sections []Section `json:"sections"`
}

// Section is one display block with an optional header
type Section struct {
	Header  string   `json:"header,omitempty"`
	Widgets []Widget `json:"widgets"`
}

// Widget is one display element; exactly one field is set
type Widget struct {
	KeyValue      *KeyValue      `json:"keyValue,omitempty"`
	Image         *Image         `json:"image,omitempty"`
	TextParagraph *TextParagraph `json:"textParagraph,omitempty"`
	Link          *Link          `json:"link,omitempty"`
}

// KeyValue is a labeled value widget
type KeyValue struct {
	TopLabel string `json:"topLabel,omitempty"`
	Content  string `json:"content"`
}

// Image is a remote image widget
type Image struct {
	ImageURL string `json:"imageUrl"`
}

// TextParagraph is a free-text widget
type TextParagraph struct {
	Text string `json:"text"`
}

// Link is a call-to-action link widget
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}
