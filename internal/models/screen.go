package models

type Screen string

const (
	ScreenAuth             Screen = "auth"
	ScreenServiceSelection Screen = "service-selection"
	ScreenInQueue          Screen = "in-queue"
)

type NoticeVariant string

const (
	NoticeDefault     NoticeVariant = "default"
	NoticeDestructive NoticeVariant = "destructive"
)

// Notice is a one-shot notification shown on the next render.
type Notice struct {
	Title   string        `json:"title"`
	Message string        `json:"message"`
	Variant NoticeVariant `json:"variant"`
}
