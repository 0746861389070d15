package content

import (
	"html"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/microcosm-cc/bluemonday"
)

// HeaderSize is how many leading bytes of a file DetectType needs.
const HeaderSize = 262

var strict = bluemonday.StrictPolicy()

// PlainText strips all markup from untrusted text (remote message bodies,
// sender names) and returns it as plain, unescaped text.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// DetectType picks the message type for an attachment from its leading
// bytes, falling back to the file extension when the header is unknown.
func DetectType(head []byte, fileName string) model.MessageType {
	switch {
	case filetype.IsImage(head):
		return model.TypeImage
	case filetype.IsVideo(head):
		return model.TypeVideo
	case filetype.IsAudio(head):
		return model.TypeVoice
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return model.TypeFile
	}
	switch filetype.GetType(ext).MIME.Type {
	case "image":
		return model.TypeImage
	case "video":
		return model.TypeVideo
	case "audio":
		return model.TypeVoice
	}
	return model.TypeFile
}

// MIME returns the detected MIME type of a file header, or "" if unknown.
func MIME(head []byte) string {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}
