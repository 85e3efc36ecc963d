package extraction

import "strings"

// MediaType is the declared media type of an uploaded document.
type MediaType string

const (
	MediaPDF  MediaType = "application/pdf"
	MediaJPEG MediaType = "image/jpeg"
	MediaJPG  MediaType = "image/jpg"
	MediaPNG  MediaType = "image/png"
	MediaHEIC MediaType = "image/heic"
)

// RawDocument is one uploaded artifact. It lives only for the duration of a
// single pipeline invocation and is never persisted.
type RawDocument struct {
	Data      []byte
	MediaType MediaType
	Filename  string
}

// IsPDF reports whether the document should take the PDF text path.
// The declared type wins; magic bytes are a backstop for sloppy clients.
func (d *RawDocument) IsPDF() bool {
	if d.MediaType == MediaPDF {
		return true
	}
	return len(d.Data) >= 4 && string(d.Data[:4]) == "%PDF"
}

// IsHEIC reports whether the document needs HEIC transcoding, by declared
// type or filename suffix.
func (d *RawDocument) IsHEIC() bool {
	if d.MediaType == MediaHEIC {
		return true
	}
	return strings.HasSuffix(strings.ToLower(d.Filename), ".heic")
}

// receiptMediaTypes is the allowlist for the receipt upload path.
var receiptMediaTypes = map[MediaType]bool{
	MediaPDF:  true,
	MediaJPEG: true,
	MediaJPG:  true,
	MediaPNG:  true,
	MediaHEIC: true,
}

// AcceptedReceiptType reports whether mt is accepted on the receipt path.
func AcceptedReceiptType(mt MediaType) bool {
	return receiptMediaTypes[mt]
}
