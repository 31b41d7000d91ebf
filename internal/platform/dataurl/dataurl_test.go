package dataurl_test

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"focusreel/internal/platform/dataurl"
)

func TestEncodeDecodeSniffsPNG(t *testing.T) {
	t.Parallel()
	buf := bytes.Buffer{}
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	uri := dataurl.Encode(buf.Bytes(), "")
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.40s", uri)
	}
	data, mime, err := dataurl.Decode(uri)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mime != "image/png" || !bytes.Equal(data, buf.Bytes()) {
		t.Fatalf("payload mismatch: mime=%s len=%d", mime, len(data))
	}
}

func TestDecodeRejectsPlainStrings(t *testing.T) {
	t.Parallel()
	if _, _, err := dataurl.Decode("https://example.com/a.png"); err == nil {
		t.Fatalf("expected error for non data uri")
	}
}
