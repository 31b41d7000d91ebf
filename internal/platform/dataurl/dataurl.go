// Package dataurl converts between raster bytes and RasterDataURI strings.
package dataurl

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"
)

// Encode wraps raw image bytes, sniffing the media type when mime is empty.
func Encode(data []byte, mime string) string {
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return dataurl.New(data, mime).String()
}

// Decode returns the payload and media type of a data URI.
func Decode(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("not a data uri")
	}
	parsed, err := dataurl.DecodeString(uri)
	if err != nil {
		return nil, "", fmt.Errorf("decode data uri: %w", err)
	}
	return parsed.Data, parsed.MediaType.ContentType(), nil
}
