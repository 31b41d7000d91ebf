package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"

	"github.com/hashicorp/go-plugin"
	colorful "github.com/lucasb-eyer/go-colorful"

	capturerpc "focusreel/internal/modules/capture/adapter/out/rpc"
	"focusreel/internal/platform/dataurl"
)

const (
	frameWidth  = 320
	frameHeight = 240
)

type server struct {
	frames atomic.Int64
}

func (s *server) GetMetadata(_ context.Context, _ *capturerpc.Empty) (*capturerpc.Metadata, error) {
	return &capturerpc.Metadata{
		Name:    "testpattern",
		Version: "1.0.0",
		Sources: []string{"webcam", "screen"},
	}, nil
}

func (s *server) Capture(_ context.Context, in *capturerpc.CaptureRequest) (*capturerpc.CaptureResponse, error) {
	var base float64
	switch in.Source {
	case "webcam":
		base = 20
	case "screen":
		base = 200
	default:
		return nil, fmt.Errorf("unknown source: %s", in.Source)
	}
	n := s.frames.Add(1)
	img := render(base+float64(n*17%120), int(n))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return &capturerpc.CaptureResponse{DataURI: dataurl.Encode(buf.Bytes(), "image/png")}, nil
}

// render draws a hue gradient with a moving bar so consecutive frames differ.
func render(hue float64, frame int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	bar := (frame * 24) % frameWidth
	for y := 0; y < frameHeight; y++ {
		light := 0.35 + 0.4*float64(y)/frameHeight
		c := colorful.Hsl(hue, 0.7, light).Clamped()
		r, g, b := c.RGB255()
		row := color.RGBA{R: r, G: g, B: b, A: 255}
		for x := 0; x < frameWidth; x++ {
			if x >= bar && x < bar+16 {
				img.Set(x, y, color.White)
				continue
			}
			img.Set(x, y, row)
		}
	}
	return img
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: capturerpc.HandshakeConfig,
		Plugins:         capturerpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
