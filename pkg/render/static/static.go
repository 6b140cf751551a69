package static

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/visast/pkg/errors"
	"github.com/matzehuels/visast/pkg/graphio"
	"github.com/matzehuels/visast/pkg/render"
)

// DefaultOutput is written when [render.Options.Output] is empty.
const DefaultOutput = "visast.svg"

// PNGScale is the rsvg-convert zoom used for PNG output.
const PNGScale = 2.0

// Renderer draws scenes with Graphviz.
type Renderer struct {
	opts render.Options
}

// New returns a static renderer.
func New(opts render.Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render draws s and delivers it according to the renderer's options.
func (r *Renderer) Render(ctx context.Context, s render.Scene) (render.Artifact, error) {
	if err := s.Validate(); err != nil {
		return render.Artifact{}, err
	}

	output := r.opts.Output
	if output == "" {
		output = DefaultOutput
	}

	format := formatOf(output)
	if format == "json" {
		var buf bytes.Buffer
		if err := graphio.WriteJSON(&buf, s); err != nil {
			return render.Artifact{}, err
		}
		return render.Deliver(render.Artifact{Data: buf.Bytes(), MediaType: render.MediaJSON}, r.opts, DefaultOutput)
	}

	art, err := encode(ctx, ToDOT(s), format)
	if err != nil {
		return render.Artifact{}, err
	}
	return render.Deliver(art, r.opts, DefaultOutput)
}

func formatOf(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "svg"
	}
	return ext
}

func encode(ctx context.Context, dot, format string) (render.Artifact, error) {
	if format == "dot" {
		return render.Artifact{Data: []byte(dot), MediaType: render.MediaDOT}, nil
	}
	if format != "svg" && format != "png" && format != "pdf" {
		return render.Artifact{}, errors.New(errors.ErrCodeUnsupported, "unsupported static output format %q", format)
	}

	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return render.Artifact{}, err
	}

	switch format {
	case "png":
		data, err := render.ToPNG(ctx, svg, PNGScale)
		return render.Artifact{Data: data, MediaType: render.MediaPNG}, err
	case "pdf":
		data, err := render.ToPDF(ctx, svg)
		return render.Artifact{Data: data, MediaType: render.MediaPDF}, err
	default:
		return render.Artifact{Data: svg, MediaType: render.MediaSVG}, nil
	}
}

// RenderSVG lays out a DOT graph with neato and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
