package util

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
/// SVGRect
///////////////////////////////////////////////////////////////////////////////

// A filled rectangle, used for heatmap cells and backgrounds
type SVGRect struct {
	Layer         int
	X, Y          int
	Width, Height int
	Fill          string
	Stroke        string
	Title         string // rendered as a tooltip
}

func NewSVGRect(x, y, width, height int, fill string, layer int) (*SVGRect, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("rect must have positive size, got %dx%d", width, height)
	}
	if fill == "" {
		fill = "#ffffff"
	}
	return &SVGRect{
		Layer:  layer,
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		Fill:   fill,
	}, nil
}

func (r *SVGRect) toTag() string {
	stroke := ""
	if r.Stroke != "" {
		stroke = fmt.Sprintf(` stroke="%s"`, r.Stroke)
	}
	if r.Title == "" {
		return fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"%s/>`,
			r.X, r.Y, r.Width, r.Height, r.Fill, stroke)
	}
	return fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s"%s><title>%s</title></rect>`,
		r.X, r.Y, r.Width, r.Height, r.Fill, stroke, html.EscapeString(r.Title))
}

///////////////////////////////////////////////////////////////////////////////
/// SVGEmbeddedText
///////////////////////////////////////////////////////////////////////////////

// Holds information about text that is embedded into SVG files
type SVGEmbeddedText struct {
	Layer       int
	X, Y        int
	Name        string
	Content     string
	Style       string
	Anchor      string   // start, middle or end
	Rotate      int      // degrees about X,Y
	MaxWidth    int      // Maximum width for text wrapping
	LineSpacing float64  // Spacing between lines when wrapped
	Lines       []string // Text split into lines for wrapping
}

func NewSVGEmbeddedText(name, text, style string, x, y, layer int) (*SVGEmbeddedText, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if style == "" {
		style = "font-size: 12px; font-family: Arial; fill: black;"
	}

	ret := &SVGEmbeddedText{
		Layer:       layer,
		X:           x,
		Y:           y,
		Name:        name,
		Content:     text,
		Style:       style,
		Anchor:      "start",
		LineSpacing: 1.2,
		Lines:       []string{text},
	}
	return ret, nil
}

func (t *SVGEmbeddedText) toTags() string {
	var sb strings.Builder
	lineHeight := int(float64(fontSize(t.Style)) * t.LineSpacing)
	for i, line := range t.Lines {
		y := t.Y + i*lineHeight
		transform := ""
		if t.Rotate != 0 {
			transform = fmt.Sprintf(` transform="rotate(%d %d %d)"`, t.Rotate, t.X, y)
		}
		fmt.Fprintf(&sb, `<text x="%d" y="%d" text-anchor="%s" style="%s"%s>%s</text>`,
			t.X, y, t.Anchor, t.Style, transform, html.EscapeString(line))
	}
	return sb.String()
}

var fontSizeRegex = regexp.MustCompile(`font-size:\s*(\d+)px`)

// Extract font size from an inline style, 12 if absent
func fontSize(style string) int {
	size := 12
	matches := fontSizeRegex.FindStringSubmatch(style)
	if len(matches) > 1 {
		if n, err := fmt.Sscanf(matches[1], "%d", &size); err != nil || n == 0 {
			size = 12
		}
	}
	return size
}

///////////////////////////////////////////////////////////////////////////////
/// SVG
///////////////////////////////////////////////////////////////////////////////

const SvgHeader string = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="" height=""
    version="1.1"
	xmlns="http://www.w3.org/2000/svg"
	xmlns:svg="http://www.w3.org/2000/svg"
	xmlns:xlink="http://www.w3.org/1999/xlink">
`
const SvgFooter string = `
</svg>
`

var (
	widthRegex  = regexp.MustCompile(`width=""`)
	heightRegex = regexp.MustCompile(`height=""`)
)

// An object for building simple SVG documents out of rectangles and text
type SVG struct {
	Filepath      string
	Name          string
	Rects         []*SVGRect
	Text          []*SVGEmbeddedText
	Width, Height int
}

func NewBlankSVG(width, height int) *SVG {
	return &SVG{
		Name:   "blank",
		Rects:  []*SVGRect{},
		Text:   []*SVGEmbeddedText{},
		Width:  width,
		Height: height,
	}
}

func (s *SVG) AddRect(r *SVGRect) {
	s.Rects = append(s.Rects, r)
}

func (s *SVG) AddText(name, text, style string, x, y, layer int) (*SVGEmbeddedText, error) {
	i, err := NewSVGEmbeddedText(name, text, style, x, y, layer)
	if err != nil {
		return nil, err
	}
	s.Text = append(s.Text, i)
	return i, nil
}

// AddWrappedText adds text with automatic wrapping based on maxWidth
func (s *SVG) AddWrappedText(name, text, style string, x, y, maxWidth, layer int) (*SVGEmbeddedText, error) {
	i, err := NewSVGEmbeddedText(name, text, style, x, y, layer)
	if err != nil {
		return nil, err
	}
	i.MaxWidth = maxWidth
	i.Lines = WrapText(text, style, maxWidth)
	s.Text = append(s.Text, i)
	return i, nil
}

// WrapText splits text into lines that fit maxWidth pixels,
// estimating a character at 0.6 of the font size
func WrapText(text, style string, maxWidth int) []string {
	avgCharWidth := float64(fontSize(style)) * 0.6
	charsPerLine := int(float64(maxWidth) / avgCharWidth)
	if charsPerLine <= 0 || len(text) <= charsPerLine {
		return []string{text}
	}

	lines := []string{}
	currentLine := ""
	for _, word := range strings.Fields(text) {
		if currentLine == "" || len(currentLine)+len(word)+1 <= charsPerLine {
			if currentLine != "" {
				currentLine += " "
			}
			currentLine += word
			continue
		}
		lines = append(lines, currentLine)
		currentLine = word
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}

// ToSVG renders every element, lower layers first
func (s *SVG) ToSVG() (string, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return "", fmt.Errorf("svg %s has no size", s.Name)
	}
	ret := SvgHeader
	ret = widthRegex.ReplaceAllString(ret, fmt.Sprintf(`width="%d"`, s.Width))
	ret = heightRegex.ReplaceAllString(ret, fmt.Sprintf(`height="%d"`, s.Height))

	type element struct {
		layer int
		tag   string
	}
	var elements []element
	for _, r := range s.Rects {
		elements = append(elements, element{r.Layer, r.toTag()})
	}
	for _, t := range s.Text {
		elements = append(elements, element{t.Layer, t.toTags()})
	}
	sort.SliceStable(elements, func(i, j int) bool { return elements[i].layer < elements[j].layer })

	var sb strings.Builder
	sb.WriteString(ret)
	for _, e := range elements {
		sb.WriteString(e.tag)
		sb.WriteString("\n")
	}
	sb.WriteString(SvgFooter)
	return sb.String(), nil
}
