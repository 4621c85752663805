package captions

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

const (
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxTimedTextLen = 2 * 1024 * 1024
)

// YouTube is a Source backed by the YouTube watch page player response.
type YouTube struct {
	client     *youtube.Client
	httpClient *http.Client
}

// NewYouTube creates a YouTube caption source. A nil httpClient gets a 30s timeout client.
func NewYouTube(httpClient *http.Client) *YouTube {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &YouTube{
		client:     &youtube.Client{HTTPClient: httpClient},
		httpClient: httpClient,
	}
}

// ListTracks returns the caption tracks advertised for a video, in player order.
func (y *YouTube) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	video, err := y.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", videoID, err)
	}
	return tracksFromVideo(video), nil
}

func tracksFromVideo(video *youtube.Video) []Track {
	tracks := make([]Track, 0, len(video.CaptionTracks))
	for _, ct := range video.CaptionTracks {
		tracks = append(tracks, Track{
			Name:          ct.Name.SimpleText,
			LanguageCode:  ct.LanguageCode,
			AutoGenerated: ct.Kind == "asr",
			BaseURL:       ct.BaseURL,
		})
	}
	return tracks
}

// FetchTrack downloads and parses the timed-text XML behind track.BaseURL.
func (y *YouTube) FetchTrack(ctx context.Context, track Track) ([]Segment, error) {
	if track.BaseURL == "" {
		return nil, fmt.Errorf("caption track %q has no URL", track.LanguageCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTimedTextLen))
	if err != nil {
		return nil, fmt.Errorf("read timedtext: %w", err)
	}
	return parseTimedText(body)
}

// timedText covers both the legacy <transcript><text> format and the
// srv3 <timedtext><body><p> format.
type timedText struct {
	Lines      []timedTextLine `xml:"text"`
	Paragraphs []timedTextPara `xml:"body>p"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

type timedTextPara struct {
	T    int64
	D    int64
	Text string
}

// UnmarshalXML keeps the paragraph's text in document order, so words split
// across <s> spans and the whitespace between them survive.
func (p *timedTextPara) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "t":
			p.T, _ = strconv.ParseInt(attr.Value, 10, 64)
		case "d":
			p.D, _ = strconv.ParseInt(attr.Value, 10, 64)
		}
	}

	var sb strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				p.Text = sb.String()
				return nil
			}
			depth--
		}
	}
}

func parseTimedText(data []byte) ([]Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]Segment, 0, len(tt.Lines)+len(tt.Paragraphs))
	for _, line := range tt.Lines {
		segments = append(segments, Segment{
			Text:     cleanText(line.Text),
			StartMs:  secondsToMs(line.Start),
			Duration: secondsToMs(line.Dur),
		})
	}
	for _, p := range tt.Paragraphs {
		segments = append(segments, Segment{
			Text:     cleanText(p.Text),
			StartMs:  p.T,
			Duration: p.D,
		})
	}
	return segments, nil
}

// cleanText decodes entities the XML layer leaves double-escaped and
// collapses line breaks inside a cue.
func cleanText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

func secondsToMs(s string) int64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f * 1000)
}
