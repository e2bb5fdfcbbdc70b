package ytdlp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/domain"
	"github.com/w0lfzk1n/yt-dlp-WebGui/internal/provider"
)

type lineKind int

const (
	lineIgnore lineKind = iota
	lineProgress
	lineConverting
	lineInfo
	lineError
)

var (
	progressRe = regexp.MustCompile(`^\[download\]\s+([0-9.]+%)\s+of\s+~?\s*(\S+)(?:\s+at\s+(\S+))?`)

	// postprocessor prefixes that mark the start of local transcoding
	convertingPrefixes = []string{
		"[ExtractAudio]",
		"[VideoConvertor]",
		"[VideoRemuxer]",
		"[Merger]",
	}
)

// parseOutputLine classifies one line of yt-dlp --newline output.
func parseOutputLine(line string) (lineKind, any) {
	line = strings.TrimSpace(line)
	if line == "" {
		return lineIgnore, nil
	}

	if m := progressRe.FindStringSubmatch(line); m != nil {
		p := provider.Progress{Percent: m[1], Total: m[2], Rate: m[3]}
		if p.Rate == "" {
			p.Rate = "N/A"
		}
		return lineProgress, p
	}

	for _, prefix := range convertingPrefixes {
		if strings.HasPrefix(line, prefix) {
			return lineConverting, nil
		}
	}

	if strings.HasPrefix(line, "ERROR:") {
		return lineError, strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
	}

	if strings.Contains(line, "has already been downloaded") {
		return lineInfo, line
	}

	return lineIgnore, nil
}

// infoJSON mirrors the subset of yt-dlp's --dump-single-json output the
// planner needs. Flat playlist entries carry their own url/availability.
type infoJSON struct {
	Type         string     `json:"_type"`
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	OriginalURL  string     `json:"original_url"`
	WebpageURL   string     `json:"webpage_url"`
	Availability string     `json:"availability"`
	Entries      []infoJSON `json:"entries"`
}

func parseInfoJSON(raw []byte) (*domain.RetrievedInfo, error) {
	var decoded infoJSON
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode info json: %w", err)
	}
	info := decoded.toDomain()
	return &info, nil
}

func (j infoJSON) toDomain() domain.RetrievedInfo {
	info := domain.RetrievedInfo{
		ID:           j.ID,
		Title:        j.Title,
		OriginalURL:  j.originalLocator(),
		Availability: j.Availability,
	}
	for _, entry := range j.Entries {
		info.Entries = append(info.Entries, entry.toDomain())
	}
	return info
}

func (j infoJSON) originalLocator() string {
	switch {
	case j.OriginalURL != "":
		return j.OriginalURL
	case j.URL != "":
		return j.URL
	default:
		return j.WebpageURL
	}
}
