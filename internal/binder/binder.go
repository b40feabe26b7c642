package binder

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"outreach/internal/types"
)

var (
	ErrInvalidLink         = errors.New("Please provide a valid URL starting with https://")
	ErrUnsupportedPlatform = errors.New("Supported platform (YouTube, FB, IG, X) not detected in link.")
)

type marker struct {
	needle   string
	platform types.Platform
}

// Checked in order; the first match wins.
var markers = []marker{
	{needle: "youtube.com", platform: types.PlatformYoutube},
	{needle: "youtu.be", platform: types.PlatformYoutube},
	{needle: "facebook.com", platform: types.PlatformFacebook},
	{needle: "instagram.com", platform: types.PlatformInstagram},
	{needle: "twitter.com", platform: types.PlatformX},
	{needle: "x.com", platform: types.PlatformX},
}

const httpsPrefix = "https://"

// Classify validates link and resolves the platform it points at.
func Classify(link string) (types.Platform, error) {
	lower := strings.ToLower(strings.TrimSpace(link))
	if !strings.HasPrefix(lower, httpsPrefix) || len(lower) == len(httpsPrefix) {
		return "", ErrInvalidLink
	}
	for _, m := range markers {
		if strings.Contains(lower, m.needle) {
			return m.platform, nil
		}
	}
	return "", ErrUnsupportedPlatform
}

var listNumbering = regexp.MustCompile(`^\d+[.)]\s*`)

// FormatComments splits a pasted block into individual comments.
func FormatComments(raw string) []string {
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "*-•")
		line = strings.TrimSpace(line)
		line = listNumbering.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Bind builds a task for platform. RelatedBriefcases is a copy of the
// matching briefcases at now and never aliases briefcases.
func Bind(link, comment string, platform types.Platform, briefcases []types.Briefcase, now time.Time, id string) types.Task {
	return types.Task{
		TaskID:             id,
		Link:               strings.TrimSpace(link),
		Comments:           FormatComments(comment),
		CommentUnformatted: comment,
		CommentIndex:       0,
		Progress:           0,
		SocialMedia:        platform,
		RelatedBriefcases:  types.FilterBriefcases(briefcases, platform),
		BoundAt:            now,
	}
}
