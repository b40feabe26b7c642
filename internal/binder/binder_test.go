package binder

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"outreach/internal/types"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		link string
		want types.Platform
		err  error
	}{
		{link: "https://www.youtube.com/watch?v=1", want: types.PlatformYoutube},
		{link: "HTTPS://YOUTU.BE/abc", want: types.PlatformYoutube},
		{link: "https://facebook.com/post/1", want: types.PlatformFacebook},
		{link: "https://instagram.com/p/1", want: types.PlatformInstagram},
		{link: "https://twitter.com/a/status/1", want: types.PlatformX},
		{link: "  https://x.com/a/status/1  ", want: types.PlatformX},
		{link: "http://youtube.com/watch", err: ErrInvalidLink},
		{link: "https://", err: ErrInvalidLink},
		{link: "", err: ErrInvalidLink},
		{link: "youtube.com", err: ErrInvalidLink},
		{link: "https://example.com/page", err: ErrUnsupportedPlatform},
	}
	for _, tc := range cases {
		got, err := Classify(tc.link)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("Classify(%q): expected %v, got %v", tc.link, tc.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Classify(%q): unexpected error %v", tc.link, err)
		}
		if got != tc.want {
			t.Fatalf("Classify(%q): expected %s, got %s", tc.link, tc.want, got)
		}
	}
}

func TestClassifyErrorMessages(t *testing.T) {
	if ErrInvalidLink.Error() != "Please provide a valid URL starting with https://" {
		t.Fatalf("unexpected message %q", ErrInvalidLink.Error())
	}
	if ErrUnsupportedPlatform.Error() != "Supported platform (YouTube, FB, IG, X) not detected in link." {
		t.Fatalf("unexpected message %q", ErrUnsupportedPlatform.Error())
	}
}

func TestFormatComments(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: []string{}},
		{raw: "   \n  ", want: []string{}},
		{raw: "great video", want: []string{"great video"}},
		{raw: "1. first\n2) second\n\n20. third", want: []string{"first", "second", "third"}},
		{raw: "* one\n- two\n• three", want: []string{"one", "two", "three"}},
		{raw: "  keep 100 likes  \r\n", want: []string{"keep 100 likes"}},
		{raw: "***", want: []string{"***"}},
	}
	for _, tc := range cases {
		got := FormatComments(tc.raw)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("FormatComments(%q): expected %#v, got %#v", tc.raw, tc.want, got)
		}
	}
}

func TestBindSnapshotsBriefcases(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	briefcases := []types.Briefcase{
		{ID: "b1", SocialMedia: types.PlatformYoutube, ProfileID: "p1"},
		{ID: "b2", SocialMedia: types.PlatformX, ProfileID: "p1"},
		{ID: "b3", SocialMedia: types.PlatformYoutube, ProfileID: "p2"},
	}

	task := Bind("https://youtube.com/watch?v=1", "1. hi\n2. there", types.PlatformYoutube, briefcases, now, "t1")
	if task.TaskID != "t1" || !task.BoundAt.Equal(now) {
		t.Fatalf("unexpected task identity: %+v", task)
	}
	if len(task.RelatedBriefcases) != 2 {
		t.Fatalf("expected 2 related briefcases, got %d", len(task.RelatedBriefcases))
	}
	if task.CommentIndex != 0 || task.Progress != 0 {
		t.Fatalf("expected zero counters, got %+v", task)
	}
	if !reflect.DeepEqual(task.Comments, []string{"hi", "there"}) {
		t.Fatalf("unexpected comments: %#v", task.Comments)
	}

	briefcases[0].UserName = "mutated"
	if task.RelatedBriefcases[0].UserName == "mutated" {
		t.Fatalf("related briefcases alias the source slice")
	}
}
