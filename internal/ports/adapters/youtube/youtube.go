package youtube

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/forPelevin/vclip/internal/types"
)

const (
	maxTitleRunes       = 100
	maxDescriptionRunes = 5000
	maxTagsChars        = 500
	shortsTag           = "#shorts"
	categoryEducation   = "22"
)

type Adapter struct {
	clientID     string
	clientSecret string
	refreshToken string
}

func New(clientID, clientSecret, refreshToken string) *Adapter {
	return &Adapter{clientID: clientID, clientSecret: clientSecret, refreshToken: refreshToken}
}

func (a *Adapter) Validate() error {
	if a.clientID == "" || a.clientSecret == "" || a.refreshToken == "" {
		return errors.New("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET and YOUTUBE_REFRESH_TOKEN are required for upload")
	}
	return nil
}

// Upload sends a finished short and returns its video id.
func (a *Adapter) Upload(ctx context.Context, path string, meta types.UploadMeta) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	video, err := buildVideo(meta)
	if err != nil {
		return "", err
	}

	conf := &oauth2.Config{
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{yt.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: a.refreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}
	client := &http.Client{Transport: &oauth2.Transport{Source: conf.TokenSource(ctx, token)}}

	svc, err := yt.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", errors.Wrap(err, "youtube service")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "open video file")
	}
	defer f.Close()

	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(f).Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "youtube upload")
	}
	return uploaded.Id, nil
}

func buildVideo(meta types.UploadMeta) (*yt.Video, error) {
	privacy := strings.ToLower(strings.TrimSpace(meta.Privacy))
	switch privacy {
	case "":
		privacy = "private"
	case "private", "unlisted", "public":
	default:
		return nil, errors.Errorf("privacy %q must be private, unlisted or public", meta.Privacy)
	}
	title := limitRunes(strings.TrimSpace(meta.Title), maxTitleRunes)
	if title == "" {
		return nil, errors.New("upload title is empty")
	}
	return &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       title,
			Description: shortsDescription(meta.Description),
			Tags:        limitTags(meta.Tags, maxTagsChars),
			CategoryId:  categoryEducation,
		},
		Status: &yt.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}, nil
}

// shortsDescription appends the #shorts marker, trimming the text so the
// marker always fits.
func shortsDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if strings.Contains(strings.ToLower(desc), shortsTag) {
		return limitRunes(desc, maxDescriptionRunes)
	}
	budget := maxDescriptionRunes - utf8.RuneCountInString(shortsTag) - 2
	desc = limitRunes(desc, budget)
	if desc == "" {
		return shortsTag
	}
	return desc + "\n\n" + shortsTag
}

func limitRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

// limitTags keeps tags in order until the combined length budget is spent.
func limitTags(tags []string, budget int) []string {
	out := make([]string, 0, len(tags))
	used := 0
	for _, t := range tags {
		t = strings.TrimSpace(strings.TrimPrefix(t, "#"))
		if t == "" {
			continue
		}
		n := utf8.RuneCountInString(t)
		if used+n > budget {
			break
		}
		used += n
		out = append(out, t)
	}
	return out
}
