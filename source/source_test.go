package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"trendflow/models"
	"trendflow/quota"
)

type fakeAPI struct {
	popular    []models.Video
	popularIDs []string
	searches   map[string][]string
	searchErr  map[string]error
	videos     map[string]models.Video
	channels   map[string]models.ChannelInfo
	channelErr map[string]error
	playlists  map[string][]string
}

func (f *fakeAPI) MostPopular(ctx context.Context) ([]models.Video, error) {
	return f.popular, nil
}

func (f *fakeAPI) MostPopularIDs(ctx context.Context) ([]string, error) {
	return f.popularIDs, nil
}

func (f *fakeAPI) Search(ctx context.Context, query string, publishedAfter time.Time, maxResults int) ([]string, error) {
	if err := f.searchErr[query]; err != nil {
		return nil, err
	}
	return f.searches[query], nil
}

func (f *fakeAPI) VideosByID(ctx context.Context, ids []string) ([]models.Video, error) {
	out := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeAPI) ChannelInfo(ctx context.Context, channelID string) (models.ChannelInfo, error) {
	if err := f.channelErr[channelID]; err != nil {
		return models.ChannelInfo{}, err
	}
	return f.channels[channelID], nil
}

func (f *fakeAPI) PlaylistItems(ctx context.Context, playlistID string, maxResults int) ([]string, error) {
	ids := f.playlists[playlistID]
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

func (f *fakeAPI) TopComments(ctx context.Context, videoID string, maxResults int) ([]string, error) {
	return nil, nil
}

func video(id, title string, tags ...string) models.Video {
	v := models.Video{ID: id}
	v.Snippet.Title = title
	v.Snippet.Tags = tags
	return v
}

func TestRelevant(t *testing.T) {
	cases := []struct {
		name  string
		video models.Video
		want  bool
	}{
		{"title match", video("a", "My SKINCARE routine"), true},
		{"tag match", video("b", "morning vlog", "k-beauty"), true},
		{"no match", video("c", "woodworking basics"), false},
	}
	for _, tc := range cases {
		if got := Relevant(tc.video, DefaultRelevanceTerms); got != tc.want {
			t.Errorf("%s: Relevant = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRelevantDescriptionMatch(t *testing.T) {
	v := video("d", "unrelated title")
	v.Snippet.Description = "today we try a new toner"
	if !Relevant(v, DefaultRelevanceTerms) {
		t.Fatal("expected description substring to match")
	}
}

func TestMacroTrendFiltersAndTags(t *testing.T) {
	api := &fakeAPI{popular: []models.Video{
		video("m1", "glass skin skincare tips"),
		video("m2", "diy furniture build"),
	}}
	raws, err := NewMacroTrend(api, nil).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(raws) != 1 || raws[0].ID != "m1" {
		t.Fatalf("got %+v, want only the relevant chart entry", raws)
	}
	if raws[0].Source != models.SourceMacroTrend {
		t.Errorf("video tagged %q", raws[0].Source)
	}
}

func TestKeywordDiscoverySkipsFailedKeyword(t *testing.T) {
	api := &fakeAPI{
		searches:  map[string][]string{"good": {"v1"}},
		searchErr: map[string]error{"bad": errors.New("boom")},
		videos:    map[string]models.Video{"v1": video("v1", "serum review")},
	}
	s := NewKeywordDiscovery(api, []string{"bad", "good"}, nil, 7, 20)

	raws, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(raws) != 1 || raws[0].ID != "v1" {
		t.Fatalf("got %+v, want single v1", raws)
	}
	if raws[0].Keyword != "good" {
		t.Errorf("keyword = %q, want %q", raws[0].Keyword, "good")
	}
	if raws[0].Source != models.SourceKeywordDiscovery {
		t.Errorf("source = %q", raws[0].Source)
	}
}

func TestKeywordDiscoveryAbortsOnExhaustion(t *testing.T) {
	api := &fakeAPI{
		searchErr: map[string]error{"first": quota.ErrExhausted},
		searches:  map[string][]string{"second": {"v1"}},
		videos:    map[string]models.Video{"v1": video("v1", "serum review")},
	}
	s := NewKeywordDiscovery(api, []string{"first", "second"}, nil, 7, 20)

	_, err := s.Collect(context.Background())
	if !errors.Is(err, quota.ErrExhausted) {
		t.Fatalf("err = %v, want quota exhaustion", err)
	}
}

func TestKeywordDiscoveryFiltersIrrelevant(t *testing.T) {
	api := &fakeAPI{
		searches: map[string][]string{"Anua": {"v1", "v2"}},
		videos: map[string]models.Video{
			"v1": video("v1", "Anua toner haul"),
			"v2": video("v2", "car engine teardown"),
		},
	}
	s := NewKeywordDiscovery(api, []string{"Anua"}, nil, 7, 20)

	raws, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(raws) != 1 || raws[0].ID != "v1" {
		t.Fatalf("got %+v, want only v1", raws)
	}
}

func TestChannelPerformance(t *testing.T) {
	api := &fakeAPI{
		channels: map[string]models.ChannelInfo{
			"ch-ok": {SubscriberCount: 100, UploadsPlaylistID: "UU-ok"},
		},
		channelErr: map[string]error{"ch-bad": errors.New("not found")},
		playlists:  map[string][]string{"UU-ok": {"v1", "v2"}},
		videos: map[string]models.Video{
			"v1": video("v1", "sunscreen showdown"),
			"v2": video("v2", "q&a stream"),
		},
	}
	s := NewChannelPerformance(api, []string{"ch-bad", "ch-ok"}, nil, 10)

	raws, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(raws) != 1 || raws[0].ID != "v1" {
		t.Fatalf("got %+v, want only relevant v1", raws)
	}
	if raws[0].Source != models.SourceChannelPerformance {
		t.Errorf("source = %q", raws[0].Source)
	}
}

func TestChannelPerformanceRespectsUploadLimit(t *testing.T) {
	api := &fakeAPI{
		channels:  map[string]models.ChannelInfo{"ch": {UploadsPlaylistID: "UU"}},
		playlists: map[string][]string{"UU": {"v1", "v2", "v3"}},
		videos: map[string]models.Video{
			"v1": video("v1", "serum one"),
			"v2": video("v2", "serum two"),
			"v3": video("v3", "serum three"),
		},
	}
	s := NewChannelPerformance(api, []string{"ch"}, nil, 2)

	raws, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("got %d videos, want 2", len(raws))
	}
}

func TestTrendingIDs(t *testing.T) {
	api := &fakeAPI{popularIDs: []string{"a", "b", "a"}}
	set, err := TrendingIDs(context.Background(), api)
	if err != nil {
		t.Fatalf("TrendingIDs: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("got %d ids, want 2", len(set))
	}
	if _, ok := set["a"]; !ok {
		t.Error("missing id a")
	}
}
