package catalog

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilerow/pkg/errors"
)

const rootJSON = `{
  "data": {
    "StandardCollection": {
      "containers": [
        {
          "set": {
            "refId": null,
            "refType": "CuratedSet",
            "text": {"title": {"full": {"set": {"default": {"content": "New to Disney+"}}}}},
            "items": [
              {"image": {"tile": {"1.78": {"series": {"default": {"url": "https://img/s1"}}}}}},
              {"image": {"tile": {"1.78": {"program": {"default": {"url": "https://img/p1"}}}}}},
              {"image": {"tile": {"1.78": {"default": {"default": {"url": "https://img/d1"}}}}}}
            ]
          }
        },
        {
          "set": {
            "refId": "abc-123",
            "refType": "BecauseYouSet",
            "text": {"title": {"full": {"set": {"default": {"content": "Because You Watched"}}}}}
          }
        }
      ]
    }
  }
}`

func TestParseRoot(t *testing.T) {
	containers, err := ParseRoot([]byte(rootJSON))
	if err != nil {
		t.Fatalf("ParseRoot: %v", err)
	}
	if len(containers) != 2 {
		t.Fatalf("got %d containers, want 2", len(containers))
	}

	first := containers[0]
	if first.Title != "New to Disney+" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.HasRefset() {
		t.Errorf("null refId should mean no refset, got %q", first.RefID)
	}
	if len(first.Items) != 3 {
		t.Errorf("got %d items, want 3", len(first.Items))
	}

	second := containers[1]
	if !second.HasRefset() || second.RefID != "abc-123" || second.RefType != "BecauseYouSet" {
		t.Errorf("refset = %q/%q", second.RefID, second.RefType)
	}
	if len(second.Items) != 0 {
		t.Errorf("got %d items, want 0", len(second.Items))
	}
}

func TestParseRootErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `<html>`},
		{"no data", `{}`},
		{"no collection", `{"data": {}}`},
		{"no containers", `{"data": {"StandardCollection": {}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoot([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeSchemaMismatch) {
				t.Errorf("err = %v, want %s", err, errors.ErrCodeSchemaMismatch)
			}
		})
	}
}

func TestParseRootMissingTitle(t *testing.T) {
	containers, err := ParseRoot([]byte(`{"data": {"StandardCollection": {"containers": [{"set": {}}]}}}`))
	if err != nil {
		t.Fatalf("ParseRoot: %v", err)
	}
	if len(containers) != 1 || containers[0].Title != "" {
		t.Errorf("containers = %+v", containers)
	}
	if containers[0].HasRefset() {
		t.Error("missing refId should mean no refset")
	}
}

func TestImageURLs(t *testing.T) {
	containers, err := ParseRoot([]byte(rootJSON))
	if err != nil {
		t.Fatalf("ParseRoot: %v", err)
	}
	items := append(containers[0].Items, Item{})

	got := ImageURLs(items, log.New(io.Discard))
	want := []string{"https://img/s1", "https://img/p1", "https://img/d1", ""}
	if len(got) != len(want) {
		t.Fatalf("got %d urls, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := (Item{}).ImageURL(); !errors.Is(err, errors.ErrCodeSchemaMismatch) {
		t.Errorf("ImageURL on empty item: err = %v", err)
	}
}

func TestRefsetItems(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		count   int
		wantErr bool
	}{
		{
			name:  "curated set",
			data:  `{"data": {"CuratedSet": {"items": [{}, {}, {}]}}}`,
			count: 3,
		},
		{
			name:  "first key wins",
			data:  `{"data": {"TrendingSet": {"items": [{}]}, "Other": {"items": [{}, {}]}}}`,
			count: 1,
		},
		{
			name:  "empty item list",
			data:  `{"data": {"PersonalizedCuratedSet": {"items": []}}}`,
			count: 0,
		},
		{name: "no data", data: `{}`, wantErr: true},
		{name: "empty data", data: `{"data": {}}`, wantErr: true},
		{name: "data not object", data: `{"data": [1, 2]}`, wantErr: true},
		{name: "no items", data: `{"data": {"CuratedSet": {"meta": {}}}}`, wantErr: true},
		{name: "not json", data: `nope`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := RefsetItems([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeSchemaMismatch) {
					t.Errorf("err = %v, want %s", err, errors.ErrCodeSchemaMismatch)
				}
				return
			}
			if err != nil {
				t.Fatalf("RefsetItems: %v", err)
			}
			if len(items) != tt.count {
				t.Errorf("got %d items, want %d", len(items), tt.count)
			}
		})
	}
}

func TestRefsetURL(t *testing.T) {
	got, err := RefsetURL(DefaultRefsetURL, "abc-123")
	if err != nil {
		t.Fatalf("RefsetURL: %v", err)
	}
	want := "https://cd-static.bamgrid.com/dp-117731241344/sets/abc-123.json"
	if got != want {
		t.Errorf("RefsetURL = %q, want %q", got, want)
	}

	for _, id := range []string{"", "../etc", "a/b", "x?y"} {
		if _, err := RefsetURL(DefaultRefsetURL, id); !errors.Is(err, errors.ErrCodeInvalidRefset) {
			t.Errorf("RefsetURL(%q): err = %v, want %s", id, err, errors.ErrCodeInvalidRefset)
		}
	}
}
