package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilerow/pkg/errors"
)

// AspectRatio is the tile artwork variant tilerow displays.
const AspectRatio = "1.78"

// NullRefset is the literal some catalogs use for "no refset".
const NullRefset = "null"

// artworkLayouts lists the keys under image.tile."1.78" tried in order.
var artworkLayouts = []string{"series", "program", "default"}

// Container is one catalog row.
type Container struct {
	Title   string
	RefID   string
	RefType string
	Items   []Item
}

// HasRefset reports whether the container points at a refset document.
func (c Container) HasRefset() bool {
	return HasRefset(c.RefID)
}

// HasRefset reports whether id names a refset.
func HasRefset(id string) bool {
	return id != "" && id != NullRefset
}

// Item is one catalog entry. Only its artwork is decoded.
type Item struct {
	Image struct {
		Tile map[string]map[string]struct {
			Default struct {
				URL string `json:"url"`
			} `json:"default"`
		} `json:"tile"`
	} `json:"image"`
}

// ImageURL returns the item's tile artwork URL, trying the series, program
// and default layouts in turn.
func (it Item) ImageURL() (string, error) {
	variants := it.Image.Tile[AspectRatio]
	for _, layout := range artworkLayouts {
		if v, ok := variants[layout]; ok && v.Default.URL != "" {
			return v.Default.URL, nil
		}
	}
	return "", errors.New(errors.ErrCodeSchemaMismatch, "no %s tile artwork", AspectRatio)
}

// ImageURLs resolves the artwork URL of every item. Items without artwork
// contribute an empty string and are logged; the result always has one entry
// per item.
func ImageURLs(items []Item, logger *log.Logger) []string {
	if logger == nil {
		logger = log.Default()
	}
	urls := make([]string, len(items))
	for i, it := range items {
		u, err := it.ImageURL()
		if err != nil {
			logger.Warn("item has no tile artwork", "item", i, "err", err)
		}
		urls[i] = u
	}
	return urls
}

type rootDoc struct {
	Data struct {
		StandardCollection *struct {
			Containers *[]containerDoc `json:"containers"`
		} `json:"StandardCollection"`
	} `json:"data"`
}

type containerDoc struct {
	Set struct {
		RefID   *string `json:"refId"`
		RefType string  `json:"refType"`
		Text    struct {
			Title struct {
				Full struct {
					Set struct {
						Default struct {
							Content string `json:"content"`
						} `json:"default"`
					} `json:"set"`
				} `json:"full"`
			} `json:"title"`
		} `json:"text"`
		Items []Item `json:"items"`
	} `json:"set"`
}

// ParseRoot decodes the root catalog document into its containers, in
// document order.
func ParseRoot(data []byte) ([]Container, error) {
	var doc rootDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSchemaMismatch, err, "decode root catalog")
	}
	sc := doc.Data.StandardCollection
	if sc == nil || sc.Containers == nil {
		return nil, errors.New(errors.ErrCodeSchemaMismatch, "root catalog has no data.StandardCollection.containers")
	}

	out := make([]Container, 0, len(*sc.Containers))
	for _, c := range *sc.Containers {
		refID := NullRefset
		if c.Set.RefID != nil {
			refID = *c.Set.RefID
		}
		out = append(out, Container{
			Title:   c.Set.Text.Title.Full.Set.Default.Content,
			RefID:   refID,
			RefType: c.Set.RefType,
			Items:   c.Set.Items,
		})
	}
	return out, nil
}

// RefsetItems decodes a refset document and returns the items under the
// first key of its data object.
func RefsetItems(data []byte) ([]Item, error) {
	var doc struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSchemaMismatch, err, "decode refset")
	}
	if len(doc.Data) == 0 {
		return nil, errors.New(errors.ErrCodeSchemaMismatch, "refset has no data object")
	}

	key, body, err := firstMember(doc.Data)
	if err != nil {
		return nil, err
	}
	var set struct {
		Items *[]Item `json:"items"`
	}
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSchemaMismatch, err, "decode refset %q", key)
	}
	if set.Items == nil {
		return nil, errors.New(errors.ErrCodeSchemaMismatch, "refset %q has no items", key)
	}
	return *set.Items, nil
}

// firstMember returns the first key of a JSON object and its raw value.
// encoding/json maps do not preserve order, so the object is tokenized.
func firstMember(obj json.RawMessage) (string, json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	tok, err := dec.Token()
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeSchemaMismatch, err, "decode refset data")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return "", nil, errors.New(errors.ErrCodeSchemaMismatch, "refset data is not an object")
	}
	if !dec.More() {
		return "", nil, errors.New(errors.ErrCodeSchemaMismatch, "refset data is empty")
	}
	tok, err = dec.Token()
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeSchemaMismatch, err, "decode refset data")
	}
	key, _ := tok.(string)
	var body json.RawMessage
	if err := dec.Decode(&body); err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeSchemaMismatch, err, "decode refset %q", key)
	}
	return key, body, nil
}
