package catalog

import (
	"net/url"
	"strings"

	"github.com/matzehuels/tilerow/pkg/errors"
)

// Default endpoints.
const (
	DefaultCatalogURL = "https://cd-static.bamgrid.com/dp-117731241344/home.json"
	DefaultRefsetURL  = "https://cd-static.bamgrid.com/dp-117731241344/sets/" + RefsetPlaceholder + ".json"
)

// RefsetPlaceholder marks where a refset id goes in a refset URL template.
const RefsetPlaceholder = "{{id}}"

// RefsetURL substitutes id into template.
func RefsetURL(template, id string) (string, error) {
	if err := errors.ValidateRefsetID(id); err != nil {
		return "", err
	}
	return strings.ReplaceAll(template, RefsetPlaceholder, url.PathEscape(id)), nil
}
