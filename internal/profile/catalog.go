package profile

import (
	_ "embed"
	"fmt"

	"github.com/gocarina/gocsv"
)

// CatalogAsset is one instrument in an issuer's typical basket. Catalog data
// is versioned configuration, revised without touching extraction code; it is
// only ever used as the last resolver tier and is flagged as such downstream.
type CatalogAsset struct {
	Issuer string `csv:"issuer"`
	Name   string `csv:"name"`
	Ticker string `csv:"ticker"`
}

//go:embed catalog.csv
var catalogCSV []byte

// loadEmbeddedCatalog parses the embedded basket catalog into a per-issuer map.
func loadEmbeddedCatalog() (map[string][]CatalogAsset, error) {
	var rows []CatalogAsset
	if err := gocsv.UnmarshalBytes(catalogCSV, &rows); err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", ErrBadProfile, err)
	}

	catalog := make(map[string][]CatalogAsset)
	for _, row := range rows {
		if row.Issuer == "" || (row.Name == "" && row.Ticker == "") {
			continue
		}
		catalog[row.Issuer] = append(catalog[row.Issuer], row)
	}
	return catalog, nil
}
