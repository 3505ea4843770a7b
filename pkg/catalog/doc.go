// Package catalog extracts the fields tilerow needs from the remote catalog
// and refset documents.
//
// The root document lists containers under data.StandardCollection.containers.
// Each container's set carries a display title, an optional reference to a
// refset (a separately fetched item list), and inline items. Items expose
// their tile artwork under one of three layouts, tried in order:
//
//	image.tile."1.78".series.default.url
//	image.tile."1.78".program.default.url
//	image.tile."1.78".default.default.url
//
// A refset document nests its items one level deeper, under whatever single
// key the server chose: data.<first key>.items.
//
// Extraction is deliberately lenient below the container list: a container
// without a title yields an empty title, and an item without artwork yields
// an empty URL. Only a root document without a container list is rejected.
package catalog
