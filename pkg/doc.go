// Package pkg provides the core libraries for tilerow, a catalog browser
// that loads rows of image tiles on a pool of workers.
//
// # Overview
//
// The pkg directory is organized into three areas:
//
//  1. Pipeline - [catalog] parsing, the [loader] work queue, worker pool and
//     completion channel, [imagefetch] and [glyph] rasterization
//  2. Presentation - the [display] model the consumer folds events into
//  3. Infrastructure - [remote] HTTP, [cache], [httputil] retries,
//     [texture] handles, [config], [errors] and [observability]
//
// # Architecture
//
// The typical data flow through tilerow:
//
//	Root catalog (JSON)
//	         ↓
//	    [catalog] package (rows, titles, inline items, refset ids)
//	         ↓
//	    [loader] package (one bundle per row, N workers)
//	         ↓  refset documents, tile images via [imagefetch]
//	    [loader.Completions] (image loaded / refset failed / bundle done)
//	         ↓
//	    [display] package (tiles, selection, animation)
//
// # Quick Start
//
// Load a catalog and drain its events:
//
//	import (
//	    "github.com/matzehuels/tilerow/pkg/display"
//	    "github.com/matzehuels/tilerow/pkg/fonts"
//	    "github.com/matzehuels/tilerow/pkg/glyph"
//	    "github.com/matzehuels/tilerow/pkg/imagefetch"
//	    "github.com/matzehuels/tilerow/pkg/loader"
//	    "github.com/matzehuels/tilerow/pkg/remote"
//	    "github.com/matzehuels/tilerow/pkg/texture"
//	)
//
//	store := texture.NewMemoryStore()
//	client := remote.NewClient(remote.Options{})
//	face, _ := fonts.Face(fonts.DefaultSize, fonts.DefaultDPI)
//
//	l := loader.New(client,
//	    imagefetch.New(client, store, imagefetch.DefaultWidth, imagefetch.DefaultHeight),
//	    store,
//	    glyph.NewRasterizer(glyph.NewFaceShaper(face), nil),
//	    loader.Options{})
//	res, err := l.Load(ctx)
//	if err != nil {
//	    return err // the root catalog could not be fetched
//	}
//
//	model := display.NewModel(res.Rows, store, display.DefaultConfig(), nil)
//	defer model.Close(res.Completions)
//	for !model.TilesReady() {
//	    <-res.Completions.Notify()
//	    model.Tick(res.Completions, 1.0/60)
//	}
//
// # Errors
//
// Only a missing root catalog aborts a load. Refset, network and decode
// failures are absorbed by the workers: the tile is skipped or the row is
// marked degraded, and loading continues.
package pkg
