// Package tripdex embeds the multi-facet destination ranking engine in a Go program.
//
// The client reads destination JSON files from a source directory, keeps one
// embedding index per facet under an index directory and ranks destinations for
// free-text queries by a weighted sum of facet similarities.
//
//	client, _ := tripdex.New(ctx,
//	    tripdex.WithDirs("data/destinations", "data/index"),
//	    tripdex.WithHashEmbedder(384),
//	)
//	res, _ := client.Search(ctx, "quiet beaches with snorkeling",
//	    tripdex.TopK(3),
//	    tripdex.Weights(map[string]float64{"activities": 0.6, "scenery": 0.4}),
//	    tripdex.Country("Mexico"),
//	)
//
// The first call loads persisted indexes, or builds them when none exist.
// Rebuild re-reads the source directory and replaces the indexes.
package tripdex
