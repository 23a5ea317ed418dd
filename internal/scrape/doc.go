// Package scrape defines the core types shared by the directory and
// profile stages: entity references, partition cursors, profile records,
// and the interfaces the pipeline consumes (fetching, sinks, archives).
package scrape
