package adsmeta

import "slices"

// Stats represents cache statistics.
type Stats struct {
	Rebuilds int    // Helper runs over a whole directory
	Hits     int    // Queries answered from the cache
	Misses   int    // Queries that triggered a rebuild
	Dir      string // Cached directory, "" when none
	Entries  int    // Files with a cache entry
}

// Stats returns statistics about the directory cache.
// Per-file helpers never touch the cache, so their stats stay zero.
func (ins *Inspector) Stats() Stats {
	stats := ins.stats
	stats.Dir = ins.cache.dir
	stats.Entries = len(ins.cache.entries)
	return stats
}

// CachedFiles returns the files that have an entry in the directory cache.
func (ins *Inspector) CachedFiles() []string {
	files := make([]string, 0, len(ins.cache.entries))
	for file := range ins.cache.entries {
		files = append(files, file)
	}
	slices.Sort(files)
	return files
}
