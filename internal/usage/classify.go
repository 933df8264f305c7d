package usage

// Classify applies the accounting rule to one key group and reports whether
// the key is live. A key whose newest record is a delete marker is orphaned:
// every version it still holds, marker included, is invisible dead weight.
// Otherwise the newest record is the current object and everything behind it
// is noncurrent history (older delete markers count as zero-byte versions).
func Classify(g KeyGroup) (ClassifiedSize, bool) {
	var cs ClassifiedSize
	if len(g.Records) == 0 {
		return cs, false
	}
	newest := g.Records[0]
	if newest.IsDeleteMarker {
		for _, r := range g.Records {
			cs.OrphanedBytes += r.Size
			cs.OrphanedVersions++
		}
		return cs, false
	}
	cs.CurrentBytes = newest.Size
	cs.CurrentObjects = 1
	for _, r := range g.Records[1:] {
		cs.NoncurrentLiveBytes += r.Size
		cs.NoncurrentLiveVersions++
	}
	return cs, true
}
