package simulation

import (
	"fmt"
	"math"
)

// SnapshotWidth returns the zero-padding width for snapshot filenames,
// per spec §9 "Snapshot filename width": max(5, ceil(log10(ceil(
// max_iter/img_iter)))). Ported from configs.cpp's
// get_max_digits_config, preserved exactly so existing snapshot
// directories remain sorted.
func SnapshotWidth(maxIter, imgIter int) int {
	const minDigits = 5
	maxImgs := math.Ceil(float64(maxIter) / float64(imgIter))
	digits := int(math.Ceil(math.Log10(maxImgs)))
	if digits < minDigits {
		return minDigits
	}
	return digits
}

// SnapshotName formats the zero-padded filename for the snapshot taken
// at iteration iter under the given width.
func SnapshotName(iter, width int) string {
	return fmt.Sprintf("snapshot-%0*d.txt", width, iter)
}
