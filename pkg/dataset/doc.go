// SPDX-License-Identifier: MPL-2.0

// Package dataset reads MovieLens rating files into (user, item) pairs with
// binary targets.
//
// Ratings of 3 or less are negative samples (target 0), anything above is
// positive (target 1). Ids in the files start at 1 and are shifted to start
// at 0, so FieldSizes holds the number of distinct slots each column needs.
package dataset
