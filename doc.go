// Package rabani prepares discrete-level simulated dewetting images (substrate,
// liquid and nanoparticle phases) for learned classifiers and classical
// topological descriptors.
//
// The work is split across sub-packages:
//
//   - records: labeled image records stored one per file.
//   - images: square level images and the resize / normalise utilities.
//   - datasets: the batch generator (cursor, augmentation, binarisation).
//   - topology: Euler-number classification and scale-invariant descriptors.
//   - features: classical feature tables built from the two above.
//
// This package only holds the error sentinels shared by all of them.
package rabani
