package constants

// LatestStateVersion is the current version of the state file format.
//
// Version History:
//   - Version 0: bookmarks were stored without a namespace
//   - Version 1: Current Version (bookmarks keyed by namespace and stream, value kept as emitted by the API)
const (
	LatestStateVersion = 1
)

// Used as the current version of the state when the program is running
var LoadedStateVersion = LatestStateVersion
