package vfs

import "time"

// Attributes is a bitfield of filesystem entry attributes, modeled on the
// standard Windows/POSIX attribute set. Backends may ignore bits they
// don't support, but must not fail when asked to set or report them.
type Attributes uint32

const (
	AttrReadOnly Attributes = 1 << iota
	AttrHidden
	AttrSystem
	AttrDirectory
	AttrArchive
	AttrDevice
	AttrNormal
	AttrTemporary
	AttrSparseFile
	AttrReparsePoint
	AttrCompressed
	AttrOffline
	AttrNotContentIndexed
	AttrEncrypted
)

// Has reports whether every bit set in want is also set in a.
func (a Attributes) Has(want Attributes) bool {
	return a&want == want
}

// ZeroTime is the sentinel timestamp returned by GetCreationTime,
// GetLastAccessTime and GetLastWriteTime when a backend has no value for
// the requested attribute: January 1, 1601 in the local time zone (the
// Windows FILETIME epoch).
var ZeroTime = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.Local)

// OpenMode selects how OpenFile should resolve an existing or missing
// destination file.
type OpenMode int

const (
	// OpenCreateNew creates a new file and fails with KindAlreadyExists
	// if it already exists.
	OpenCreateNew OpenMode = iota
	// OpenCreate creates a new file, overwriting any existing one.
	OpenCreate
	// OpenExisting opens an existing file and fails if it is absent.
	OpenExisting
	// OpenOrCreate opens an existing file or creates a new one.
	OpenOrCreate
	// OpenTruncate requires the file to exist and empties it.
	OpenTruncate
	// OpenAppend opens (creating if necessary) and seeks to the end on
	// every write.
	OpenAppend
)

// Access selects the read/write capability requested for an open file.
type Access int

const (
	AccessRead Access = 1 << iota
	AccessWrite
)

// ReadWrite is shorthand for AccessRead|AccessWrite.
const ReadWrite = AccessRead | AccessWrite

// Share controls what concurrent access other openers of the same file
// are permitted.
type Share int

const (
	// ShareNone permits no concurrent access at all.
	ShareNone   Share = 0
	ShareRead   Share = 1 << 0
	ShareWrite  Share = 1 << 1
	ShareDelete Share = 1 << 2

	// ShareReadWrite is shorthand for ShareRead|ShareWrite.
	ShareReadWrite = ShareRead | ShareWrite
)

// NotifyFilters is a bitfield selecting which kinds of changes a watcher
// reports.
type NotifyFilters uint32

const (
	NotifyFileName NotifyFilters = 1 << iota
	NotifyDirectoryName
	NotifyAttributes
	NotifySize
	NotifyLastWrite
	NotifyLastAccess
	NotifyCreationTime
	NotifySecurity
)

// DefaultNotifyFilters is the default bitfield used by a newly
// constructed watcher configuration.
const DefaultNotifyFilters = NotifyLastWrite | NotifyFileName | NotifyDirectoryName

// Has reports whether every bit set in want is also set in f.
func (f NotifyFilters) Has(want NotifyFilters) bool {
	return f&want == want
}
