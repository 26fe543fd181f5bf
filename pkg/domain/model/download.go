package model

// ArchiveExtraction represents an archive extracted into a staging directory
type ArchiveExtraction struct {
	StagingDir string   // Directory owned by the install run, removed afterwards
	ExtractDir string   // Directory the archive was extracted into
	Files      []string // List of extracted files
	Size       int64    // Total size in bytes
}

// DirEntry is a single entry of a directory listing
type DirEntry struct {
	Name  string
	IsDir bool
}
