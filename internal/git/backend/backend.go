package backend

// Backend abstracts access to captured repository data.
//
// The default implementation reads a capture directory written by whatever
// ran git; tests use in-memory fakes. Nothing here spawns processes.
type Backend interface {
	RepoPath() string
	StartLogStream() (LogStream, error)

	HeadState() (hash string, headName string, ok bool, err error)
	ListRefs() ([]Ref, error)

	// CommitDiffText returns the raw diff-tree listing of commitHash against its parents.
	CommitDiffText(commitHash string) (string, error)
	// WorktreeDiffText returns the raw listing of the working tree against the
	// index, or of the index against HEAD when staged is set.
	WorktreeDiffText(staged bool) (string, error)
	LocalChangesStatus() (LocalChanges, error)
	ProducerVersion() (string, error)
}

type LogStream interface {
	Next() (*Commit, error)
	Close() error
}
