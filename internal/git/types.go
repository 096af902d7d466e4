package git

import "fmt"

// DefaultBranch is used when a descriptor declares none.
const DefaultBranch = "main"

// Descriptor declares one logical repository.
type Descriptor struct {
	Name      string
	URL       string
	Branch    string
	LocalPath string
}

// BranchOrDefault returns the declared branch, or DefaultBranch.
func (d Descriptor) BranchOrDefault() string {
	if d.Branch == "" {
		return DefaultBranch
	}
	return d.Branch
}

// LocalState classifies what is found at a descriptor's local path.
type LocalState int

const (
	// Absent: the path does not exist or is an empty directory.
	Absent LocalState = iota
	// NonGitDirectory: a non-empty directory without repository metadata.
	NonGitDirectory
	// GitRepository: repository metadata is present.
	GitRepository
)

func (s LocalState) String() string {
	switch s {
	case Absent:
		return "absent"
	case NonGitDirectory:
		return "non_git_directory"
	case GitRepository:
		return "git_repository"
	default:
		return fmt.Sprintf("LocalState(%d)", int(s))
	}
}

// RemoteState classifies the remote with respect to the requested branch.
type RemoteState int

const (
	NoBranches RemoteState = iota
	BranchMissing
	BranchPresent
)

func (s RemoteState) String() string {
	switch s {
	case NoBranches:
		return "no_branches"
	case BranchMissing:
		return "branch_missing"
	case BranchPresent:
		return "branch_present"
	default:
		return fmt.Sprintf("RemoteState(%d)", int(s))
	}
}

// Outcome is the result of synchronizing one descriptor.
type Outcome struct {
	Ready      bool
	Repository string
	Reason     string
	Commit     string
	Path       string
	// Err is the classified failure when Ready is false.
	Err error
}
