package gitrepo

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/memory"
)

const (
	repositoryClosedMessageConstant       = "repository has been closed"
	repositoryOpenErrorTemplateConstant   = "unable to open repository %s: %w"
	repositoryInitErrorTemplateConstant   = "unable to initialize in-memory repository: %w"
	repositoryPathResolveTemplateConstant = "unable to resolve repository path %s: %w"
	inMemoryRepositoryLabelConstant       = "in-memory"
)

// ErrRepositoryClosed indicates the owner closed the repository and no new references may be taken.
var ErrRepositoryClosed = errors.New(repositoryClosedMessageConstant)

// Repository is a counted reference to an opened repository.
//
// The owner holds the initial reference. Every remote handle retains an
// additional one, so closing the owner while handles are live defers the
// storage release until the last handle lets go.
type Repository struct {
	mutex          sync.Mutex
	path           string
	repository     *git.Repository
	referenceCount int
	closeRequested bool
	released       bool
}

// OpenRepository opens the repository containing path, searching parent directories for .git.
func OpenRepository(path string) (*Repository, error) {
	absolutePath, absoluteError := filepath.Abs(strings.TrimSpace(path))
	if absoluteError != nil {
		return nil, fmt.Errorf(repositoryPathResolveTemplateConstant, path, absoluteError)
	}

	openedRepository, openError := git.PlainOpenWithOptions(absolutePath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, fmt.Errorf(repositoryOpenErrorTemplateConstant, absolutePath, openError)
	}

	repositoryPath := absolutePath
	if worktree, worktreeError := openedRepository.Worktree(); worktreeError == nil {
		repositoryPath = worktree.Filesystem.Root()
	}

	return newRepository(repositoryPath, openedRepository), nil
}

// NewInMemoryRepository initializes an empty repository backed by memory storage.
func NewInMemoryRepository() (*Repository, error) {
	initializedRepository, initError := git.Init(memory.NewStorage(), nil)
	if initError != nil {
		return nil, fmt.Errorf(repositoryInitErrorTemplateConstant, initError)
	}
	return newRepository("", initializedRepository), nil
}

func newRepository(path string, openedRepository *git.Repository) *Repository {
	return &Repository{path: path, repository: openedRepository, referenceCount: 1}
}

// Path returns the working directory of the repository, or an empty string for in-memory storage.
func (repository *Repository) Path() string {
	return repository.path
}

// Label describes the repository for log output.
func (repository *Repository) Label() string {
	if len(repository.path) == 0 {
		return inMemoryRepositoryLabelConstant
	}
	return repository.path
}

// Storer exposes the repository storage for engines binding remotes to it.
func (repository *Repository) Storer() storage.Storer {
	return repository.repository.Storer
}

// Retain adds a reference and returns the function that drops it.
//
// The returned release function drops only the reference this call added;
// later calls are no-ops. Retain fails once the owner has closed the repository.
func (repository *Repository) Retain() (func() error, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if repository.released || repository.closeRequested {
		return nil, ErrRepositoryClosed
	}
	repository.referenceCount++

	var releaseOnce sync.Once
	release := func() error {
		var releaseError error
		releaseOnce.Do(func() {
			releaseError = repository.release()
		})
		return releaseError
	}
	return release, nil
}

func (repository *Repository) release() error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if repository.released {
		return nil
	}
	repository.referenceCount--
	return repository.releaseIfUnreferenced()
}

// Close drops the owner reference. Storage is released once no handle retains the repository.
func (repository *Repository) Close() error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if repository.closeRequested {
		return nil
	}
	repository.closeRequested = true
	repository.referenceCount--
	return repository.releaseIfUnreferenced()
}

// Live reports whether new references may still be taken.
func (repository *Repository) Live() bool {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return !repository.released && !repository.closeRequested
}

// ReferenceCount returns the number of outstanding references, including the owner's.
func (repository *Repository) ReferenceCount() int {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return repository.referenceCount
}

// Released reports whether the storage has been released.
func (repository *Repository) Released() bool {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return repository.released
}

func (repository *Repository) releaseIfUnreferenced() error {
	if repository.referenceCount > 0 {
		return nil
	}
	repository.released = true
	if closer, isCloser := repository.repository.Storer.(io.Closer); isCloser {
		return closer.Close()
	}
	return nil
}
