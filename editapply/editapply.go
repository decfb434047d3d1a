// Package editapply writes regenerated documentation comments back into source files.
//
// Edits are grouped by file and applied bottom-up (descending start line) so earlier splices never shift the ranges of later ones. Each file is independent:
// a failure is recorded and the batch moves on, with no cross-file rollback. Re-applying a batch that already landed is a no-op that still counts the edits
// as applied.
package editapply

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// JSDocEdit replaces or inserts one documentation comment block.
//
// Line numbers are 1-based. For replacements, [StartLine, EndLine] is the existing comment's range and ExistingCommentText its content as last seen; for
// insertions (HasExisting false), StartLine is the declaration line the comment goes above. NewCommentText and ExistingCommentText are full comment blocks,
// already carrying the indentation recorded in Indent.
type JSDocEdit struct {
	FilePath            string `json:"filePath"`
	SymbolName          string `json:"symbolName"`
	StartLine           int    `json:"startLine"`
	EndLine             int    `json:"endLine"`
	HasExisting         bool   `json:"hasExisting"`
	ExistingCommentText string `json:"existingCommentText,omitempty"`
	NewCommentText      string `json:"newCommentText"`
	Indent              string `json:"indent,omitempty"`
}

// Options configures Apply. The zero value applies files sequentially.
type Options struct {
	// MaxParallelism bounds how many files are processed concurrently. Values below 1 mean 1. Edits within one file are always sequential.
	MaxParallelism int
}

// FileError is one failed file or edit within the batch.
type FileError struct {
	File string
	Err  error
}

// Result summarizes a batch application. EditsApplied includes edits that were already in place; FilesModified lists only files actually rewritten.
type Result struct {
	EditsApplied  int
	FilesModified []string
	Errors        []FileError
}

var (
	errLocationNotFound = errors.New("patch location not found")
	errDeclarationFile  = errors.New("declaration files are generated; edit the source instead")
)

// IsLocationNotFound reports whether err means an edit's target comment or declaration could not be found, even after fuzzy relocation.
func IsLocationNotFound(err error) bool {
	return errors.Is(err, errLocationNotFound)
}

// IsDeclarationFileError reports whether err means the edit targeted a .d.ts-style declaration file.
func IsDeclarationFileError(err error) bool {
	return errors.Is(err, errDeclarationFile)
}

func locationNotFound(edit JSDocEdit, detail string) error {
	return fmt.Errorf("%w: %s at %s:%d: %s", errLocationNotFound, edit.SymbolName, edit.FilePath, edit.StartLine, detail)
}

// isDeclarationPath reports whether path names a TypeScript declaration file.
func isDeclarationPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".d.ts") || strings.HasSuffix(lower, ".d.mts") || strings.HasSuffix(lower, ".d.cts")
}

// Apply applies the batch and reports what happened. It never aborts early: every file gets its chance, and every failure lands in Result.Errors. Files may
// be processed in parallel per Options; the result is the same either way.
func Apply(edits []JSDocEdit, opts Options) Result {
	byFile := make(map[string][]JSDocEdit)
	for _, e := range edits {
		byFile[e.FilePath] = append(byFile[e.FilePath], e)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	maxParallel := opts.MaxParallelism
	if maxParallel < 1 {
		maxParallel = 1
	}

	var mu sync.Mutex
	var result Result
	sem := make(chan struct{}, maxParallel)
	var wg sync.WaitGroup

	for _, file := range files {
		wg.Add(1)
		sem <- struct{}{} // acquire a slot
		go func(file string, fileEdits []JSDocEdit) {
			defer wg.Done()
			defer func() { <-sem }() // release slot

			outcome := applyFile(file, fileEdits)

			mu.Lock()
			defer mu.Unlock()
			result.EditsApplied += outcome.applied
			if outcome.modified {
				result.FilesModified = append(result.FilesModified, file)
			}
			for _, err := range outcome.errs {
				result.Errors = append(result.Errors, FileError{File: file, Err: err})
			}
		}(file, byFile[file])
	}
	wg.Wait()

	sort.Strings(result.FilesModified)
	sort.Slice(result.Errors, func(i, j int) bool {
		if result.Errors[i].File != result.Errors[j].File {
			return result.Errors[i].File < result.Errors[j].File
		}
		return result.Errors[i].Err.Error() < result.Errors[j].Err.Error()
	})
	return result
}
