// =============================================================================
// Resolved Trades Consolidator - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a merge run:
//   - Directory management
//   - Recursive discovery of source files
//   - Staging (copying discovered files into one flat directory)
//   - Run log generation
//
// STAGING STRATEGY:
//   - Every discovered file is copied, never moved; sources stay in place
//   - The staging directory is flat, so a later file with the same name
//     overwrites an earlier one
//   - Loading always reads the original source path, not the staged copy
//   - A staging directory inside the source root is not searched, so staged
//     copies are never rediscovered
//   - A file that already is its staged copy is left alone
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a merge run.
type FileManager struct {
	// SourceRoot is the root of the tree searched for source files.
	SourceRoot string

	// StagingDir receives a flat copy of every discovered file.
	StagingDir string
}

// NewFileManager creates a new FileManager for the given directories.
func NewFileManager(sourceRoot, stagingDir string) *FileManager {
	return &FileManager{
		SourceRoot: sourceRoot,
		StagingDir: stagingDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates every listed directory if it doesn't exist.
// Empty entries are ignored.
//
// RETURNS:
//   - An error if any directory cannot be created.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// EnsureParentDir creates the directory that will contain path.
func EnsureParentDir(path string) error {
	return EnsureDirectories(filepath.Dir(path))
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// Discover walks the source root recursively and returns every regular file
// whose name satisfies match. The staging directory is skipped when it lies
// below the source root.
//
// PARAMETERS:
//   - match: Called with the file's base name.
//
// RETURNS:
//   - The matching absolute paths in lexical walk order.
//   - An error if the tree cannot be walked.
func (fm *FileManager) Discover(match func(name string) bool) ([]string, error) {
	root, err := filepath.Abs(fm.SourceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}

	var staging os.FileInfo
	if fm.StagingDir != "" {
		staging, _ = os.Stat(fm.StagingDir)
	}

	var files []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && staging != nil {
				if info, err := d.Info(); err == nil && os.SameFile(info, staging) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if match == nil || match(d.Name()) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk source directory: %w", err)
	}

	return files, nil
}

// =============================================================================
// STAGING
// =============================================================================

// Stage copies each file into the staging directory. A file whose staged
// path is the file itself (the staging directory is its own directory) is
// counted without copying.
//
// RETURNS:
//   - The number of files staged.
//   - An error on the first copy failure.
func (fm *FileManager) Stage(files []string) (int, error) {
	copied := 0
	for _, src := range files {
		dst := filepath.Join(fm.StagingDir, filepath.Base(src))

		same, err := sameFile(src, dst)
		if err != nil {
			return copied, fmt.Errorf("failed to stage %s: %w", src, err)
		}
		if same {
			copied++
			continue
		}

		if err := copyFile(src, dst); err != nil {
			return copied, fmt.Errorf("failed to stage %s: %w", src, err)
		}
		copied++
	}
	return copied, nil
}

// =============================================================================
// RUN IDENTIFIERS
// =============================================================================

// NewRunID returns a random identifier for one run.
func NewRunID() string {
	return uuid.New().String()
}

// =============================================================================
// RUN LOG
// =============================================================================

// RunSummary contains summary information about one merge run.
type RunSummary struct {
	RunID         string
	StartTime     time.Time
	EndTime       time.Time
	SourceRoot    string
	MergedOutput  string
	SummaryOutput string
	Discovered    int
	Copied        int
	Summarized    int
	AddedFiles    []AddedFileInfo
	FailedFiles   []FailedFileInfo
}

// AddedFileInfo describes a file written to the merged workbook.
type AddedFileInfo struct {
	SourceFile string
	Sheet      string
	Rows       int
}

// FailedFileInfo describes a file that was skipped.
type FailedFileInfo struct {
	SourceFile   string
	ErrorType    string
	ErrorMessage string
}

// WriteRunLog writes a run summary to a text file in outputDir.
//
// RETURNS:
//   - The path to the log file.
//   - An error if writing fails.
func WriteRunLog(summary RunSummary, outputDir string) (string, error) {
	timestamp := summary.StartTime.Format("20060102_150405")
	logPath := filepath.Join(outputDir, fmt.Sprintf("merge_run_%s.txt", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create run log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	header := fmt.Sprintf("Resolved Trades Consolidator - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Source Root:    %s\n"+
		"  Merged Output:  %s\n"+
		"  Summary Output: %s\n\n"+
		"Statistics:\n"+
		"  Discovered:     %d\n"+
		"  Copied:         %d\n"+
		"  Sheets Added:   %d\n"+
		"  Failed:         %d\n"+
		"  Summarized:     %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.SourceRoot,
		orNone(summary.MergedOutput),
		orNone(summary.SummaryOutput),
		summary.Discovered,
		summary.Copied,
		len(summary.AddedFiles),
		len(summary.FailedFiles),
		summary.Summarized)
	writer.WriteString(header)

	if len(summary.AddedFiles) > 0 {
		writer.WriteString("Added Sheets:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, af := range summary.AddedFiles {
			writer.WriteString(fmt.Sprintf("  Sheet: %s\n", af.Sheet))
			writer.WriteString(fmt.Sprintf("  File:  %s\n", af.SourceFile))
			writer.WriteString(fmt.Sprintf("  Rows:  %d\n\n", af.Rows))
		}
	}

	if len(summary.FailedFiles) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFiles {
			writer.WriteString(fmt.Sprintf("  File:  %s\n", ff.SourceFile))
			writer.WriteString(fmt.Sprintf("  Type:  %s\n", ff.ErrorType))
			writer.WriteString(fmt.Sprintf("  Error: %s\n\n", ff.ErrorMessage))
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush run log: %w", err)
	}

	return logPath, nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// sameFile reports whether src and dst name the same file. A missing dst is
// not an error.
func sameFile(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	dstInfo, err := os.Stat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return os.SameFile(srcInfo, dstInfo), nil
}

// copyFile copies a file from src to dst, replacing dst. Callers must make
// sure dst is not src: creating dst truncates it.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
